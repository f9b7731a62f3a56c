package board

import (
	"fmt"
	"strconv"
	"strings"

	"game_arena/internal/domain/game"
)

// GTP columns skip the letter I.
const gtpColumns = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// ToGTP converts a board point (row 0 at the top) to engine notation like "D4".
func ToGTP(p game.Point, size int) string {
	if p.IsPass() {
		return "pass"
	}
	return fmt.Sprintf("%c%d", gtpColumns[p.X], size-p.Y)
}

func FromGTP(s string, size int) (game.Point, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "PASS" {
		return game.PassPoint, nil
	}
	if len(s) < 2 {
		return game.Point{}, fmt.Errorf("invalid gtp coordinate: %q", s)
	}
	x := strings.IndexByte(gtpColumns, s[0])
	row, err := strconv.Atoi(s[1:])
	if x < 0 || err != nil {
		return game.Point{}, fmt.Errorf("invalid gtp coordinate: %q", s)
	}
	p := game.Point{X: x, Y: size - row}
	if p.X >= size || p.Y < 0 || p.Y >= size {
		return game.Point{}, fmt.Errorf("gtp coordinate outside %dx%d board: %q", size, size, s)
	}
	return p, nil
}

// ToSGF encodes a point as two letters; a pass is the empty value.
func ToSGF(p game.Point) string {
	if p.IsPass() {
		return ""
	}
	return string([]byte{byte('a' + p.X), byte('a' + p.Y)})
}

func FromSGF(s string, size int) (game.Point, error) {
	if s == "" || (s == "tt" && size <= 19) {
		return game.PassPoint, nil
	}
	if len(s) != 2 {
		return game.Point{}, fmt.Errorf("invalid sgf coordinate: %q", s)
	}
	p := game.Point{X: int(s[0] - 'a'), Y: int(s[1] - 'a')}
	if p.X < 0 || p.Y < 0 || p.X >= size || p.Y >= size {
		return game.Point{}, fmt.Errorf("sgf coordinate outside %dx%d board: %q", size, size, s)
	}
	return p, nil
}

// SGFToGTP converts "pd" style coordinates to "Q16" style.
func SGFToGTP(sgfCoord string, size int) (string, error) {
	p, err := FromSGF(sgfCoord, size)
	if err != nil {
		return "", err
	}
	return ToGTP(p, size), nil
}
