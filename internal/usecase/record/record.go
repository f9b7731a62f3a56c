package record

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"game_arena/internal/domain/game"
	"game_arena/internal/domain/sgf"
	"game_arena/internal/usecase/board"
)

// propOrder fixes the position of the well-known properties.
var propOrder = []string{"FF", "GM", "SZ", "PB", "PW", "DT", "RE", "KM", "RU", "AB", "AW", "B", "W", "C"}

// Build turns the move history of a board mode into an SGF tree. Physics modes
// have no board record.
func Build(s *game.Session) (*sgf.SGF, bool) {
	if !s.Mode.IsGoFamily() && !s.Mode.IsLineMode() && s.Mode != game.ModeDice && s.Mode != game.ModeThief {
		return nil, false
	}
	root := sgf.NewNode()
	root.Add("FF", "4")
	root.Add("GM", gameType(s.Mode))
	root.Add("SZ", strconv.Itoa(s.Settings.BoardSize))
	root.Add("PB", name(s.Black))
	root.Add("PW", name(s.White))
	root.Add("DT", s.CreatedAt.Format("2006-01-02"))
	root.Add("RE", Result(s))
	root.Add("KM", strconv.FormatFloat(s.Settings.Komi, 'f', 1, 64))
	root.Add("RU", "Chinese")
	root.Add("C", "mode "+string(s.Mode))
	if s.Base != nil {
		for _, p := range s.Base.Placed[s.Black.UserID] {
			root.Add("AB", board.ToSGF(p))
		}
		for _, p := range s.Base.Placed[s.White.UserID] {
			root.Add("AW", board.ToSGF(p))
		}
	}

	tree := &sgf.GameTree{Nodes: []sgf.Node{root}}
	for _, mv := range s.MoveHistory {
		n := sgf.NewNode()
		key := "B"
		if mv.Color == game.White {
			key = "W"
		}
		n.Add(key, board.ToSGF(mv.Point()))
		switch mv.Kind {
		case game.MoveHidden:
			n.Add("C", "hidden")
		case game.MoveReveal:
			n.Add("C", "reveal")
		case game.MoveMissile:
			if mv.From != nil {
				n.Add("C", "missile from "+board.ToSGF(*mv.From))
			}
		}
		tree.Nodes = append(tree.Nodes, n)
	}
	return &sgf.SGF{Root: tree}, true
}

// Encode is Build followed by Serialize.
func Encode(s *game.Session) (string, bool) {
	tree, ok := Build(s)
	if !ok {
		return "", false
	}
	return Serialize(tree), true
}

func gameType(m game.Mode) string {
	if m.IsLineMode() {
		return "4"
	}
	return "1"
}

func name(p game.Participant) string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.UserID
}

// Result is the RE property: "B+R", "W+T", "B+3.5", "0" for a draw, "Void" for no contest.
func Result(s *game.Session) string {
	r := s.Result
	if r == nil {
		return ""
	}
	if r.Reason == game.ReasonNoContest {
		return "Void"
	}
	if r.Winner == game.Empty {
		return "0"
	}
	side := "B"
	if r.Winner == game.White {
		side = "W"
	}
	switch r.Reason {
	case game.ReasonResign:
		return side + "+R"
	case game.ReasonTimeout:
		return side + "+T"
	case game.ReasonScore:
		diff := r.Scores[r.Winner].Total - r.Scores[r.Winner.Opponent()].Total
		return side + "+" + strconv.FormatFloat(diff, 'f', -1, 64)
	}
	return side + "+F"
}

func Serialize(s *sgf.SGF) string {
	var b strings.Builder
	b.WriteString("(")
	writeTree(&b, s.Root)
	b.WriteString(")")
	return b.String()
}

func writeTree(b *strings.Builder, tree *sgf.GameTree) {
	for _, node := range tree.Nodes {
		b.WriteString(";")
		var rest []string
		for key := range node.Properties {
			if !slices.Contains(propOrder, key) {
				rest = append(rest, key)
			}
		}
		slices.Sort(rest)
		for _, key := range append(slices.Clone(propOrder), rest...) {
			values, ok := node.Properties[key]
			if !ok {
				continue
			}
			b.WriteString(key)
			for _, v := range values {
				fmt.Fprintf(b, "[%s]", escape(v))
			}
		}
	}
	for _, child := range tree.Children {
		b.WriteString("(")
		writeTree(b, child)
		b.WriteString(")")
	}
}

func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(v)
}
