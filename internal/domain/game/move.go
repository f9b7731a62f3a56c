package game

// Color is the occupant of a board point and the side a participant plays.
type Color int8

const (
	Empty Color = iota
	Black
	White
)

func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// @name Point
type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// PassPoint encodes a pass in the move history.
var PassPoint = Point{X: -1, Y: -1}

func (p Point) IsPass() bool {
	return p.X == -1 && p.Y == -1
}

func (p Point) Neighbors() [4]Point {
	return [4]Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}}
}

type MoveKind string

const (
	MoveStone   MoveKind = "stone"
	MovePass    MoveKind = "pass"
	MoveHidden  MoveKind = "hidden"
	MoveReveal  MoveKind = "reveal"
	MoveMissile MoveKind = "missile"
)

// @name Move
type Move struct {
	X     int      `json:"x" bson:"x"`
	Y     int      `json:"y" bson:"y"`
	Color Color    `json:"color" bson:"color"`
	Kind  MoveKind `json:"kind,omitempty" bson:"kind,omitempty"`
	// From is set for missile moves only.
	From *Point `json:"from,omitempty" bson:"from,omitempty"`
}

func (m Move) Point() Point {
	return Point{X: m.X, Y: m.Y}
}

func (m Move) IsPass() bool {
	return m.Point().IsPass()
}

// KoInfo marks the single point that may not be retaken at move index Turn.
type KoInfo struct {
	Point Point `json:"point" bson:"point"`
	Turn  int   `json:"turn" bson:"turn"`
}

// Board is indexed [y][x].
type Board [][]Color

func NewBoard(size int) Board {
	b := make(Board, size)
	for y := range b {
		b[y] = make([]Color, size)
	}
	return b
}

func (b Board) Size() int {
	return len(b)
}

func (b Board) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.Y < len(b) && p.X < len(b[p.Y])
}

func (b Board) At(p Point) Color {
	return b[p.Y][p.X]
}

func (b Board) Set(p Point, c Color) {
	b[p.Y][p.X] = c
}

func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for y := range b {
		out[y] = append([]Color(nil), b[y]...)
	}
	return out
}

func (b Board) Count(c Color) int {
	n := 0
	for y := range b {
		for x := range b[y] {
			if b[y][x] == c {
				n++
			}
		}
	}
	return n
}

// EmptyPoints lists empty points in row-major order.
func (b Board) EmptyPoints() []Point {
	var out []Point
	for y := range b {
		for x := range b[y] {
			if b[y][x] == Empty {
				out = append(out, Point{X: x, Y: y})
			}
		}
	}
	return out
}
