package game

import "time"

// Per-mode sub-states. Only the ones belonging to the session's mode are populated.

type SetupState struct {
	// nigiri: the holder grabs a hidden stone count, the other side guesses parity.
	NigiriHolder string `json:"nigiri_holder,omitempty"`
	NigiriStones int    `json:"nigiri_stones,omitempty"`
	Guess        string `json:"guess,omitempty"`

	Choices map[string]string `json:"choices,omitempty"`
	Rolls   map[string]int    `json:"rolls,omitempty"`
	Ties    int               `json:"ties"`
}

type BiddingState struct {
	Bids map[string]int `json:"bids"`
	Ties int            `json:"ties"`
}

type BaseState struct {
	Placed   map[string][]Point `json:"placed"`
	Stones   map[Color][]Point  `json:"stones"`
	Captured map[Color]int      `json:"captured"`
}

type HiddenState struct {
	PrePlaced map[string][]Point `json:"pre_placed,omitempty"`
	ItemsLeft map[Color]int      `json:"items_left"`
	ScansLeft map[Color]int      `json:"scans_left"`
	// Stones are on the board but not yet visible to the opponent.
	Stones   map[Color][]Point `json:"stones"`
	Revealed []Point           `json:"revealed,omitempty"`
	Captured map[Color]int     `json:"captured"`
}

func (h *HiddenState) IsHidden(c Color, p Point) bool {
	if h == nil {
		return false
	}
	for _, q := range h.Stones[c] {
		if q == p {
			return true
		}
	}
	return false
}

// Reveal drops p from the unrevealed set of either color and reports whether it was hidden.
func (h *HiddenState) Reveal(p Point) bool {
	if h == nil {
		return false
	}
	for c, pts := range h.Stones {
		for i, q := range pts {
			if q == p {
				h.Stones[c] = append(pts[:i:i], pts[i+1:]...)
				h.Revealed = append(h.Revealed, p)
				return true
			}
		}
	}
	return false
}

type MissileState struct {
	ItemsLeft map[Color]int `json:"items_left"`
}

type ItemKind string

const (
	ItemHidden  ItemKind = "hidden"
	ItemScan    ItemKind = "scan"
	ItemMissile ItemKind = "missile"
)

type ItemWindow struct {
	Kind     ItemKind  `json:"kind"`
	Color    Color     `json:"color"`
	OpenedAt time.Time `json:"opened_at"`
	Deadline time.Time `json:"deadline"`
}

type DiceState struct {
	Round     int `json:"round"`
	MaxRounds int `json:"max_rounds"`
	Rolled    int `json:"rolled"`
	ToPlace   int `json:"to_place"`
	// TurnsInRound counts finished turns in the current round.
	TurnsInRound int `json:"turns_in_round"`
}

type Role string

const (
	RoleThief  Role = "thief"
	RolePolice Role = "police"
)

type ThiefState struct {
	ThiefID  string `json:"thief_id"`
	PoliceID string `json:"police_id"`
	Round    int    `json:"round"`
	// TurnsLeft counts remaining turns of the round for both roles together.
	TurnsLeft int            `json:"turns_left"`
	Acting    Role           `json:"acting"`
	Rolled    []int          `json:"rolled,omitempty"`
	ToPlace   int            `json:"to_place"`
	Totals    map[string]int `json:"totals"`
}

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PhysStone struct {
	ID    int     `json:"id"`
	Owner Color   `json:"owner"`
	Pos   Vec     `json:"pos"`
	Vel   Vec     `json:"vel"`
	Out   bool    `json:"out"`
	Score float64 `json:"-"`
}

type AlkkagiState struct {
	Round           int               `json:"round"`
	MaxRounds       int               `json:"max_rounds"`
	StonesPerPlayer int               `json:"stones_per_player"`
	Placed          map[string][]Vec  `json:"placed,omitempty"`
	Stones          []PhysStone       `json:"stones"`
	RoundWins       map[Color]int     `json:"round_wins"`
	NextID          int               `json:"next_id"`
	Opener          Color             `json:"opener"`
	Flicks          map[Color]int     `json:"flicks"`
	Meta            map[string]string `json:"meta,omitempty"`
}

type CurlingState struct {
	Round          int           `json:"round"`
	MaxRounds      int           `json:"max_rounds"`
	StonesPerRound int           `json:"stones_per_round"`
	Thrown         map[Color]int `json:"thrown"`
	Stones         []PhysStone   `json:"stones"`
	Scores         map[Color]int `json:"scores"`
	Hammer         Color         `json:"hammer"`
	NextID         int           `json:"next_id"`
}

type DisconnectionState struct {
	DisconnectedPlayerID string    `json:"disconnected_player_id"`
	TimerStartedAt       time.Time `json:"timer_started_at"`
}

type RematchState struct {
	RequestedBy   string `json:"requested_by"`
	Accepted      bool   `json:"accepted"`
	NextSessionID string `json:"next_session_id,omitempty"`
}

type ScoreBreakdown struct {
	Territory   float64 `json:"territory"`
	Captures    float64 `json:"captures"`
	DeadStones  float64 `json:"dead_stones"`
	BaseBonus   float64 `json:"base_bonus"`
	HiddenBonus float64 `json:"hidden_bonus"`
	Komi        float64 `json:"komi"`
	Points      float64 `json:"points"`
	Total       float64 `json:"total"`
}

type Result struct {
	Winner   Color                    `json:"winner"`
	WinnerID string                   `json:"winner_id,omitempty"`
	Reason   WinReason                `json:"reason"`
	Scores   map[Color]ScoreBreakdown `json:"scores,omitempty"`
	EndedAt  time.Time                `json:"ended_at"`
}
