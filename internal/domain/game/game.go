package game

import (
	"maps"
	"slices"
	"time"
)

type Participant struct {
	UserID       string `json:"user_id" bson:"user_id"`
	Nickname     string `json:"nickname" bson:"nickname"`
	Color        Color  `json:"color" bson:"color"`
	IsAI         bool   `json:"is_ai" bson:"is_ai"`
	AIDifficulty int    `json:"ai_difficulty,omitempty" bson:"ai_difficulty,omitempty"`
}

type Settings struct {
	BoardSize     int           `json:"board_size"`
	Komi          float64       `json:"komi"`
	Clock         ClockSettings `json:"clock"`
	CaptureTarget int           `json:"capture_target,omitempty"`
	MixModes      []Mode        `json:"mix_modes,omitempty"`

	BaseStones      int `json:"base_stones,omitempty"`
	PreHiddenStones int `json:"pre_hidden_stones,omitempty"`
	HiddenItems     int `json:"hidden_items,omitempty"`
	ScanItems       int `json:"scan_items,omitempty"`
	MissileItems    int `json:"missile_items,omitempty"`
	PatternStones   int `json:"pattern_stones,omitempty"`

	WinLength         int  `json:"win_length,omitempty"`
	AllowOverline     bool `json:"allow_overline,omitempty"`
	ForbidDoubleThree bool `json:"forbid_double_three,omitempty"`

	DiceRounds    int `json:"dice_rounds,omitempty"`
	ThiefTurns    int `json:"thief_turns,omitempty"`
	AlkkagiStones int `json:"alkkagi_stones,omitempty"`
	AlkkagiRounds int `json:"alkkagi_rounds,omitempty"`
	CurlingStones int `json:"curling_stones,omitempty"`
	CurlingRounds int `json:"curling_rounds,omitempty"`

	PhaseTimeLimit time.Duration `json:"phase_time_limit,omitempty"`
}

// Session is the live game aggregate. Transitions never mutate a Session in place;
// they work on a Clone and return it.
type Session struct {
	ID       string   `json:"id"`
	Mode     Mode     `json:"mode"`
	Status   Status   `json:"status"`
	Settings Settings `json:"settings"`

	Black Participant `json:"black"`
	White Participant `json:"white"`

	Current Color `json:"current"`
	// Turn increments on every accepted action; actions carrying an older value are stale.
	Turn int `json:"turn"`
	// RoundTurn is the first turn of the current simultaneous round; choices sent before it are stale.
	RoundTurn int `json:"round_turn,omitempty"`

	Board             Board         `json:"board"`
	MoveHistory       []Move        `json:"move_history"`
	Captures          map[Color]int `json:"captures"`
	Ko                *KoInfo       `json:"ko,omitempty"`
	PatternStones     []Point       `json:"pattern_stones,omitempty"`
	ConsecutivePasses int           `json:"consecutive_passes"`

	Clock         TurnClock   `json:"clock"`
	PhaseDeadline time.Time   `json:"phase_deadline,omitempty"`
	ItemWindow    *ItemWindow `json:"item_window,omitempty"`

	Disconnection       *DisconnectionState `json:"disconnection,omitempty"`
	DisconnectCounts    map[string]int      `json:"disconnect_counts,omitempty"`
	CanRequestNoContest map[string]bool     `json:"can_request_no_contest,omitempty"`
	NoContestUntil      time.Time           `json:"no_contest_until,omitempty"`
	Spectators          []string            `json:"spectators,omitempty"`
	Left                map[string]bool     `json:"left,omitempty"`

	Setup   *SetupState   `json:"setup,omitempty"`
	Bidding *BiddingState `json:"bidding,omitempty"`
	Base    *BaseState    `json:"base,omitempty"`
	Hidden  *HiddenState  `json:"hidden,omitempty"`
	Missile *MissileState `json:"missile,omitempty"`
	Dice    *DiceState    `json:"dice,omitempty"`
	Thief   *ThiefState   `json:"thief,omitempty"`
	Alkkagi *AlkkagiState `json:"alkkagi,omitempty"`
	Curling *CurlingState `json:"curling,omitempty"`

	Result       *Result       `json:"result,omitempty"`
	StatsUpdated bool          `json:"stats_updated"`
	Rematch      *RematchState `json:"rematch,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// Has reports whether rule set m is active, directly or as part of a mix.
func (s *Session) Has(m Mode) bool {
	if s.Mode == m {
		return true
	}
	return s.Mode == ModeMix && slices.Contains(s.Settings.MixModes, m)
}

func (s *Session) Participants() []Participant {
	return []Participant{s.Black, s.White}
}

func (s *Session) ColorOf(userID string) Color {
	switch userID {
	case s.Black.UserID:
		return Black
	case s.White.UserID:
		return White
	}
	return Empty
}

func (s *Session) Player(c Color) Participant {
	if c == White {
		return s.White
	}
	return s.Black
}

func (s *Session) PlayerID(c Color) string {
	return s.Player(c).UserID
}

func (s *Session) CurrentPlayer() Participant {
	return s.Player(s.Current)
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Settings.MixModes = slices.Clone(s.Settings.MixModes)
	c.Board = s.Board.Clone()
	c.MoveHistory = slices.Clone(s.MoveHistory)
	c.Captures = maps.Clone(s.Captures)
	c.PatternStones = slices.Clone(s.PatternStones)
	c.DisconnectCounts = maps.Clone(s.DisconnectCounts)
	c.CanRequestNoContest = maps.Clone(s.CanRequestNoContest)
	c.Spectators = slices.Clone(s.Spectators)
	c.Left = maps.Clone(s.Left)
	if s.Ko != nil {
		ko := *s.Ko
		c.Ko = &ko
	}
	if s.ItemWindow != nil {
		w := *s.ItemWindow
		c.ItemWindow = &w
	}
	if s.Disconnection != nil {
		d := *s.Disconnection
		c.Disconnection = &d
	}
	if s.Rematch != nil {
		r := *s.Rematch
		c.Rematch = &r
	}
	if s.Result != nil {
		r := *s.Result
		r.Scores = maps.Clone(s.Result.Scores)
		c.Result = &r
	}
	if s.Setup != nil {
		st := *s.Setup
		st.Choices = maps.Clone(s.Setup.Choices)
		st.Rolls = maps.Clone(s.Setup.Rolls)
		c.Setup = &st
	}
	if s.Bidding != nil {
		b := *s.Bidding
		b.Bids = maps.Clone(s.Bidding.Bids)
		c.Bidding = &b
	}
	if s.Base != nil {
		b := *s.Base
		b.Placed = clonePointsMap(s.Base.Placed)
		b.Stones = clonePointsMap(s.Base.Stones)
		b.Captured = maps.Clone(s.Base.Captured)
		c.Base = &b
	}
	if s.Hidden != nil {
		h := *s.Hidden
		h.PrePlaced = clonePointsMap(s.Hidden.PrePlaced)
		h.ItemsLeft = maps.Clone(s.Hidden.ItemsLeft)
		h.ScansLeft = maps.Clone(s.Hidden.ScansLeft)
		h.Stones = clonePointsMap(s.Hidden.Stones)
		h.Revealed = slices.Clone(s.Hidden.Revealed)
		h.Captured = maps.Clone(s.Hidden.Captured)
		c.Hidden = &h
	}
	if s.Missile != nil {
		m := *s.Missile
		m.ItemsLeft = maps.Clone(s.Missile.ItemsLeft)
		c.Missile = &m
	}
	if s.Dice != nil {
		d := *s.Dice
		c.Dice = &d
	}
	if s.Thief != nil {
		t := *s.Thief
		t.Rolled = slices.Clone(s.Thief.Rolled)
		t.Totals = maps.Clone(s.Thief.Totals)
		c.Thief = &t
	}
	if s.Alkkagi != nil {
		a := *s.Alkkagi
		a.Placed = clonePointsMap(s.Alkkagi.Placed)
		a.Stones = slices.Clone(s.Alkkagi.Stones)
		a.RoundWins = maps.Clone(s.Alkkagi.RoundWins)
		a.Flicks = maps.Clone(s.Alkkagi.Flicks)
		a.Meta = maps.Clone(s.Alkkagi.Meta)
		c.Alkkagi = &a
	}
	if s.Curling != nil {
		cu := *s.Curling
		cu.Thrown = maps.Clone(s.Curling.Thrown)
		cu.Stones = slices.Clone(s.Curling.Stones)
		cu.Scores = maps.Clone(s.Curling.Scores)
		c.Curling = &cu
	}
	return &c
}

func clonePointsMap[K comparable, V any](m map[K][]V) map[K][]V {
	if m == nil {
		return nil
	}
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

type CreateRequest struct {
	Mode     Mode        `json:"mode"`
	Settings Settings    `json:"settings"`
	Black    Participant `json:"black"`
	White    Participant `json:"white"`
}

type CreateResponse struct {
	SessionID string `json:"session_id"`
}
