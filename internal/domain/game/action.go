package game

type ActionType string

const (
	ActionMove   ActionType = "move"
	ActionPass   ActionType = "pass"
	ActionResign ActionType = "resign"

	ActionNigiriGuess ActionType = "nigiri_guess"
	ActionRPS         ActionType = "rps"
	ActionTurnRoll    ActionType = "turn_roll"

	ActionPlaceBase    ActionType = "place_base"
	ActionBid          ActionType = "bid"
	ActionPreplaceHide ActionType = "preplace_hidden"

	ActionUseHidden  ActionType = "use_hidden"
	ActionUseScan    ActionType = "use_scan"
	ActionUseMissile ActionType = "use_missile"
	ActionScan       ActionType = "scan"
	ActionMissile    ActionType = "missile"

	ActionDiceRoll     ActionType = "dice_roll"
	ActionThiefRoll    ActionType = "thief_roll"
	ActionAlkkagiPlace ActionType = "alkkagi_place"
	ActionFlick        ActionType = "flick"
	ActionThrow        ActionType = "curling_throw"

	ActionRematch          ActionType = "rematch"
	ActionAcceptRematch    ActionType = "accept_rematch"
	ActionLeave            ActionType = "leave"
	ActionRequestNoContest ActionType = "request_no_contest"
)

// IsOutOfBand reports actions still accepted once a session is terminal.
func (t ActionType) IsOutOfBand() bool {
	switch t {
	case ActionRematch, ActionAcceptRematch, ActionLeave, ActionRequestNoContest:
		return true
	}
	return false
}

type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

type Payload struct {
	Point     *Point    `json:"point,omitempty"`
	Points    []Point   `json:"points,omitempty"`
	Choice    string    `json:"choice,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	StoneID   int       `json:"stone_id,omitempty"`
	Vector    *Vec      `json:"vector,omitempty"`
	Spots     []Vec     `json:"spots,omitempty"`
}

// Action is the only player-driven input of the state machine.
type Action struct {
	Type    ActionType `json:"type"`
	UserID  string     `json:"user_id"`
	Turn    int        `json:"turn"`
	Payload Payload    `json:"payload"`
}

type SummaryRecord struct {
	SessionID string         `json:"session_id" bson:"session_id"`
	Mode      Mode           `json:"mode" bson:"mode"`
	UserID    string         `json:"user_id" bson:"user_id"`
	Color     Color          `json:"color" bson:"color"`
	Winner    Color          `json:"winner" bson:"winner"`
	WinnerID  string         `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	WinReason WinReason      `json:"win_reason" bson:"win_reason"`
	Won       bool           `json:"won" bson:"won"`
	NoContest bool           `json:"no_contest" bson:"no_contest"`
	Score     ScoreBreakdown `json:"score" bson:"score"`
	Opponent  ScoreBreakdown `json:"opponent_score" bson:"opponent_score"`
	Moves     int            `json:"moves" bson:"moves"`
}
