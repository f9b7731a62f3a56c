package game

import "time"

// ArchivedGame is the stored record of a finished session.
type ArchivedGame struct {
	SessionID string          `json:"session_id" bson:"_id"`
	Mode      Mode            `json:"mode" bson:"mode"`
	Players   []string        `json:"players" bson:"players"`
	Black     Participant     `json:"black" bson:"black"`
	White     Participant     `json:"white" bson:"white"`
	Winner    Color           `json:"winner" bson:"winner"`
	Reason    WinReason       `json:"reason" bson:"reason"`
	Summaries []SummaryRecord `json:"summaries" bson:"summaries"`
	Moves     []Move          `json:"moves" bson:"moves"`
	SGF       string          `json:"sgf,omitempty" bson:"sgf,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	EndedAt   time.Time       `json:"ended_at" bson:"ended_at"`
}
