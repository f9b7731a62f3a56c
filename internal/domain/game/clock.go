package game

import "time"

type Discipline string

const (
	DisciplineNone    Discipline = "none"
	DisciplineByoyomi Discipline = "byoyomi"
	DisciplineFischer Discipline = "fischer"
)

type ClockSettings struct {
	Discipline       Discipline    `json:"discipline" bson:"discipline"`
	MainTime         time.Duration `json:"main_time" bson:"main_time"`
	ByoyomiTime      time.Duration `json:"byoyomi_time" bson:"byoyomi_time"`
	ByoyomiPeriods   int           `json:"byoyomi_periods" bson:"byoyomi_periods"`
	FischerIncrement time.Duration `json:"fischer_increment" bson:"fischer_increment"`
	ItemUseTime      time.Duration `json:"item_use_time" bson:"item_use_time"`
}

// PlayerClock holds main time until InByoyomi, then the time left in the current period.
type PlayerClock struct {
	Remaining   time.Duration `json:"remaining" bson:"remaining"`
	PeriodsLeft int           `json:"periods_left" bson:"periods_left"`
	InByoyomi   bool          `json:"in_byoyomi" bson:"in_byoyomi"`
}

type TurnClock struct {
	Settings      ClockSettings `json:"settings" bson:"settings"`
	Black         PlayerClock   `json:"black" bson:"black"`
	White         PlayerClock   `json:"white" bson:"white"`
	Running       Color         `json:"running" bson:"running"`
	TurnStartedAt time.Time     `json:"turn_started_at" bson:"turn_started_at"`
	TurnDeadline  time.Time     `json:"turn_deadline" bson:"turn_deadline"`
	Paused        bool          `json:"paused" bson:"paused"`
	PausedAt      time.Time     `json:"paused_at,omitempty" bson:"paused_at,omitempty"`
}

func (c TurnClock) Player(color Color) PlayerClock {
	if color == White {
		return c.White
	}
	return c.Black
}

func (c *TurnClock) SetPlayer(color Color, pc PlayerClock) {
	if color == White {
		c.White = pc
		return
	}
	c.Black = pc
}

func (c TurnClock) Enabled() bool {
	return c.Settings.Discipline == DisciplineByoyomi || c.Settings.Discipline == DisciplineFischer
}
