package clock

import (
	"time"

	"game_arena/internal/domain/game"
)

// All functions take and return TurnClock by value; callers store the result.

func NewTurnClock(settings game.ClockSettings) game.TurnClock {
	pc := game.PlayerClock{
		Remaining:   settings.MainTime,
		PeriodsLeft: settings.ByoyomiPeriods,
	}
	if settings.Discipline == game.DisciplineByoyomi && settings.MainTime <= 0 && hasByoyomi(settings) {
		pc.InByoyomi = true
		pc.Remaining = settings.ByoyomiTime
	}
	return game.TurnClock{
		Settings: settings,
		Black:    pc,
		White:    pc,
	}
}

func hasByoyomi(s game.ClockSettings) bool {
	return s.Discipline == game.DisciplineByoyomi && s.ByoyomiPeriods > 0 && s.ByoyomiTime > 0
}

// StartTurn hands the clock to color. The deadline is derived from the stored
// remaining time, never from the previous deadline.
func StartTurn(c game.TurnClock, color game.Color, now time.Time) game.TurnClock {
	c.Running = color
	c.TurnStartedAt = now
	c.Paused = false
	c.PausedAt = time.Time{}
	c.TurnDeadline = Deadline(c.Settings, c.Player(color), now)
	return c
}

// Deadline is the instant a player starting a turn at start runs out of time.
func Deadline(s game.ClockSettings, pc game.PlayerClock, start time.Time) time.Time {
	switch s.Discipline {
	case game.DisciplineFischer:
		return start.Add(pc.Remaining)
	case game.DisciplineByoyomi:
		if !hasByoyomi(s) {
			return start.Add(pc.Remaining)
		}
		if pc.InByoyomi {
			return start.Add(pc.Remaining + s.ByoyomiTime*time.Duration(pc.PeriodsLeft))
		}
		return start.Add(pc.Remaining + s.ByoyomiTime*time.Duration(pc.PeriodsLeft+1))
	}
	return time.Time{}
}

func elapsed(c game.TurnClock, now time.Time) time.Duration {
	if c.Paused {
		now = c.PausedAt
	}
	d := now.Sub(c.TurnStartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// charge runs elapsed time through main time and then byoyomi windows.
// Expired windows consume a period each; the last window cannot be consumed and
// its overrun shows up as negative Remaining.
func charge(s game.ClockSettings, pc game.PlayerClock, d time.Duration) game.PlayerClock {
	if s.Discipline != game.DisciplineByoyomi || !hasByoyomi(s) {
		pc.Remaining -= d
		return pc
	}
	if !pc.InByoyomi {
		if d < pc.Remaining {
			pc.Remaining -= d
			return pc
		}
		d -= pc.Remaining
		pc.InByoyomi = true
		pc.Remaining = s.ByoyomiTime
	}
	for d >= pc.Remaining {
		if pc.PeriodsLeft == 0 {
			pc.Remaining -= d
			return pc
		}
		d -= pc.Remaining
		pc.PeriodsLeft--
		pc.Remaining = s.ByoyomiTime
	}
	pc.Remaining -= d
	return pc
}

// Project is what color's clock would read if charged at now, without the
// effects of completing a move.
func Project(c game.TurnClock, color game.Color, now time.Time) game.PlayerClock {
	pc := c.Player(color)
	if !c.Enabled() || c.Running != color || c.TurnStartedAt.IsZero() {
		return pc
	}
	return charge(c.Settings, pc, elapsed(c, now))
}

// CompleteMove charges the mover and applies the discipline's completion rule:
// a move finished inside a byoyomi window consumes one period (floored at zero)
// and refills the window; fischer adds the increment.
func CompleteMove(c game.TurnClock, color game.Color, now time.Time) game.TurnClock {
	if !c.Enabled() {
		return c
	}
	pc := Project(c, color, now)
	switch c.Settings.Discipline {
	case game.DisciplineByoyomi:
		if pc.InByoyomi && pc.Remaining > 0 {
			pc.PeriodsLeft = max(0, pc.PeriodsLeft-1)
			pc.Remaining = c.Settings.ByoyomiTime
		}
	case game.DisciplineFischer:
		pc.Remaining += c.Settings.FischerIncrement
	}
	c.SetPlayer(color, pc)
	c.TurnStartedAt = now
	return c
}

// IsTimedOut is the timeout predicate; the clock never enforces it itself.
func IsTimedOut(pc game.PlayerClock) bool {
	return pc.Remaining <= 0 && pc.PeriodsLeft == 0
}

// Expired reports whether the running player has hit the turn deadline.
func Expired(c game.TurnClock, now time.Time) bool {
	if !c.Enabled() || c.Paused || c.TurnDeadline.IsZero() {
		return false
	}
	return !now.Before(c.TurnDeadline)
}

// Pause freezes the running clock; the time left at now is kept exactly.
func Pause(c game.TurnClock, now time.Time) game.TurnClock {
	if c.Paused {
		return c
	}
	c.Paused = true
	c.PausedAt = now
	return c
}

// Resume restarts a paused clock so that the paused span is not charged.
func Resume(c game.TurnClock, now time.Time) game.TurnClock {
	if !c.Paused {
		return c
	}
	gap := now.Sub(c.PausedAt)
	if gap < 0 {
		gap = 0
	}
	c.Paused = false
	c.PausedAt = time.Time{}
	if !c.TurnStartedAt.IsZero() {
		c.TurnStartedAt = c.TurnStartedAt.Add(gap)
	}
	if !c.TurnDeadline.IsZero() {
		c.TurnDeadline = c.TurnDeadline.Add(gap)
	}
	return c
}

// TimeLeft is the total time color has before timing out, counting remaining periods.
func TimeLeft(c game.TurnClock, color game.Color, now time.Time) time.Duration {
	if !c.Enabled() {
		return 0
	}
	pc := Project(c, color, now)
	return Deadline(c.Settings, pc, now).Sub(now)
}

// OpenItemWindow pauses the main clock and returns the item-use deadline.
func OpenItemWindow(c game.TurnClock, now time.Time) (game.TurnClock, time.Time) {
	return Pause(c, now), now.Add(c.Settings.ItemUseTime)
}

func CloseItemWindow(c game.TurnClock, now time.Time) game.TurnClock {
	return Resume(c, now)
}
