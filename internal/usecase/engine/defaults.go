package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

// LockedRand is a mutex-guarded *rand.Rand shared by every session.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func applyDefaults(s *game.Session) {
	st := &s.Settings
	if st.BoardSize == 0 {
		switch {
		case s.Mode == game.ModeCapture || s.Mode == game.ModeDice || s.Mode == game.ModeThief:
			st.BoardSize = 9
		case s.Mode.IsLineMode():
			st.BoardSize = 15
		default:
			st.BoardSize = 19
		}
	}
	if s.Has(game.ModeSpeed) && (st.Clock.Discipline == "" || st.Clock.Discipline == game.DisciplineNone) {
		st.Clock = game.ClockSettings{
			Discipline:       game.DisciplineFischer,
			MainTime:         5 * time.Minute,
			FischerIncrement: 5 * time.Second,
			ItemUseTime:      st.Clock.ItemUseTime,
		}
	}
	if st.Clock.Discipline == "" {
		st.Clock.Discipline = game.DisciplineNone
	}
	if s.Has(game.ModeCapture) && st.CaptureTarget == 0 {
		st.CaptureTarget = 5
	}
	if s.Mode == game.ModeTtamok && st.CaptureTarget == 0 {
		st.CaptureTarget = 10
	}
	if s.Has(game.ModeBase) && st.BaseStones == 0 {
		st.BaseStones = 4
	}
	if s.Has(game.ModeHidden) {
		if st.HiddenItems == 0 {
			st.HiddenItems = 1
		}
		if st.ScanItems == 0 {
			st.ScanItems = 1
		}
	}
	if s.Has(game.ModeMissile) && st.MissileItems == 0 {
		st.MissileItems = 2
	}
	defaultInt(&st.WinLength, 5)
	defaultInt(&st.DiceRounds, 5)
	defaultInt(&st.ThiefTurns, 5)
	defaultInt(&st.AlkkagiStones, 5)
	defaultInt(&st.AlkkagiRounds, 3)
	defaultInt(&st.CurlingStones, 4)
	defaultInt(&st.CurlingRounds, 3)
}

func defaultInt(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

func validate(s *game.Session) error {
	if !s.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", errs.ErrInvalidSettings, s.Mode)
	}
	if s.Black.UserID == "" || s.White.UserID == "" || s.Black.UserID == s.White.UserID {
		return fmt.Errorf("%w: two distinct participants required", errs.ErrInvalidSettings)
	}
	if n := s.Settings.BoardSize; n < 5 || n > 19 {
		return fmt.Errorf("%w: board size %d", errs.ErrInvalidSettings, n)
	}
	for _, mm := range s.Settings.MixModes {
		if !mm.Mixable() {
			return fmt.Errorf("%w: %q cannot be mixed", errs.ErrInvalidSettings, mm)
		}
	}
	if s.Mode == game.ModeMix && len(s.Settings.MixModes) == 0 {
		return fmt.Errorf("%w: mix without modes", errs.ErrInvalidSettings)
	}
	for _, p := range []game.Participant{s.Black, s.White} {
		if p.IsAI && (p.AIDifficulty < 1 || p.AIDifficulty > 10) {
			return fmt.Errorf("%w: ai difficulty %d", errs.ErrInvalidSettings, p.AIDifficulty)
		}
	}
	if s.Black.IsAI && s.White.IsAI {
		return fmt.Errorf("%w: at least one human participant required", errs.ErrInvalidSettings)
	}
	if c := s.Settings.Clock; c.Discipline == game.DisciplineByoyomi && c.MainTime <= 0 && (c.ByoyomiTime <= 0 || c.ByoyomiPeriods <= 0) {
		return fmt.Errorf("%w: byoyomi without any time", errs.ErrInvalidSettings)
	}
	return nil
}
