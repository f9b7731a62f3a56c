package engine

import (
	"fmt"
	"slices"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

var rpsBeats = map[string]string{"rock": "scissors", "scissors": "paper", "paper": "rock"}

var rpsChoices = []string{"rock", "paper", "scissors"}

// assignBlack swaps the participants when userID is not black already.
func assignBlack(s *game.Session, userID string) {
	if s.Black.UserID == userID {
		return
	}
	s.Black, s.White = s.White, s.Black
	s.Black.Color, s.White.Color = game.Black, game.White
}

func (m *Machine) beginNigiri(s *game.Session, now time.Time) {
	holder := s.Black.UserID
	if m.rnd.Intn(2) == 1 {
		holder = s.White.UserID
	}
	s.Setup = &game.SetupState{NigiriHolder: holder, NigiriStones: m.rnd.Intn(20) + 1}
	s.Current = s.ColorOf(holder).Opponent()
	m.openPhase(s, game.StatusNigiri, now)
}

// applyNigiri resolves the guess. A right guess takes black.
func (m *Machine) applyNigiri(s *game.Session, a game.Action, c game.Color) error {
	if a.Type != game.ActionNigiriGuess {
		return errs.ErrWrongPhase
	}
	if c != s.Current {
		return errs.ErrNotYourTurn
	}
	guess := a.Payload.Choice
	if guess != "odd" && guess != "even" {
		return fmt.Errorf("%w: guess must be odd or even", errs.ErrInvalidPayload)
	}
	m.resolveNigiri(s, a.UserID, guess)
	return nil
}

func (m *Machine) resolveNigiri(s *game.Session, guesser, guess string) {
	s.Setup.Guess = guess
	odd := s.Setup.NigiriStones%2 == 1
	if odd == (guess == "odd") {
		assignBlack(s, guesser)
	} else {
		assignBlack(s, s.Setup.NigiriHolder)
	}
	m.log.Infow("nigiri resolved", "session", s.ID, "stones", s.Setup.NigiriStones, "guess", guess, "black", s.Black.UserID)
}

func (m *Machine) expireNigiri(s *game.Session) {
	guess := "odd"
	if m.rnd.Intn(2) == 1 {
		guess = "even"
	}
	m.resolveNigiri(s, s.PlayerID(s.Current), guess)
}

func (m *Machine) beginRPS(s *game.Session, now time.Time) {
	s.Setup = &game.SetupState{Choices: make(map[string]string)}
	m.openPhase(s, game.StatusRPS, now)
}

// applyRPS records a choice; winner is set once both sides chose differently.
// A tie clears the choices and restarts the phase.
func (m *Machine) applyRPS(s *game.Session, a game.Action, now time.Time) (winner string, err error) {
	if a.Type != game.ActionRPS {
		return "", errs.ErrWrongPhase
	}
	if _, ok := rpsBeats[a.Payload.Choice]; !ok {
		return "", fmt.Errorf("%w: unknown choice %q", errs.ErrInvalidPayload, a.Payload.Choice)
	}
	if _, done := s.Setup.Choices[a.UserID]; done {
		return "", errs.ErrAlreadySubmitted
	}
	s.Setup.Choices[a.UserID] = a.Payload.Choice
	return m.resolveRPS(s, now), nil
}

func (m *Machine) resolveRPS(s *game.Session, now time.Time) string {
	b, okB := s.Setup.Choices[s.Black.UserID]
	w, okW := s.Setup.Choices[s.White.UserID]
	if !okB || !okW {
		return ""
	}
	if b == w {
		s.Setup.Ties++
		s.Setup.Choices = make(map[string]string)
		m.restartRound(s, now)
		return ""
	}
	if rpsBeats[b] == w {
		return s.Black.UserID
	}
	return s.White.UserID
}

func (m *Machine) expireRPS(s *game.Session, now time.Time) string {
	for _, p := range s.Participants() {
		if _, ok := s.Setup.Choices[p.UserID]; !ok {
			s.Setup.Choices[p.UserID] = rpsChoices[m.rnd.Intn(len(rpsChoices))]
		}
	}
	return m.resolveRPS(s, now)
}

func (m *Machine) beginTurnRoll(s *game.Session, now time.Time) {
	s.Setup = &game.SetupState{Rolls: make(map[string]int)}
	m.openPhase(s, game.StatusTurnRoll, now)
}

// applyTurnRoll rolls for the caller; the higher roll moves first, ties roll again.
func (m *Machine) applyTurnRoll(s *game.Session, a game.Action, now time.Time) (first string, err error) {
	if a.Type != game.ActionTurnRoll {
		return "", errs.ErrWrongPhase
	}
	if _, done := s.Setup.Rolls[a.UserID]; done {
		return "", errs.ErrAlreadySubmitted
	}
	s.Setup.Rolls[a.UserID] = m.roll()
	return m.resolveTurnRoll(s, now), nil
}

func (m *Machine) resolveTurnRoll(s *game.Session, now time.Time) string {
	b, okB := s.Setup.Rolls[s.Black.UserID]
	w, okW := s.Setup.Rolls[s.White.UserID]
	if !okB || !okW {
		return ""
	}
	switch {
	case b > w:
		return s.Black.UserID
	case w > b:
		return s.White.UserID
	}
	s.Setup.Ties++
	s.Setup.Rolls = make(map[string]int)
	m.restartRound(s, now)
	return ""
}

func (m *Machine) expireTurnRoll(s *game.Session, now time.Time) string {
	for _, p := range s.Participants() {
		if _, ok := s.Setup.Rolls[p.UserID]; !ok {
			s.Setup.Rolls[p.UserID] = m.roll()
		}
	}
	return m.resolveTurnRoll(s, now)
}

// collectPoints appends pts to have, enforcing bounds, uniqueness and the quota.
func collectPoints(b game.Board, have, pts []game.Point, quota int) ([]game.Point, error) {
	if len(pts) == 0 {
		return nil, fmt.Errorf("%w: no points", errs.ErrInvalidPayload)
	}
	if len(have)+len(pts) > quota {
		return nil, fmt.Errorf("%w: at most %d points", errs.ErrInvalidPayload, quota)
	}
	out := slices.Clone(have)
	for _, p := range pts {
		if !b.InBounds(p) || b.At(p) != game.Empty || slices.Contains(out, p) {
			return nil, fmt.Errorf("%w: point %v unavailable", errs.ErrIllegalMove, p)
		}
		out = append(out, p)
	}
	return out, nil
}

// dropConflicts removes points that both sides chose.
func dropConflicts(a, b []game.Point) ([]game.Point, []game.Point) {
	keepA := slices.DeleteFunc(slices.Clone(a), func(p game.Point) bool { return slices.Contains(b, p) })
	keepB := slices.DeleteFunc(slices.Clone(b), func(p game.Point) bool { return slices.Contains(a, p) })
	return keepA, keepB
}

func (m *Machine) beginBasePlacement(s *game.Session, now time.Time) {
	s.Base = &game.BaseState{
		Placed:   make(map[string][]game.Point),
		Stones:   make(map[game.Color][]game.Point),
		Captured: map[game.Color]int{game.Black: 0, game.White: 0},
	}
	m.openPhase(s, game.StatusBasePlacement, now)
}

// applyBasePlacement reports done once both sides placed their quota.
func (m *Machine) applyBasePlacement(s *game.Session, a game.Action) (done bool, err error) {
	if a.Type != game.ActionPlaceBase {
		return false, errs.ErrWrongPhase
	}
	have := s.Base.Placed[a.UserID]
	if len(have) >= s.Settings.BaseStones {
		return false, errs.ErrAlreadySubmitted
	}
	next, err := collectPoints(s.Board, have, a.Payload.Points, s.Settings.BaseStones)
	if err != nil {
		return false, err
	}
	s.Base.Placed[a.UserID] = next
	return m.basePlacementDone(s), nil
}

func (m *Machine) basePlacementDone(s *game.Session) bool {
	for _, p := range s.Participants() {
		if len(s.Base.Placed[p.UserID]) < s.Settings.BaseStones {
			return false
		}
	}
	a, b := dropConflicts(s.Base.Placed[s.Black.UserID], s.Base.Placed[s.White.UserID])
	s.Base.Placed[s.Black.UserID], s.Base.Placed[s.White.UserID] = a, b
	return true
}

func (m *Machine) expireBasePlacement(s *game.Session) {
	var taken []game.Point
	for _, pts := range s.Base.Placed {
		taken = append(taken, pts...)
	}
	for _, p := range s.Participants() {
		have := s.Base.Placed[p.UserID]
		if missing := s.Settings.BaseStones - len(have); missing > 0 {
			extra := m.randomFrom(s.Board.EmptyPoints(), missing, taken)
			taken = append(taken, extra...)
			s.Base.Placed[p.UserID] = append(have, extra...)
		}
	}
	m.basePlacementDone(s)
}

// putBaseStones moves the agreed base points onto the board once colors are known.
func putBaseStones(s *game.Session) {
	for _, p := range s.Participants() {
		for _, pt := range s.Base.Placed[p.UserID] {
			s.Board.Set(pt, p.Color)
		}
		s.Base.Stones[p.Color] = slices.Clone(s.Base.Placed[p.UserID])
	}
}

func (m *Machine) beginBidding(s *game.Session, now time.Time) {
	s.Bidding = &game.BiddingState{Bids: make(map[string]int)}
	m.openPhase(s, game.StatusKomiBidding, now)
}

// applyBid reports done once the higher bidder took black.
func (m *Machine) applyBid(s *game.Session, a game.Action, now time.Time) (done bool, err error) {
	if a.Type != game.ActionBid {
		return false, errs.ErrWrongPhase
	}
	if a.Payload.Amount < 0 || a.Payload.Amount > s.Settings.BoardSize*s.Settings.BoardSize {
		return false, fmt.Errorf("%w: bid %d", errs.ErrInvalidPayload, a.Payload.Amount)
	}
	if _, ok := s.Bidding.Bids[a.UserID]; ok {
		return false, errs.ErrAlreadySubmitted
	}
	s.Bidding.Bids[a.UserID] = a.Payload.Amount
	return m.resolveBids(s, now, false), nil
}

func (m *Machine) resolveBids(s *game.Session, now time.Time, forced bool) bool {
	b, okB := s.Bidding.Bids[s.Black.UserID]
	w, okW := s.Bidding.Bids[s.White.UserID]
	if !okB || !okW {
		return false
	}
	winner, bid := s.Black.UserID, b
	switch {
	case w > b:
		winner, bid = s.White.UserID, w
	case w == b && !forced:
		s.Bidding.Ties++
		s.Bidding.Bids = make(map[string]int)
		m.restartRound(s, now)
		return false
	case w == b && m.rnd.Intn(2) == 1:
		winner = s.White.UserID
	}
	assignBlack(s, winner)
	s.Settings.Komi = float64(bid) + 0.5
	m.log.Infow("komi bidding resolved", "session", s.ID, "black", winner, "komi", s.Settings.Komi)
	return true
}

func (m *Machine) expireBidding(s *game.Session, now time.Time) {
	for _, p := range s.Participants() {
		if _, ok := s.Bidding.Bids[p.UserID]; !ok {
			s.Bidding.Bids[p.UserID] = 0
		}
	}
	m.resolveBids(s, now, true)
}

func (m *Machine) beginHiddenPrePlacement(s *game.Session, now time.Time) {
	s.Hidden.PrePlaced = make(map[string][]game.Point)
	m.openPhase(s, game.StatusHiddenPrePlacement, now)
}

func (m *Machine) applyHiddenPrePlacement(s *game.Session, a game.Action) (done bool, err error) {
	if a.Type != game.ActionPreplaceHide {
		return false, errs.ErrWrongPhase
	}
	have := s.Hidden.PrePlaced[a.UserID]
	if len(have) >= s.Settings.PreHiddenStones {
		return false, errs.ErrAlreadySubmitted
	}
	next, err := collectPoints(s.Board, have, a.Payload.Points, s.Settings.PreHiddenStones)
	if err != nil {
		return false, err
	}
	s.Hidden.PrePlaced[a.UserID] = next
	return m.hiddenPrePlacementDone(s), nil
}

func (m *Machine) hiddenPrePlacementDone(s *game.Session) bool {
	for _, p := range s.Participants() {
		if len(s.Hidden.PrePlaced[p.UserID]) < s.Settings.PreHiddenStones {
			return false
		}
	}
	a, b := dropConflicts(s.Hidden.PrePlaced[s.Black.UserID], s.Hidden.PrePlaced[s.White.UserID])
	for c, pts := range map[game.Color][]game.Point{game.Black: a, game.White: b} {
		for _, p := range pts {
			s.Board.Set(p, c)
		}
		s.Hidden.Stones[c] = append(s.Hidden.Stones[c], pts...)
	}
	s.Hidden.PrePlaced = nil
	return true
}

func (m *Machine) expireHiddenPrePlacement(s *game.Session) {
	var taken []game.Point
	for _, pts := range s.Hidden.PrePlaced {
		taken = append(taken, pts...)
	}
	for _, p := range s.Participants() {
		have := s.Hidden.PrePlaced[p.UserID]
		if missing := s.Settings.PreHiddenStones - len(have); missing > 0 {
			extra := m.randomFrom(s.Board.EmptyPoints(), missing, taken)
			taken = append(taken, extra...)
			s.Hidden.PrePlaced[p.UserID] = append(have, extra...)
		}
	}
	m.hiddenPrePlacementDone(s)
}
