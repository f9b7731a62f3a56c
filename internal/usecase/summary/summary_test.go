package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game_arena/internal/domain"
	"game_arena/internal/domain/game"
)

type stubAnalyzer struct {
	res domain.AnalysisResult
	err error
}

func (a stubAnalyzer) Analyze(context.Context, *game.Session, domain.AnalyzeOptions) (domain.AnalysisResult, error) {
	return a.res, a.err
}

type recordingPublisher struct {
	batches [][]game.SummaryRecord
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, records []game.SummaryRecord) error {
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, records)
	return nil
}

type recordingArchive struct {
	sgf []string
}

func (a *recordingArchive) Archive(_ context.Context, _ *game.Session, _ []game.SummaryRecord, sgf string) error {
	a.sgf = append(a.sgf, sgf)
	return nil
}

// twoWalls is a 5x5 board with a black wall on x=1 and a white wall on x=3.
func twoWalls() *game.Session {
	s := &game.Session{
		ID:       "s1",
		Mode:     game.ModeStandard,
		Status:   game.StatusScoring,
		Settings: game.Settings{BoardSize: 5, Komi: 0.5},
		Black:    game.Participant{UserID: "alice"},
		White:    game.Participant{UserID: "bob"},
		Board:    game.NewBoard(5),
		Captures: map[game.Color]int{game.Black: 2},
	}
	for y := 0; y < 5; y++ {
		s.Board.Set(game.Point{X: 1, Y: y}, game.Black)
		s.Board.Set(game.Point{X: 3, Y: y}, game.White)
	}
	return s
}

func TestScore_AreaFallbackWhenAnalysisFails(t *testing.T) {
	// Given
	sc := NewScorer(stubAnalyzer{err: errors.New("down")}, time.Second, zap.NewNop().Sugar())

	// When
	got := sc.Score(context.Background(), twoWalls())

	// Then
	assert.Equal(t, 5.0, got[game.Black].Territory)
	assert.Equal(t, 2.0, got[game.Black].Captures)
	assert.Equal(t, 7.0, got[game.Black].Total)
	assert.Equal(t, 5.0, got[game.White].Territory)
	assert.Equal(t, 5.5, got[game.White].Total)
}

func TestScore_OwnershipCountsDeadStones(t *testing.T) {
	s := twoWalls()
	s.Settings.Komi = 6.5
	s.Captures = map[game.Color]int{}
	s.Board.Set(game.Point{X: 0, Y: 0}, game.White)
	own := make([][]float64, 5)
	for y := range own {
		own[y] = []float64{1, 1, 1, -1, -1}
	}
	sc := NewScorer(stubAnalyzer{res: domain.AnalysisResult{Ownership: own}}, time.Second, zap.NewNop().Sugar())

	got := sc.Score(context.Background(), s)

	assert.Equal(t, 10.0, got[game.Black].Territory)
	assert.Equal(t, 1.0, got[game.Black].DeadStones)
	assert.Equal(t, 11.0, got[game.Black].Total)
	assert.Equal(t, 5.0, got[game.White].Territory)
	assert.Equal(t, 11.5, got[game.White].Total)
}

func TestScore_ModeBonuses(t *testing.T) {
	s := twoWalls()
	s.Base = &game.BaseState{Captured: map[game.Color]int{game.Black: 1}}
	s.Hidden = &game.HiddenState{Captured: map[game.Color]int{game.White: 2}}

	got := NewScorer(nil, time.Second, zap.NewNop().Sugar()).Score(context.Background(), s)

	assert.Equal(t, 5.0, got[game.Black].BaseBonus)
	assert.Equal(t, 2.0, got[game.White].HiddenBonus)
	assert.Equal(t, 12.0, got[game.Black].Total)
}

func ended() *game.Session {
	s := twoWalls()
	s.Status = game.StatusEnded
	s.Captures = map[game.Color]int{game.Black: 3, game.White: 5}
	s.MoveHistory = make([]game.Move, 12)
	s.Result = &game.Result{Winner: game.White, WinnerID: "bob", Reason: game.ReasonCaptureLimit}
	return s
}

func TestBuild_OneRecordPerParticipant(t *testing.T) {
	records := Build(ended())

	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].UserID)
	assert.False(t, records[0].Won)
	assert.Equal(t, 3.0, records[0].Score.Total)
	assert.Equal(t, 5.0, records[0].Opponent.Total)
	assert.True(t, records[1].Won)
	assert.Equal(t, game.ReasonCaptureLimit, records[1].WinReason)
	assert.Equal(t, 12, records[1].Moves)
}

func TestBuild_NoContestHasNoWinner(t *testing.T) {
	s := ended()
	s.Status = game.StatusNoContest
	s.Result = &game.Result{Reason: game.ReasonNoContest}

	for _, r := range Build(s) {
		assert.True(t, r.NoContest)
		assert.False(t, r.Won)
	}
}

func TestEmit_ExactlyOnce(t *testing.T) {
	// Given
	pub := &recordingPublisher{}
	arch := &recordingArchive{}
	e := NewEmitter(pub, arch, zap.NewNop().Sugar())
	s := ended()

	// When: the tick loop reaches the session twice
	next, err := e.Emit(context.Background(), s)
	require.NoError(t, err)
	again, err := e.Emit(context.Background(), next)
	require.NoError(t, err)

	// Then
	assert.True(t, next.StatsUpdated)
	assert.False(t, s.StatsUpdated)
	assert.Same(t, next, again)
	assert.Len(t, pub.batches, 1)
	require.Len(t, arch.sgf, 1)
	assert.Contains(t, arch.sgf[0], "RE[W+F]")
}

func TestEmit_PublishFailureKeepsFlagUnset(t *testing.T) {
	e := NewEmitter(&recordingPublisher{err: errors.New("redis down")}, nil, zap.NewNop().Sugar())

	next, err := e.Emit(context.Background(), ended())

	assert.Error(t, err)
	assert.Nil(t, next)
}

func TestEmit_RejectsLiveSession(t *testing.T) {
	e := NewEmitter(&recordingPublisher{}, nil, zap.NewNop().Sugar())

	_, err := e.Emit(context.Background(), twoWalls())

	assert.Error(t, err)
}
