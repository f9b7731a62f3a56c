package game

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	repo "game_arena/internal/repository"
	"game_arena/internal/usecase/engine"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers map[string]string

func (f fakeUsers) Nickname(_ context.Context, id string) (string, bool) {
	n, ok := f[id]
	return n, ok
}

type fakePresence struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func (p *fakePresence) Touch(_ context.Context, id string, now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[id] = now
	return nil
}

type fakeArchive struct{}

func (fakeArchive) Get(context.Context, string) (*game.ArchivedGame, error) {
	return nil, errs.ErrGameNotFound
}

func (fakeArchive) ByUser(context.Context, string, int) ([]game.ArchivedGame, error) {
	return nil, nil
}

func newTestUseCase(t *testing.T) (*GameUseCase, *fakePresence, *repo.SessionRepository) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zap.NewNop().Sugar()
	store := repo.NewSessionRepository(client, log)
	presence := &fakePresence{seen: map[string]time.Time{}}
	machine := engine.NewMachine(engine.Config{
		HeartbeatTimeout:    10 * time.Second,
		DisconnectGrace:     time.Minute,
		DisconnectForfeit:   3,
		NoContestMoveWindow: 20,
		NoContestOffer:      2 * time.Minute,
		PhaseTimeout:        30 * time.Second,
		ItemUseTimeout:      20 * time.Second,
	}, log, engine.NewLockedRand(1))

	uc := NewGameUseCase(store, presence, fakeUsers{"alice": "Alice", "bob": "Bob"}, fakeArchive{}, machine, log)
	uc.now = func() time.Time { return t0 }
	return uc, presence, store
}

func vsAI() game.CreateRequest {
	return game.CreateRequest{
		Mode:     game.ModeStandard,
		Settings: game.Settings{BoardSize: 9, Komi: 6.5},
		Black:    game.Participant{UserID: "alice"},
		White:    game.Participant{UserID: "bot-1", IsAI: true, AIDifficulty: 3},
	}
}

func TestCreate_ResolvesNicknamesAndPersists(t *testing.T) {
	uc, _, store := newTestUseCase(t)
	ctx := context.Background()

	s, err := uc.Create(ctx, vsAI())

	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Alice", s.Black.Nickname)
	assert.Equal(t, "AI level 3", s.White.Nickname)
	assert.Equal(t, game.StatusPlaying, s.Status)

	stored, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Version, stored.Version)
}

func TestCreate_RejectsSamePlayerTwice(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	req := vsAI()
	req.White = game.Participant{UserID: "alice"}

	_, err := uc.Create(context.Background(), req)

	assert.ErrorIs(t, err, errs.ErrInvalidSettings)
}

func TestSubmit_AppliesAndBroadcasts(t *testing.T) {
	// Given: a live session with one watcher
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()
	s, err := uc.Create(ctx, vsAI())
	require.NoError(t, err)
	updates, cancel := uc.Watch(s.ID)
	defer cancel()

	// When
	view, err := uc.Submit(ctx, s.ID, game.Action{
		Type: game.ActionMove, UserID: "alice", Turn: s.Turn,
		Payload: game.Payload{Point: &game.Point{X: 4, Y: 4}},
	})

	// Then
	require.NoError(t, err)
	assert.Equal(t, game.Black, view.Board.At(game.Point{X: 4, Y: 4}))
	assert.Equal(t, game.White, view.Current)
	select {
	case got := <-updates:
		assert.Equal(t, view.Turn, got.Turn)
	case <-time.After(time.Second):
		t.Fatal("watcher got no update")
	}
}

func TestSubmit_StaleActionLeavesSessionUnchanged(t *testing.T) {
	uc, _, store := newTestUseCase(t)
	ctx := context.Background()
	s, err := uc.Create(ctx, vsAI())
	require.NoError(t, err)

	_, err = uc.Submit(ctx, s.ID, game.Action{
		Type: game.ActionMove, UserID: "alice", Turn: s.Turn - 1,
		Payload: game.Payload{Point: &game.Point{X: 0, Y: 0}},
	})

	assert.ErrorIs(t, err, errs.ErrStaleAction)
	stored, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Turn, stored.Turn)
	assert.Equal(t, game.Empty, stored.Board.At(game.Point{X: 0, Y: 0}))
}

func TestSubmit_UnknownSession(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), "nope", game.Action{Type: game.ActionPass, UserID: "alice"})

	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestSubmit_AcceptedRematchOpensNextSession(t *testing.T) {
	// Given: alice and bob finished a game by resignation and alice asked for a rematch
	uc, _, store := newTestUseCase(t)
	ctx := context.Background()
	s, err := uc.Create(ctx, game.CreateRequest{
		Mode:     game.ModeStandard,
		Settings: game.Settings{BoardSize: 9},
		Black:    game.Participant{UserID: "alice"},
		White:    game.Participant{UserID: "bob"},
	})
	require.NoError(t, err)
	_, err = uc.Submit(ctx, s.ID, game.Action{Type: game.ActionResign, UserID: "alice"})
	require.NoError(t, err)
	_, err = uc.Submit(ctx, s.ID, game.Action{Type: game.ActionRematch, UserID: "alice"})
	require.NoError(t, err)

	// When
	view, err := uc.Submit(ctx, s.ID, game.Action{Type: game.ActionAcceptRematch, UserID: "bob"})

	// Then
	require.NoError(t, err)
	require.NotNil(t, view.Rematch)
	require.NotEmpty(t, view.Rematch.NextSessionID)
	next, err := store.Get(ctx, view.Rematch.NextSessionID)
	require.NoError(t, err)
	assert.Equal(t, "bob", next.Black.UserID)
	assert.Equal(t, "alice", next.White.UserID)
	assert.False(t, next.Status.IsTerminal())
}

func TestSpectate_AddsOnce(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()
	s, err := uc.Create(ctx, vsAI())
	require.NoError(t, err)

	_, err = uc.Spectate(ctx, s.ID, "carol")
	require.NoError(t, err)
	view, err := uc.Spectate(ctx, s.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, view.Spectators)

	view, err = uc.Spectate(ctx, s.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, view.Spectators)
}

func TestHeartbeat_TouchesPresence(t *testing.T) {
	uc, presence, _ := newTestUseCase(t)

	require.NoError(t, uc.Heartbeat(context.Background(), "alice"))

	assert.Equal(t, t0, presence.seen["alice"])
}

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, k.locks)
}
