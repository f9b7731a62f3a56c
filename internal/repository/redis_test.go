package repo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleSession(id string) *game.Session {
	return &game.Session{
		ID:       id,
		Mode:     game.ModeStandard,
		Status:   game.StatusPlaying,
		Settings: game.Settings{BoardSize: 9},
		Black:    game.Participant{UserID: "alice"},
		White:    game.Participant{UserID: "bob"},
		Board:    game.NewBoard(9),
		Captures: map[game.Color]int{game.Black: 1},
	}
}

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	_, client := newTestRedis(t)
	r := NewSessionRepository(client, zap.NewNop().Sugar())
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, sampleSession("s1")))
	got, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Captures[game.Black])
	assert.Equal(t, 9, got.Board.Size())

	ids, err := r.ActiveSessionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, r.Delete(ctx, "s1"))
	_, err = r.Get(ctx, "s1")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	ids, err = r.ActiveSessionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSessionRepository_LoadDiscardsCorruptRecords(t *testing.T) {
	// Given: one good session, one garbage record and one expired id
	mr, client := newTestRedis(t)
	r := NewSessionRepository(client, zap.NewNop().Sugar())
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, sampleSession("good")))
	require.NoError(t, mr.Set(sessionKey("bad"), "{not json"))
	_, err := mr.SAdd(activeSessionsKey, "bad", "gone")
	require.NoError(t, err)

	// When
	sessions, err := r.LoadActiveSessions(ctx)

	// Then
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "good", sessions[0].ID)
	assert.False(t, mr.Exists(sessionKey("bad")))
	members, err := mr.Members(activeSessionsKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, members)
}

func TestSessionRepository_UpdateRetriesOnConcurrentWrite(t *testing.T) {
	_, client := newTestRedis(t)
	r := NewSessionRepository(client, zap.NewNop().Sugar())
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, sampleSession("s1")))

	calls := 0
	got, err := r.Update(ctx, "s1", func(s *game.Session) (*game.Session, error) {
		calls++
		if calls == 1 {
			// another writer commits between our read and our write
			other := sampleSession("s1")
			other.Turn = 10
			raw, _ := json.Marshal(other)
			require.NoError(t, client.Set(ctx, sessionKey("s1"), raw, 0).Err())
		}
		next := s.Clone()
		next.Turn++
		return next, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 11, got.Turn)
	stored, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 11, stored.Turn)
}

func TestSessionRepository_UpdateLeavesSessionOnError(t *testing.T) {
	_, client := newTestRedis(t)
	r := NewSessionRepository(client, zap.NewNop().Sugar())
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, sampleSession("s1")))

	_, err := r.Update(ctx, "s1", func(*game.Session) (*game.Session, error) {
		return nil, errs.ErrIllegalMove
	})
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	_, err = r.Update(ctx, "missing", func(s *game.Session) (*game.Session, error) { return s, nil })
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestPresence_LastSeen(t *testing.T) {
	_, client := newTestRedis(t)
	p := NewRedisPresence(client)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, p.Touch(ctx, "alice", now))
	require.NoError(t, p.Touch(ctx, "bob", now.Add(-time.Hour)))

	seen, err := p.LastSeen(ctx, []string{"alice", "bob", "carol"})
	require.NoError(t, err)
	assert.True(t, seen["alice"].Equal(now))
	assert.Contains(t, seen, "bob")
	assert.NotContains(t, seen, "carol")

	n, err := p.Prune(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLoginSessions(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLoginSessions(client)
	ctx := context.Background()

	require.NoError(t, l.Store(ctx, "cookie", "alice"))
	id, err := l.UserID(ctx, "cookie")
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	require.NoError(t, l.Delete(ctx, "cookie"))
	_, err = l.UserID(ctx, "cookie")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestSummaryPublisher_PublishesEveryRecord(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	sub := client.Subscribe(ctx, "game:summaries")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisSummaryPublisher(client, "game:summaries", zap.NewNop().Sugar())
	records := []game.SummaryRecord{{SessionID: "s1", UserID: "alice"}, {SessionID: "s1", UserID: "bob"}}
	require.NoError(t, pub.Publish(ctx, records))

	for _, want := range []string{"alice", "bob"} {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var got game.SummaryRecord
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, want, got.UserID)
	}
}
