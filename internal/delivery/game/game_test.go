package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"game_arena/internal/delivery/auth"
	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

type fakeService struct {
	mu        sync.Mutex
	session   *game.Session
	submitted []game.Action
	submitErr error
	beats     int
	beatErr   error
	updates   chan *game.Session
}

func (f *fakeService) Create(_ context.Context, req game.CreateRequest) (*game.Session, error) {
	return &game.Session{ID: "new", Black: req.Black, White: req.White}, nil
}

func (f *fakeService) Submit(_ context.Context, _ string, a game.Action) (*game.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, a)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.session, nil
}

func (f *fakeService) Get(_ context.Context, id, _ string) (*game.Session, error) {
	if f.session == nil || id != f.session.ID {
		return nil, errs.ErrSessionNotFound
	}
	return f.session, nil
}

func (f *fakeService) Spectate(ctx context.Context, id, userID string) (*game.Session, error) {
	return f.Get(ctx, id, userID)
}

func (f *fakeService) Heartbeat(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beats++
	return f.beatErr
}

func (f *fakeService) Watch(string) (<-chan *game.Session, func()) {
	return f.updates, func() {}
}

func (f *fakeService) Archived(context.Context, string) (*game.ArchivedGame, error) {
	return nil, errs.ErrGameNotFound
}

func (f *fakeService) History(context.Context, string, int) ([]game.ArchivedGame, error) {
	return []game.ArchivedGame{}, nil
}

// asUser stands in for auth.Middleware.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func newRouter(svc *fakeService, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser(userID))
	NewGameHandler(svc, zap.NewNop().Sugar()).Routes(r)
	return r
}

func liveSession() *game.Session {
	return &game.Session{
		ID:     "s1",
		Status: game.StatusPlaying,
		Black:  game.Participant{UserID: "alice"},
		White:  game.Participant{UserID: "bob"},
		Board:  game.NewBoard(9),
	}
}

func envelopeStatus(t *testing.T, body string) int {
	t.Helper()
	var env struct{ Status int }
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env.Status
}

func TestHandleCreate_CallerMustPlay(t *testing.T) {
	router := newRouter(&fakeService{}, "mallory")
	body := `{"mode":"standard","settings":{"board_size":9},"black":{"user_id":"alice"},"white":{"user_id":"bob"}}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusForbidden, envelopeStatus(t, rec.Body.String()))
}

func TestHandleCreate_ReturnsSessionID(t *testing.T) {
	router := newRouter(&fakeService{}, "alice")
	body := `{"mode":"standard","settings":{"board_size":9},"black":{"user_id":"alice"},"white":{"user_id":"bot","is_ai":true,"ai_difficulty":3}}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"new"`)
}

func TestHandleAction_ActsAsCaller(t *testing.T) {
	// Given: a body that claims to act for someone else
	svc := &fakeService{session: liveSession()}
	router := newRouter(svc, "alice")
	body := `{"type":"move","user_id":"bob","turn":3,"payload":{"point":{"x":2,"y":3}}}`

	// When
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games/s1/actions", strings.NewReader(body)))

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "alice", svc.submitted[0].UserID)
	assert.Equal(t, 3, svc.submitted[0].Turn)
}

func TestHandleAction_MapsRejections(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{errs.ErrIllegalMove, http.StatusBadRequest},
		{errs.ErrStaleAction, http.StatusConflict},
		{errs.ErrNotParticipant, http.StatusForbidden},
		{errs.ErrSessionNotFound, http.StatusNotFound},
		{errs.ErrConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &fakeService{session: liveSession(), submitErr: tc.err}
			rec := httptest.NewRecorder()
			newRouter(svc, "alice").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games/s1/actions", strings.NewReader(`{"type":"pass"}`)))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHandleAction_RejectsUnknownFields(t *testing.T) {
	svc := &fakeService{session: liveSession()}
	rec := httptest.NewRecorder()

	newRouter(svc, "alice").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games/s1/actions", strings.NewReader(`{"type":"pass","cheat":true}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.submitted)
}

func TestHandleGet_UnknownSession(t *testing.T) {
	rec := httptest.NewRecorder()

	newRouter(&fakeService{}, "alice").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSocket_StreamsViewsAndTakesActions(t *testing.T) {
	// Given: a socket opened by alice
	svc := &fakeService{session: liveSession(), updates: make(chan *game.Session, 1), submitErr: errs.ErrNotYourTurn}
	srv := httptest.NewServer(newRouter(svc, "alice"))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/games/s1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first socketOut
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "session", first.Kind)
	assert.Equal(t, "s1", first.Session.ID)

	// When: alice moves out of turn
	require.NoError(t, conn.WriteJSON(socketIn{Kind: "action", Action: &game.Action{Type: game.ActionPass, UserID: "bob"}}))

	// Then: the rejection comes back on the socket
	var rejected socketOut
	require.NoError(t, conn.ReadJSON(&rejected))
	assert.Equal(t, "error", rejected.Kind)
	assert.Equal(t, errs.ErrNotYourTurn.Error(), rejected.Error)

	// When: the session changes elsewhere
	next := liveSession()
	next.Turn = 7
	svc.updates <- next

	// Then
	var pushed socketOut
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, 7, pushed.Session.Turn)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "alice", svc.submitted[0].UserID)
	assert.GreaterOrEqual(t, svc.beats, 1)
}

func TestHeartbeat_FailureIsLogged(t *testing.T) {
	// Given: a presence store that is down
	core, logs := observer.New(zapcore.WarnLevel)
	svc := &fakeService{beatErr: errs.ErrInternal}
	h := NewGameHandler(svc, zap.New(core).Sugar())

	// When: a pong or heartbeat message arrives
	h.heartbeat(context.Background(), "alice")

	// Then
	assert.Equal(t, 1, svc.beats)
	require.Equal(t, 1, logs.FilterMessage("failed to record heartbeat").Len())
	assert.Equal(t, "alice", logs.All()[0].ContextMap()["user"])
}
