package game

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"game_arena/internal/delivery/auth"
	"game_arena/internal/domain/game"
	"game_arena/internal/httpresponse"
)

type socketIn struct {
	Kind   string       `json:"kind"` // "action" or "heartbeat"
	Action *game.Action `json:"action,omitempty"`
}

type socketOut struct {
	Kind    string        `json:"kind"` // "session" or "error"
	Session *game.Session `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// HandleSocket streams the caller's view of a session and accepts actions and
// heartbeats. Users who do not play in the session join as spectators.
func (g *GameHandler) HandleSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	sessionID := chi.URLParam(r, "id")

	view, err := g.uc.Get(ctx, sessionID, userID)
	if err == nil && view.ColorOf(userID) == game.Empty {
		view, err = g.uc.Spectate(ctx, sessionID, userID)
	}
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnw("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := g.uc.Watch(sessionID)
	defer cancel()
	g.heartbeat(ctx, userID)

	replies := make(chan socketOut, 4)
	done := make(chan struct{})
	go g.readLoop(ctx, conn, sessionID, userID, replies, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := write(conn, socketOut{Kind: "session", Session: view}); err != nil {
		return
	}
	for {
		var err error
		select {
		case <-done:
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			err = write(conn, socketOut{Kind: "session", Session: s.ViewFor(userID)})
		case msg := <-replies:
			err = write(conn, msg)
		case <-ping.C:
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		}
		if err != nil {
			g.log.Debugw("websocket write failed", "session", sessionID, "user", userID, "error", err)
			return
		}
	}
}

func write(conn *websocket.Conn, msg socketOut) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readLoop owns all reads of conn. Pongs count as heartbeats.
func (g *GameHandler) readLoop(ctx context.Context, conn *websocket.Conn, sessionID, userID string, replies chan<- socketOut, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		g.heartbeat(ctx, userID)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in socketIn
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Infow("websocket closed", "session", sessionID, "user", userID, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		switch in.Kind {
		case "heartbeat":
			g.heartbeat(ctx, userID)
		case "action":
			if in.Action == nil {
				reply(ctx, replies, socketOut{Kind: "error", Error: "action is missing"})
				continue
			}
			a := *in.Action
			a.UserID = userID
			// accepted actions reach every socket through the watch stream
			if _, err := g.uc.Submit(ctx, sessionID, a); err != nil {
				reply(ctx, replies, socketOut{Kind: "error", Error: err.Error()})
			}
		default:
			reply(ctx, replies, socketOut{Kind: "error", Error: "unknown message kind " + in.Kind})
		}
	}
}

func (g *GameHandler) heartbeat(ctx context.Context, userID string) {
	if err := g.uc.Heartbeat(ctx, userID); err != nil {
		g.log.Warnw("failed to record heartbeat", "user", userID, "error", err)
	}
}

func reply(ctx context.Context, replies chan<- socketOut, msg socketOut) {
	select {
	case replies <- msg:
	case <-ctx.Done():
	}
}
