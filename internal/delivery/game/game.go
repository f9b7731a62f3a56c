package game

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"game_arena/internal/delivery/auth"
	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/httpresponse"
	"game_arena/internal/utils"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

type GameService interface {
	Create(ctx context.Context, req game.CreateRequest) (*game.Session, error)
	Submit(ctx context.Context, sessionID string, a game.Action) (*game.Session, error)
	Get(ctx context.Context, sessionID, userID string) (*game.Session, error)
	Spectate(ctx context.Context, sessionID, userID string) (*game.Session, error)
	Heartbeat(ctx context.Context, userID string) error
	Watch(sessionID string) (<-chan *game.Session, func())
	Archived(ctx context.Context, sessionID string) (*game.ArchivedGame, error)
	History(ctx context.Context, userID string, page int) ([]game.ArchivedGame, error)
}

type GameHandler struct {
	uc  GameService
	log *zap.SugaredLogger
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(uc GameService, log *zap.SugaredLogger) *GameHandler {
	return &GameHandler{uc: uc, log: log}
}

// Routes mounts the game endpoints; all of them expect auth.Middleware in front.
func (g *GameHandler) Routes(r chi.Router) {
	r.Post("/games", g.HandleCreate)
	r.Get("/games/{id}", g.HandleGet)
	r.Post("/games/{id}/actions", g.HandleAction)
	r.Post("/games/{id}/spectate", g.HandleSpectate)
	r.Get("/games/{id}/ws", g.HandleSocket)
	r.Post("/heartbeat", g.HandleHeartbeat)
	r.Get("/archive", g.HandleHistory)
	r.Get("/archive/{id}", g.HandleArchived)
}

// HandleCreate godoc
// @Summary Start a session; the caller must be one of its human participants
// @Tags game
// @Accept json
// @Produce json
// @Param request body game.CreateRequest true "Mode, settings and participants"
// @Success 200 {object} game.CreateResponse
// @Router /games [post]
func (g *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req game.CreateRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	if !isHuman(req.Black, userID) && !isHuman(req.White, userID) {
		httpresponse.WriteError(w, errs.ErrNotParticipant)
		return
	}

	s, err := g.uc.Create(r.Context(), req)
	if err != nil {
		g.log.Warnw("failed to create session", "user", userID, "error", err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.CreateResponse{SessionID: s.ID})
}

func isHuman(p game.Participant, userID string) bool {
	return !p.IsAI && p.UserID == userID
}

func (g *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := g.uc.Get(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

// HandleAction godoc
// @Summary Submit one action; the acting user is always the caller
// @Tags game
// @Accept json
// @Produce json
// @Param action body game.Action true "Action"
// @Success 200 {object} game.Session
// @Failure 400 {object} httpresponse.ErrorResponse
// @Failure 409 {object} httpresponse.ErrorResponse
// @Router /games/{id}/actions [post]
func (g *GameHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var a game.Action
	if err := utils.DecodeJSONRequest(r, &a); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	a.UserID = auth.UserID(r.Context())

	s, err := g.uc.Submit(r.Context(), chi.URLParam(r, "id"), a)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

func (g *GameHandler) HandleSpectate(w http.ResponseWriter, r *http.Request) {
	s, err := g.uc.Spectate(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

func (g *GameHandler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if err := g.uc.Heartbeat(r.Context(), auth.UserID(r.Context())); err != nil {
		g.log.Errorw("failed to record heartbeat", "error", err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "OK")
}

func (g *GameHandler) HandleArchived(w http.ResponseWriter, r *http.Request) {
	doc, err := g.uc.Archived(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, doc)
}

// HandleHistory lists the caller's finished games, newest first; ?page= starts at 1.
func (g *GameHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "page must be a positive number"})
			return
		}
		page = n
	}
	games, err := g.uc.History(r.Context(), auth.UserID(r.Context()), page)
	if err != nil {
		g.log.Errorw("failed to list archive", "error", err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, games)
}
