package katago

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"game_arena/internal/delivery/auth"
	"game_arena/internal/domain"
	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/httpresponse"
)

const (
	defaultVisits = 100
	maxVisits     = 1000
)

type SessionReader interface {
	Get(ctx context.Context, sessionID, userID string) (*game.Session, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, s *game.Session, opts domain.AnalyzeOptions) (domain.AnalysisResult, error)
}

type KatagoHandler struct {
	sessions SessionReader
	analyzer Analyzer
	timeout  time.Duration
	log      *zap.SugaredLogger
}

func NewKatagoHandler(sessions SessionReader, analyzer Analyzer, timeout time.Duration, log *zap.SugaredLogger) *KatagoHandler {
	return &KatagoHandler{sessions: sessions, analyzer: analyzer, timeout: timeout, log: log}
}

// HandleAnalyze godoc
// @Summary Ownership and suggested moves for a Go-family session
// @Description Players get analysis only once their session is over; spectators any time, on their own view.
// @Tags analysis
// @Produce json
// @Param visits query int false "Search visits, 1..1000"
// @Success 200 {object} domain.AnalysisResult
// @Failure 503 {object} httpresponse.ErrorResponse
// @Router /games/{id}/analysis [get]
func (k *KatagoHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	visits := defaultVisits
	if raw := r.URL.Query().Get("visits"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxVisits {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "visits must be between 1 and 1000"})
			return
		}
		visits = n
	}

	s, err := k.sessions.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	if !s.Mode.IsGoFamily() {
		httpresponse.WriteError(w, errs.ErrWrongPhase)
		return
	}
	if s.ColorOf(userID) != game.Empty && !s.Status.IsTerminal() {
		httpresponse.WriteError(w, errs.ErrWrongPhase)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), k.timeout)
	defer cancel()
	res, err := k.analyzer.Analyze(ctx, s, domain.AnalyzeOptions{MaxVisits: visits})
	if err != nil {
		k.log.Warnw("analysis failed", "session", s.ID, "error", err)
		if errors.Is(err, errs.ErrAnalysisUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			httpresponse.WriteResponseWithStatus(w, http.StatusServiceUnavailable, httpresponse.ErrorResponse{ErrorDescription: errs.ErrAnalysisUnavailable.Error()})
			return
		}
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, res)
}
