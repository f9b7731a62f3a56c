package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	errs "game_arena/internal/errors"
	"game_arena/internal/httpresponse"
)

const cookieName = "sessionID"

type ctxKey struct{}

// LoginSessions resolves the sessionID cookie issued by the account service.
type LoginSessions interface {
	UserID(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	sessions LoginSessions
	log      *zap.SugaredLogger
}

func NewAuthHandler(sessions LoginSessions, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{sessions: sessions, log: log}
}

// Middleware rejects requests without a live login and puts the user id into the context.
func (a *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			httpresponse.WriteResponseWithStatus(w, http.StatusUnauthorized,
				httpresponse.ErrorResponse{ErrorDescription: "sessionID cookie is missing"})
			return
		}
		userID, err := a.sessions.UserID(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, errs.ErrUnauthorized) {
				a.log.Errorw("failed to resolve login session", "error", err)
			}
			httpresponse.WriteResponseWithStatus(w, http.StatusUnauthorized,
				httpresponse.ErrorResponse{ErrorDescription: errs.ErrUnauthorized.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the user resolved by Middleware, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Logout godoc
// @Summary Drop the caller's login session
// @Tags auth
// @Success 200 {string} string "OK"
// @Router /logout [delete]
func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: http.ErrNoCookie.Error()})
		return
	}
	if err := a.sessions.Delete(r.Context(), cookie.Value); err != nil {
		a.log.Errorw("failed to delete login session", "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "OK")
}
