package errors

import "errors"

// Rejected actions. The session is left unchanged when any of these is returned.
var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrStaleAction      = errors.New("stale action")
	ErrSessionTerminal  = errors.New("session is over")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrUnknownAction    = errors.New("unknown action")
	ErrNotParticipant   = errors.New("user is not a participant")
	ErrItemUnavailable  = errors.New("item unavailable")
	ErrInvalidPayload   = errors.New("invalid action payload")
	ErrAlreadySubmitted = errors.New("already submitted for this phase")
	ErrInvalidSettings  = errors.New("invalid session settings")
	ErrSessionPaused    = errors.New("session paused while a player is disconnected")
	ErrTimeExpired      = errors.New("turn time expired")
)

var (
	ErrSessionNotFound     = errors.New("session was not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrCorruptSession      = errors.New("corrupt session record")
	ErrConflict            = errors.New("concurrent session update")
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternal            = errors.New("internal error")
)

// IsRejected reports whether err is a player-facing rejection rather than a fault.
func IsRejected(err error) bool {
	for _, target := range []error{
		ErrNotYourTurn, ErrIllegalMove, ErrStaleAction, ErrSessionTerminal, ErrWrongPhase,
		ErrUnknownAction, ErrNotParticipant, ErrItemUnavailable, ErrInvalidPayload,
		ErrAlreadySubmitted, ErrInvalidSettings, ErrSessionPaused, ErrTimeExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
