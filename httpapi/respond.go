package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"creditflow/auth"
	"creditflow/dispute"
	"creditflow/selection"
)

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is a persistence or programming failure and stays generic.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cooldown *dispute.CooldownError
	if errors.As(err, &cooldown) {
		s.writeJSON(w, http.StatusConflict, map[string]any{
			"error":     cooldown.Error(),
			"days_left": cooldown.DaysLeft,
			"next_at":   cooldown.NextAt,
		})
		return
	}

	switch {
	case errors.Is(err, dispute.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials):
		s.writeJSON(w, http.StatusUnauthorized, errorBody(err.Error()))

	case errors.Is(err, dispute.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, selection.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))

	case errors.Is(err, dispute.ErrBadTransition):
		s.writeJSON(w, http.StatusConflict, errorBody(err.Error()))

	case errors.Is(err, auth.ErrDuplicateEmail):
		s.writeJSON(w, http.StatusConflict, errorBody(err.Error()))

	case errors.Is(err, dispute.ErrNoItems),
		errors.Is(err, dispute.ErrTooManyItems),
		errors.Is(err, dispute.ErrIncompleteItem),
		errors.Is(err, dispute.ErrUnknownDelivery),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, selection.ErrLimitReached),
		errors.Is(err, selection.ErrDuplicate),
		errors.Is(err, selection.ErrIncomplete),
		errors.Is(err, selection.ErrEmptyID),
		errors.Is(err, errBadBody):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))

	case errors.Is(err, errNoMirror):
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))

	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.writeJSON(w, http.StatusInternalServerError, errorBody("something went wrong, please try again"))
	}
}
