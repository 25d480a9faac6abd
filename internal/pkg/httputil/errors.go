package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/safety-dashboard/internal/pkg/ctxlog"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError writes the response of the first mapping matching err.
// Unmapped errors are logged and answered with 500.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	logger := ctxlog.FromContext(ctx)

	for _, m := range mappings {
		if !errors.Is(err, m.Error) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = err.Error()
		}
		logger.Debug("request failed", "status", m.Status, "error", err)
		Error(w, m.Status, msg)
		return
	}

	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
