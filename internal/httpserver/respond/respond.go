// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/launcher"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	redisstore "github.com/MrSnakeDoc/restore-sites/internal/store/redis"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Status maps an error returned by the service layer to an HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, redisstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, redisstore.ErrDuplicateProfile):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnresolvedConfig),
		errors.Is(err, launcher.ErrUnsupported),
		errors.Is(err, launcher.ErrNoCustomPath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidShape),
		errors.Is(err, domain.ErrInvalidSite),
		errors.Is(err, domain.ErrInvalidProfileName):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with its mapped status. Server-side failures are logged
// and not echoed back.
func Fail(w http.ResponseWriter, log logger.Logger, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logger.Error(err), logger.Int("status", status))
		Error(w, status, http.StatusText(status))
		return
	}
	Error(w, status, err.Error())
}
