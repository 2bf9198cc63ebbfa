package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"inferd/internal/engine"
	"inferd/internal/manager"
	"inferd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// errorStatus maps well-known engine and manager errors to HTTP status
// codes.
func errorStatus(err error) int {
	var he HTTPError
	switch {
	case manager.IsModelNotFound(err):
		return http.StatusNotFound
	case engine.IsAlreadyGenerating(err), manager.IsWaitTimeout(err):
		return http.StatusTooManyRequests
	case engine.IsConfig(err):
		return http.StatusBadRequest
	case engine.IsLifecycle(err):
		return http.StatusConflict
	case engine.IsLoad(err), manager.IsClosed(err):
		return http.StatusServiceUnavailable
	case engine.IsResourceLeak(err):
		return http.StatusInternalServerError
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status, records backpressure rejections, and
// writes the JSON error payload. Returns the status for logging.
func writeError(w http.ResponseWriter, err error) int {
	status := errorStatus(err)
	if status == http.StatusTooManyRequests {
		reason := "already_generating"
		if manager.IsWaitTimeout(err) {
			reason = "load_wait_timeout"
		}
		IncrementBackpressure(reason)
	}
	writeJSONError(w, status, err.Error())
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
