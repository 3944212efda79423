package httpserver

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/mselser95/venuehub/pkg/types"
)

// Response is the envelope wrapped around every API reply.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path,omitempty"`
}

// StatusFor maps an error category to an HTTP status code.
func StatusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindUnsupportedVenue, types.KindUnsupportedOperation, types.KindInvalidArgument:
		return http.StatusBadRequest
	case types.KindVenueUnavailable:
		return http.StatusServiceUnavailable
	case types.KindAuthenticationRequired:
		return http.StatusUnauthorized
	case types.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
		Path:      r.URL.Path,
	})
}

func writeFailure(w http.ResponseWriter, r *http.Request, status int, message string, kind types.ErrorKind) {
	writeJSON(w, status, Response{
		Success:   false,
		Message:   message,
		Error:     http.StatusText(status),
		Kind:      string(kind),
		Timestamp: now(),
		Path:      r.URL.Path,
	})
}

// writeError reports err under the status of its category. Internal errors
// hide their message from the caller.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := types.KindOf(err)
	status := StatusFor(kind)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		h.logger.Error("api-request-failed", requestFields(r, err)...)
		if kind == types.KindInternal {
			message = "internal server error"
		}
	} else {
		h.logger.Debug("api-request-rejected", requestFields(r, err)...)
	}

	writeFailure(w, r, status, message, kind)
}
