package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/logging"
	"github.com/ppetrovna/povarenok/internal/middleware"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// respondJSON writes data with the given status. Encoding failures are
// logged; by then the status line is already on the wire, so nothing else
// can be done.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError maps a catalogue error to its HTTP status and writes the
// error envelope. Unrecognized errors become 500s with a generic message so
// internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	message := "internal server error"

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
		message = err.Error()
	case errors.Is(err, catalog.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = "invalid_argument"
		message = err.Error()
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	respondJSON(w, r, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	}})
}
