package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch service.Kind(err) {
	case service.ErrValidation,
		service.ErrConflict,
		service.ErrExpired,
		service.ErrAlreadyUsed,
		service.ErrInvalidState:
		return http.StatusBadRequest
	case service.ErrUnauthorized:
		return http.StatusUnauthorized
	case service.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a failed envelope. Errors without a kind, and
// transport or configuration failures, are logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		msg := "an internal error occurred"
		if errors.Is(err, service.ErrTransport) {
			msg = service.ErrMailDelivery.Error()
		}
		httpx.WriteFailure(w, code, msg)
		return
	}
	httpx.WriteFailure(w, code, err.Error())
}

func writeBadJSON(w http.ResponseWriter) {
	httpx.WriteFailure(w, http.StatusBadRequest, "request body must be valid JSON")
}

// writeInvalid reports a failed request validation. The field errors are
// returned in data.
func writeInvalid(w http.ResponseWriter, err error) {
	httpx.WriteJSON(w, http.StatusBadRequest, httpx.Envelope{
		Success: false,
		Message: "validation failed: " + err.Error(),
		Data:    err,
	})
}

// validatable is implemented by every membersdk request.
type validatable interface {
	Validate() error
}

// decode reads and validates a JSON body, writing the failure response
// itself. It reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, v validatable) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		writeBadJSON(w)
		return false
	}
	if err := v.Validate(); err != nil {
		writeInvalid(w, err)
		return false
	}
	return true
}
