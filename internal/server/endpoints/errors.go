package endpoints

import (
	"errors"
	"net/http"

	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/extract"
	"github.com/labelwise/labelwise/internal/gateway"
	"github.com/labelwise/labelwise/internal/types"
)

// statusForError maps service-layer errors to HTTP status codes.
// Validation problems are the caller's fault; inference problems are
// reported as a bad gateway so clients can tell them apart from
// server bugs.
func statusForError(err error) int {
	var vErr *types.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrBadImage):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNoIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, gateway.ErrInferenceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, gateway.ErrInvalidModelOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the status statusForError picks.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}
