// Package gateway submits rendered prompts to an external generative
// model and returns schema-conformant replies. It distinguishes
// transport failures from schema-conformance failures so callers can
// decide whether retrying the same prompt makes sense.
package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrInferenceUnavailable marks transport failures: network errors,
	// non-2xx responses, model unavailable.
	ErrInferenceUnavailable = errors.New("inference unavailable")

	// ErrInvalidModelOutput marks replies that arrived but do not
	// conform to the requested output schema.
	ErrInvalidModelOutput = errors.New("invalid model output")
)

// UnavailableError wraps a transport failure calling the external model.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("inference unavailable (provider %s): %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrInferenceUnavailable }

// InvalidOutputError wraps a schema-conformance failure in the model's
// reply. Content holds the raw reply for diagnostics.
type InvalidOutputError struct {
	Provider string
	Content  string
	Err      error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid model output (provider %s): %v", e.Provider, e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }

func (e *InvalidOutputError) Is(target error) bool { return target == ErrInvalidModelOutput }
