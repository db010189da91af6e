package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labelwise/labelwise/internal/providers"
)

// Result is a validated gateway reply: the parsed, schema-conformant
// JSON plus the transport-level call details for recording.
type Result struct {
	Parsed json.RawMessage
	Call   *providers.ChatResult
}

// Invoke submits a chat request with a structured output schema to the
// given client and validates the reply. Single-attempt semantics: the
// transport client may retry network-level failures internally, but
// Invoke never re-sends a prompt whose reply failed schema validation;
// that decision belongs to the caller.
//
// Error taxonomy:
//   - context cancellation is returned as-is
//   - transport failure: *UnavailableError (errors.Is ErrInferenceUnavailable)
//   - non-conformant reply: *InvalidOutputError (errors.Is ErrInvalidModelOutput);
//     the returned Result still carries the Call so it can be recorded
func Invoke(ctx context.Context, client providers.LLMClient, req *providers.ChatRequest) (*Result, error) {
	if req.ResponseFormat == nil || len(req.ResponseFormat.JSONSchema) == 0 {
		return nil, fmt.Errorf("chat request has no output schema")
	}

	call, err := client.Chat(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &UnavailableError{Provider: client.Name(), Err: err}
	}

	parsed := call.ParsedJSON
	if len(parsed) == 0 {
		parsed, err = parseStructuredJSON(call.Content)
		if err != nil {
			return &Result{Call: call}, &InvalidOutputError{Provider: client.Name(), Content: call.Content, Err: err}
		}
	}

	if err := validateStructuredJSON(req.ResponseFormat.JSONSchema, parsed); err != nil {
		return &Result{Call: call}, &InvalidOutputError{Provider: client.Name(), Content: call.Content, Err: err}
	}

	return &Result{Parsed: parsed, Call: call}, nil
}
