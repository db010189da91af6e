package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/labelwise/labelwise/internal/providers"
)

func testRequest() *providers.ChatRequest {
	return &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: "You are a food safety assistant."},
			{Role: "user", Content: "Assess this label."},
		},
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: testSchema(),
		},
	}
}

func TestInvoke(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"assessment": "Not Safe"}`)

	result, err := Invoke(context.Background(), mock, testRequest())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if string(result.Parsed) != `{"assessment": "Not Safe"}` {
		t.Errorf("parsed = %s", result.Parsed)
	}
	if result.Call == nil || !result.Call.Success {
		t.Error("call details missing or not successful")
	}
}

func TestInvoke_RecoversFencedContent(t *testing.T) {
	// Providers without native structured output return fenced text
	mock := providers.NewMockClient()
	mock.ResponseText = "```json\n{\"assessment\": \"Safe to Eat\"}\n```"

	result, err := Invoke(context.Background(), mock, testRequest())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if string(result.Parsed) != `{"assessment":"Safe to Eat"}` {
		t.Errorf("parsed = %s", result.Parsed)
	}
}

func TestInvoke_NoSchema(t *testing.T) {
	mock := providers.NewMockClient()
	req := testRequest()
	req.ResponseFormat = nil

	if _, err := Invoke(context.Background(), mock, req); err == nil {
		t.Error("expected error for request without output schema")
	}
}

func TestInvoke_TransportFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	result, err := Invoke(context.Background(), mock, testRequest())
	if !errors.Is(err, ErrInferenceUnavailable) {
		t.Fatalf("error = %v, want ErrInferenceUnavailable", err)
	}
	if errors.Is(err, ErrInvalidModelOutput) {
		t.Error("transport failure must not look like invalid output")
	}
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}

	var uerr *UnavailableError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %T, want *UnavailableError", err)
	}
	if uerr.Provider != providers.MockClientName {
		t.Errorf("provider = %q, want %q", uerr.Provider, providers.MockClientName)
	}
}

func TestInvoke_InvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I think this product is safe."},
		{"schema violation", `{"assessment": "Probably Fine"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ResponseText = tt.response

			result, err := Invoke(context.Background(), mock, testRequest())
			if !errors.Is(err, ErrInvalidModelOutput) {
				t.Fatalf("error = %v, want ErrInvalidModelOutput", err)
			}
			if errors.Is(err, ErrInferenceUnavailable) {
				t.Error("invalid output must not look like transport failure")
			}
			// The call still comes back so it can be recorded
			if result == nil || result.Call == nil {
				t.Fatal("result must carry the call for recording")
			}

			var ierr *InvalidOutputError
			if !errors.As(err, &ierr) {
				t.Fatalf("error = %T, want *InvalidOutputError", err)
			}
			if ierr.Content != tt.response {
				t.Errorf("error content = %q, want the raw reply", ierr.Content)
			}
		})
	}
}

func TestInvoke_ContextCancelled(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"assessment": "Not Safe"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Invoke(ctx, mock, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrInferenceUnavailable) {
		t.Error("cancellation must not be reported as provider failure")
	}
}
