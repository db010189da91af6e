// Package llmcall provides LLM call recording and querying for traceability.
// Every LLM API call is recorded with its prompt key, response, and metrics.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/labelwise/labelwise/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	ScanID string `json:"scan_id,omitempty"`
	Owner  string `json:"owner,omitempty"`

	// Prompt traceability
	PromptKey string `json:"prompt_key"`
	PromptCID string `json:"prompt_cid,omitempty"` // Content-addressed ID linking to the exact prompt version used

	// Attempt number within a single operation (1-based). A schema-failure
	// retry records a second call with Attempt=2.
	Attempt int `json:"attempt"`

	// Model info
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Response
	Response string `json:"response"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	// Context references (all optional)
	ScanID string
	Owner  string

	// Prompt identification (required for traceability)
	PromptKey string
	PromptCID string // Content-addressed ID linking to exact prompt version

	// Attempt number within the operation (defaults to 1)
	Attempt int

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	attempt := opts.Attempt
	if attempt == 0 {
		attempt = 1
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		ScanID:       opts.ScanID,
		Owner:        opts.Owner,
		PromptKey:    opts.PromptKey,
		PromptCID:    opts.PromptCID,
		Attempt:      attempt,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}

	if opts.Temperature != nil {
		call.Temperature = opts.Temperature
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}

	return call
}

// ToMap converts the Call to a map for DefraDB insertion.
func (c *Call) ToMap() map[string]any {
	m := map[string]any{
		"id":            c.ID,
		"timestamp":     c.Timestamp,
		"latency_ms":    c.LatencyMs,
		"prompt_key":    c.PromptKey,
		"attempt":       c.Attempt,
		"provider":      c.Provider,
		"model":         c.Model,
		"input_tokens":  c.InputTokens,
		"output_tokens": c.OutputTokens,
		"response":      c.Response,
		"success":       c.Success,
	}

	if c.ScanID != "" {
		m["scan_id"] = c.ScanID
	}
	if c.Owner != "" {
		m["owner"] = c.Owner
	}
	if c.PromptCID != "" {
		m["prompt_cid"] = c.PromptCID
	}
	if c.Temperature != nil {
		m["temperature"] = *c.Temperature
	}
	if c.Error != "" {
		m["error"] = c.Error
	}

	return m
}
