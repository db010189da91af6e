package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage

	// State
	requestCount atomic.Int64
	lastRequest  atomic.Pointer[ChatRequest]
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)
	c.lastRequest.Store(req)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.ShouldFail {
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = "mock client configured to fail"
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = fmt.Sprintf("mock client failed after %d requests", c.FailAfter)
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	// Simulate latency
	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		result.Success = false
		result.ErrorType = "context_cancelled"
		result.ErrorMessage = ctx.Err().Error()
		result.TotalTime = time.Since(start)
		return result, ctx.Err()
	}

	result.Success = true
	result.Content = c.ResponseText
	result.ExecutionTime = time.Since(start)
	result.TotalTime = result.ExecutionTime

	// Rough token estimate
	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(c.ResponseText) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	if req.ResponseFormat != nil && len(c.ResponseJSON) > 0 {
		result.ParsedJSON = c.ResponseJSON
		result.Content = string(c.ResponseJSON)
	}

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// LastRequest returns the most recent request, or nil.
func (c *MockClient) LastRequest() *ChatRequest {
	return c.lastRequest.Load()
}

// Reset resets the request counter.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
