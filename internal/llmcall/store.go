package llmcall

import (
	"context"
	"fmt"
	"time"

	"github.com/labelwise/labelwise/internal/defra"
)

const collection = "LLMCall"

// Store provides access to LLM call records in DefraDB.
type Store struct {
	client *defra.Client
}

// NewStore creates a new LLMCall store.
func NewStore(client *defra.Client) *Store {
	return &Store{client: client}
}

// QueryFilter specifies filters for listing LLM calls. After and
// Before bound the call timestamp: After is exclusive-lower, Before is
// exclusive-upper.
type QueryFilter struct {
	ScanID    string
	Owner     string
	PromptKey string
	Provider  string
	Model     string
	After     *time.Time
	Before    *time.Time
	Success   *bool
	Limit     int
	Offset    int
}

var callFields = []string{
	"id",
	"timestamp",
	"latency_ms",
	"scan_id",
	"owner",
	"prompt_key",
	"prompt_cid",
	"attempt",
	"provider",
	"model",
	"temperature",
	"input_tokens",
	"output_tokens",
	"response",
	"success",
	"error",
}

// Record persists a call record. Nil calls are ignored so callers can
// pass FromChatResult output unconditionally.
func (s *Store) Record(ctx context.Context, call *Call) error {
	if call == nil {
		return nil
	}
	if _, err := s.client.Create(ctx, collection, call.ToMap()); err != nil {
		return fmt.Errorf("record llm call: %w", err)
	}
	return nil
}

// Get retrieves a single LLM call by ID.
func (s *Store) Get(ctx context.Context, id string) (*Call, error) {
	resp, err := defra.NewQuery(collection).
		Filter("id", id).
		Fields(callFields...).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("graphql error: %s", errMsg)
	}

	calls, err := parseCalls(resp.Data)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return nil, nil
	}
	return &calls[0], nil
}

// List retrieves LLM calls matching the filter, newest first. Every
// filter value travels as a GraphQL variable, never as query text.
func (s *Store) List(ctx context.Context, filter QueryFilter) ([]Call, error) {
	qb := defra.NewQuery(collection).
		Fields(callFields...).
		OrderBy("timestamp", "DESC")

	if filter.ScanID != "" {
		qb.Filter("scan_id", filter.ScanID)
	}
	if filter.Owner != "" {
		qb.Filter("owner", filter.Owner)
	}
	if filter.PromptKey != "" {
		qb.Filter("prompt_key", filter.PromptKey)
	}
	if filter.Provider != "" {
		qb.Filter("provider", filter.Provider)
	}
	if filter.Model != "" {
		qb.Filter("model", filter.Model)
	}
	if filter.Success != nil {
		qb.Filter("success", *filter.Success)
	}
	if filter.After != nil {
		qb.FilterGT("timestamp", filter.After.UTC())
	}
	if filter.Before != nil {
		qb.FilterLT("timestamp", filter.Before.UTC())
	}
	if filter.Limit > 0 {
		qb.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		qb.Offset(filter.Offset)
	}

	resp, err := qb.Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("graphql error: %s", errMsg)
	}

	return parseCalls(resp.Data)
}

// CountByPromptKey returns call counts grouped by prompt key.
func (s *Store) CountByPromptKey(ctx context.Context, owner string) (map[string]int, error) {
	// DefraDB doesn't have GROUP BY, so we fetch all and aggregate client-side
	calls, err := s.List(ctx, QueryFilter{Owner: owner})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, c := range calls {
		counts[c.PromptKey]++
	}
	return counts, nil
}

// parseCalls parses LLMCall entries from GraphQL response data.
func parseCalls(data map[string]any) ([]Call, error) {
	callData, ok := data[collection]
	if !ok {
		return nil, nil
	}

	docs, ok := callData.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected LLMCall type: %T", callData)
	}

	calls := make([]Call, 0, len(docs))
	for _, d := range docs {
		doc, ok := d.(map[string]any)
		if !ok {
			continue
		}

		call := Call{}
		if v, ok := doc["id"].(string); ok {
			call.ID = v
		}
		if v, ok := doc["timestamp"].(string); ok {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				call.Timestamp = t
			}
		}
		if v, ok := doc["latency_ms"].(float64); ok {
			call.LatencyMs = int(v)
		}
		if v, ok := doc["scan_id"].(string); ok {
			call.ScanID = v
		}
		if v, ok := doc["owner"].(string); ok {
			call.Owner = v
		}
		if v, ok := doc["prompt_key"].(string); ok {
			call.PromptKey = v
		}
		if v, ok := doc["prompt_cid"].(string); ok {
			call.PromptCID = v
		}
		if v, ok := doc["attempt"].(float64); ok {
			call.Attempt = int(v)
		}
		if v, ok := doc["provider"].(string); ok {
			call.Provider = v
		}
		if v, ok := doc["model"].(string); ok {
			call.Model = v
		}
		if v, ok := doc["temperature"].(float64); ok {
			call.Temperature = &v
		}
		if v, ok := doc["input_tokens"].(float64); ok {
			call.InputTokens = int(v)
		}
		if v, ok := doc["output_tokens"].(float64); ok {
			call.OutputTokens = int(v)
		}
		if v, ok := doc["response"].(string); ok {
			call.Response = v
		}
		if v, ok := doc["success"].(bool); ok {
			call.Success = v
		}
		if v, ok := doc["error"].(string); ok {
			call.Error = v
		}

		calls = append(calls, call)
	}

	return calls, nil
}
