package llmcall

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labelwise/labelwise/internal/defra"
)

func mockDefra(t *testing.T, handler func(body string) string) (*defra.Client, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(handler(string(body))))
	}))
	return defra.NewClient(server.URL), server.Close
}

func sampleCallJSON(id, owner, promptKey string) string {
	return `{"id": "` + id + `", "timestamp": "2026-08-29T10:00:00Z", "latency_ms": 840,
		"scan_id": "scan-1", "owner": "` + owner + `", "prompt_key": "` + promptKey + `",
		"prompt_cid": "abc123", "attempt": 1, "provider": "openrouter",
		"model": "gpt-4o-mini", "input_tokens": 512, "output_tokens": 96,
		"response": "{}", "success": true}`
}

func TestStore_Get(t *testing.T) {
	var gotReq defra.GQLRequest
	client, closeFn := mockDefra(t, func(body string) string {
		json.Unmarshal([]byte(body), &gotReq)
		return `{"data": {"LLMCall": [` + sampleCallJSON("call-1", "user-1", "stages.assess.user") + `]}}`
	})
	defer closeFn()

	store := NewStore(client)
	call, err := store.Get(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if call == nil || call.ID != "call-1" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.ScanID != "scan-1" || call.PromptCID != "abc123" {
		t.Errorf("traceability fields not parsed: %+v", call)
	}
	if call.LatencyMs != 840 || call.InputTokens != 512 {
		t.Errorf("metrics not parsed: %+v", call)
	}

	// The ID must be sent as a query variable
	found := false
	for _, v := range gotReq.Variables {
		if v == "call-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("call id not passed as variable, got %v", gotReq.Variables)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	client, closeFn := mockDefra(t, func(string) string {
		return `{"data": {"LLMCall": []}}`
	})
	defer closeFn()

	store := NewStore(client)
	call, err := store.Get(context.Background(), "call-404")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if call != nil {
		t.Errorf("expected nil call, got %+v", call)
	}
}

func TestStore_List_FilterValuesAreVariables(t *testing.T) {
	// A filter value with a control character must reach DefraDB as a
	// JSON-encoded variable. Interpolating it into the query text would
	// produce an escape sequence GraphQL cannot parse.
	hostile := "x\x01y"

	var gotReq defra.GQLRequest
	client, closeFn := mockDefra(t, func(body string) string {
		json.Unmarshal([]byte(body), &gotReq)
		return `{"data": {"LLMCall": []}}`
	})
	defer closeFn()

	store := NewStore(client)
	_, err := store.List(context.Background(), QueryFilter{
		Owner: "user-1",
		Model: hostile,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if strings.ContainsAny(gotReq.Query, "\x01") {
		t.Errorf("filter value interpolated into query text: %q", gotReq.Query)
	}
	vals := make(map[any]bool)
	for _, v := range gotReq.Variables {
		vals[v] = true
	}
	if !vals["user-1"] || !vals[hostile] {
		t.Errorf("expected owner and model as variables, got %v", gotReq.Variables)
	}
}

func TestStore_List_TimeRange(t *testing.T) {
	after := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	var gotReq defra.GQLRequest
	client, closeFn := mockDefra(t, func(body string) string {
		json.Unmarshal([]byte(body), &gotReq)
		return `{"data": {"LLMCall": []}}`
	})
	defer closeFn()

	store := NewStore(client)
	_, err := store.List(context.Background(), QueryFilter{
		Owner:  "user-1",
		After:  &after,
		Before: &before,
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if !strings.Contains(gotReq.Query, "_gt") || !strings.Contains(gotReq.Query, "_lt") {
		t.Errorf("query missing range operators: %s", gotReq.Query)
	}
	if !strings.Contains(gotReq.Query, "DateTime") {
		t.Errorf("timestamp bounds not typed as DateTime: %s", gotReq.Query)
	}
	// Bounds travel as variables; time.Time marshals to RFC3339
	found := 0
	for _, v := range gotReq.Variables {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "2026-08-") {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected both bounds as variables, got %v", gotReq.Variables)
	}
	if !strings.Contains(gotReq.Query, "limit: 10") {
		t.Errorf("limit not applied: %s", gotReq.Query)
	}
}

func TestStore_List_OrderedNewestFirst(t *testing.T) {
	var gotReq defra.GQLRequest
	client, closeFn := mockDefra(t, func(body string) string {
		json.Unmarshal([]byte(body), &gotReq)
		return `{"data": {"LLMCall": []}}`
	})
	defer closeFn()

	store := NewStore(client)
	if _, err := store.List(context.Background(), QueryFilter{Owner: "user-1"}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !strings.Contains(gotReq.Query, "order: {timestamp: DESC}") {
		t.Errorf("results not ordered newest first: %s", gotReq.Query)
	}
}

func TestStore_CountByPromptKey(t *testing.T) {
	client, closeFn := mockDefra(t, func(string) string {
		return `{"data": {"LLMCall": [` +
			sampleCallJSON("call-1", "user-1", "stages.assess.user") + `,` +
			sampleCallJSON("call-2", "user-1", "stages.assess.user") + `,` +
			sampleCallJSON("call-3", "user-1", "stages.extract.user") + `]}}`
	})
	defer closeFn()

	store := NewStore(client)
	counts, err := store.CountByPromptKey(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountByPromptKey() error = %v", err)
	}
	if counts["stages.assess.user"] != 2 || counts["stages.extract.user"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestStore_Record_NilCall(t *testing.T) {
	requests := 0
	client, closeFn := mockDefra(t, func(string) string {
		requests++
		return `{"data": {}}`
	})
	defer closeFn()

	store := NewStore(client)
	if err := store.Record(context.Background(), nil); err != nil {
		t.Fatalf("Record(nil) error = %v", err)
	}
	if requests != 0 {
		t.Errorf("nil call must not reach the database, got %d requests", requests)
	}
}
