package scans

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/types"
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

func sampleLabel() types.LabelExtraction {
	sugar := 24.0
	return types.LabelExtraction{
		ProductName: "Choco Crunch Cereal",
		Ingredients: "oats, sugar, cocoa",
		SugarG:      &sugar,
	}
}

func sampleResult() types.AssessmentResult {
	return types.AssessmentResult{
		ProductSummary:      "A chocolate cereal.",
		NutritionalAnalysis: "High sugar.",
		Assessment:          types.VerdictNotSafe,
		Explanation:         "Too much sugar for a diabetic.",
	}
}

func TestStore_Create(t *testing.T) {
	var gotBody string
	client, closeFn := mockDefra(t, func(body string) string {
		gotBody = body
		return `{"data": {"create_ScanRecord": [{"_docID": "bae-1"}]}}`
	})
	defer closeFn()

	store := NewStore(client)
	rec, err := store.Create(context.Background(), "user-1", "", sampleLabel(), sampleResult())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if rec.ID == "" {
		t.Error("record has no generated ID")
	}
	if rec.Owner != "user-1" {
		t.Errorf("owner = %q, want user-1", rec.Owner)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("record has no timestamp")
	}

	for _, want := range []string{"user-1", "Choco Crunch Cereal", "Not Safe"} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("create mutation missing %q", want)
		}
	}
}

func TestStore_Create_NoOwner(t *testing.T) {
	client, closeFn := mockDefra(t, func(string) string { return `{"data": {}}` })
	defer closeFn()

	store := NewStore(client)
	if _, err := store.Create(context.Background(), "", "", sampleLabel(), sampleResult()); err == nil {
		t.Error("expected error for empty owner")
	}
}

func TestStore_Create_KeepsProvidedID(t *testing.T) {
	client, closeFn := mockDefra(t, func(string) string {
		return `{"data": {"create_ScanRecord": [{"_docID": "bae-1"}]}}`
	})
	defer closeFn()

	store := NewStore(client)
	rec, err := store.Create(context.Background(), "user-1", "scan-preassigned", sampleLabel(), sampleResult())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.ID != "scan-preassigned" {
		t.Errorf("record ID = %q, want the ID minted before assessment", rec.ID)
	}
}

func TestStore_List_OwnerScoped(t *testing.T) {
	var gotReq defra.GQLRequest
	client, closeFn := mockDefra(t, func(body string) string {
		json.Unmarshal([]byte(body), &gotReq)
		return `{"data": {"ScanRecord": [
			{"_docID": "bae-1", "id": "scan-1", "owner": "user-1", "created_at": "2026-08-29T10:00:00Z",
			 "product_name": "Choco Crunch Cereal", "sugar_g": 24,
			 "assessment": "Not Safe", "explanation": "Too much sugar."}
		]}}`
	})
	defer closeFn()

	store := NewStore(client)
	records, err := store.List(context.Background(), "user-1", ListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != "scan-1" || rec.Owner != "user-1" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Label.SugarG == nil || *rec.Label.SugarG != 24 {
		t.Errorf("sugar_g = %v, want 24", rec.Label.SugarG)
	}
	if rec.Result.Assessment != types.VerdictNotSafe {
		t.Errorf("assessment = %q", rec.Result.Assessment)
	}

	// Owner must be sent as a query variable, never interpolated
	foundOwner := false
	for _, v := range gotReq.Variables {
		if v == "user-1" {
			foundOwner = true
		}
	}
	if !foundOwner {
		t.Error("owner filter not passed as query variable")
	}
	if !strings.Contains(gotReq.Query, "filter") {
		t.Error("query has no owner filter")
	}
}

func TestStore_List_VerdictFilter(t *testing.T) {
	var gotReq defra.GQLRequest
	client, closeFn := mockDefra(t, func(body string) string {
		json.Unmarshal([]byte(body), &gotReq)
		return `{"data": {"ScanRecord": []}}`
	})
	defer closeFn()

	store := NewStore(client)
	_, err := store.List(context.Background(), "user-1", ListQuery{
		Verdicts: []types.Verdict{types.VerdictNotSafe, types.VerdictModerate},
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if !strings.Contains(gotReq.Query, "_in") {
		t.Errorf("query has no verdict _in filter: %s", gotReq.Query)
	}
	// Verdict values travel as a list variable, not query text
	if strings.Contains(gotReq.Query, "Not Safe") {
		t.Error("verdicts interpolated into query text")
	}
	found := false
	for _, v := range gotReq.Variables {
		if vals, ok := v.([]any); ok && len(vals) == 2 && vals[0] == "Not Safe" {
			found = true
		}
	}
	if !found {
		t.Errorf("verdict list not passed as variable, got %v", gotReq.Variables)
	}
}

func TestStore_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		var gotReq defra.GQLRequest
		client, closeFn := mockDefra(t, func(body string) string {
			json.Unmarshal([]byte(body), &gotReq)
			return `{"data": {"ScanRecord": [
				{"_docID": "bae-1", "id": "scan-1", "owner": "user-1",
				 "assessment": "Safe to Eat", "explanation": "No conflicts."}
			]}}`
		})
		defer closeFn()

		store := NewStore(client)
		rec, err := store.Get(context.Background(), "user-1", "scan-1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if rec == nil || rec.ID != "scan-1" {
			t.Fatalf("unexpected record: %+v", rec)
		}

		// Both owner and id must be variables
		vals := make(map[any]bool)
		for _, v := range gotReq.Variables {
			vals[v] = true
		}
		if !vals["user-1"] || !vals["scan-1"] {
			t.Errorf("expected owner and id as variables, got %v", gotReq.Variables)
		}
	})

	t.Run("not found", func(t *testing.T) {
		client, closeFn := mockDefra(t, func(string) string {
			return `{"data": {"ScanRecord": []}}`
		})
		defer closeFn()

		store := NewStore(client)
		rec, err := store.Get(context.Background(), "user-1", "scan-404")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})

	t.Run("unsafe id rejected", func(t *testing.T) {
		called := false
		client, closeFn := mockDefra(t, func(string) string {
			called = true
			return `{"data": {}}`
		})
		defer closeFn()

		store := NewStore(client)
		_, err := store.Get(context.Background(), "user-1", `scan"}) { evil }`)
		if !errors.Is(err, ErrInvalidID) {
			t.Errorf("error = %v, want ErrInvalidID", err)
		}
		if called {
			t.Error("unsafe id must not reach the database")
		}
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("deletes by docID", func(t *testing.T) {
		var bodies []string
		client, closeFn := mockDefra(t, func(body string) string {
			bodies = append(bodies, body)
			if strings.Contains(body, "delete_ScanRecord") {
				return `{"data": {"delete_ScanRecord": [{"_docID": "bae-1"}]}}`
			}
			return `{"data": {"ScanRecord": [{"_docID": "bae-1", "id": "scan-1", "owner": "user-1"}]}}`
		})
		defer closeFn()

		store := NewStore(client)
		if err := store.Delete(context.Background(), "user-1", "scan-1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(bodies) != 2 {
			t.Fatalf("expected lookup then delete, got %d requests", len(bodies))
		}
		if !strings.Contains(bodies[1], "bae-1") {
			t.Error("delete mutation missing docID")
		}
	})

	t.Run("missing scan is a no-op", func(t *testing.T) {
		requests := 0
		client, closeFn := mockDefra(t, func(string) string {
			requests++
			return `{"data": {"ScanRecord": []}}`
		})
		defer closeFn()

		store := NewStore(client)
		if err := store.Delete(context.Background(), "user-1", "scan-404"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if requests != 1 {
			t.Errorf("expected 1 request (lookup only), got %d", requests)
		}
	})
}
