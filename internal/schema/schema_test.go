package schema

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labelwise/labelwise/internal/defra"
)

func TestAll(t *testing.T) {
	schemas, err := All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	if len(schemas) != 3 {
		t.Fatalf("expected 3 schemas, got %d", len(schemas))
	}

	// HealthProfile must come before ScanRecord
	if schemas[0].Name != "HealthProfile" {
		t.Errorf("expected HealthProfile first, got %s", schemas[0].Name)
	}

	for _, s := range schemas {
		if s.SDL == "" {
			t.Errorf("%s schema SDL is empty", s.Name)
		}
		if !strings.Contains(s.SDL, "type "+s.Name) {
			t.Errorf("%s schema SDL doesn't contain 'type %s'", s.Name, s.Name)
		}
	}
}

func TestGet(t *testing.T) {
	t.Run("existing schema", func(t *testing.T) {
		s, err := Get("ScanRecord")
		if err != nil {
			t.Fatalf("Get(ScanRecord) error = %v", err)
		}
		if s.Name != "ScanRecord" {
			t.Errorf("expected name ScanRecord, got %s", s.Name)
		}
		if !strings.Contains(s.SDL, "product_name") {
			t.Error("ScanRecord SDL missing product_name field")
		}
	})

	t.Run("non-existent schema", func(t *testing.T) {
		_, err := Get("NonExistent")
		if err == nil {
			t.Error("expected error for non-existent schema")
		}
	})
}

func TestInitialize(t *testing.T) {
	t.Run("successful initialization", func(t *testing.T) {
		var applied int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v0/schema" {
				applied++
				w.WriteHeader(http.StatusOK)
				return
			}
			t.Errorf("unexpected path: %s", r.URL.Path)
		}))
		defer server.Close()

		client := defra.NewClient(server.URL)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		if err := Initialize(context.Background(), client, logger); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		if applied != 3 {
			t.Errorf("expected 3 schema applications, got %d", applied)
		}
	})

	t.Run("already exists is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("collection already exists"))
		}))
		defer server.Close()

		client := defra.NewClient(server.URL)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		if err := Initialize(context.Background(), client, logger); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
	})

	t.Run("genuine failure propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("invalid schema syntax"))
		}))
		defer server.Close()

		client := defra.NewClient(server.URL)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		if err := Initialize(context.Background(), client, logger); err == nil {
			t.Error("expected error for invalid schema")
		}
	})
}
