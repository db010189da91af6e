package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/testutil"
	"github.com/labelwise/labelwise/internal/types"
)

// TestServer_FullLifecycle boots the server with a real DefraDB
// container and exercises the profile endpoints end to end.
// This test requires Docker to be running.
func TestServer_FullLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testutil.NewServerConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	srv, err := New(Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		DefraDataPath: cfg.DefraDataPath,
		DefraConfig: defra.DockerConfig{
			ContainerName: cfg.DefraConfig.ContainerName,
			HostPort:      cfg.DefraConfig.HostPort,
			Labels:        cfg.DefraConfig.Labels,
		},
		AuthSecret: cfg.AuthSecret,
		Logger:     cfg.Logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	serverErr := make(chan error, 1)
	serverCtx, serverCancel := context.WithCancel(ctx)

	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	if err := testutil.WaitForServer(cfg.URL(), 60*time.Second); err != nil {
		serverCancel()
		t.Fatalf("server did not start: %v", err)
	}

	token, err := srv.Verifier().IssueToken(auth.Identity{Subject: "lifecycle-user"})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	httpClient := testutil.HTTPClient()
	authedReq := func(method, path string, body []byte) *http.Request {
		req, err := http.NewRequestWithContext(ctx, method, cfg.URL()+path, bytes.NewReader(body))
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("health_endpoint", func(t *testing.T) {
		resp, err := httpClient.Get(cfg.URL() + "/health")
		if err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("ready_endpoint", func(t *testing.T) {
		resp, err := httpClient.Get(cfg.URL() + "/ready")
		if err != nil {
			t.Fatalf("ready check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("ready status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("status_endpoint", func(t *testing.T) {
		status, err := testutil.GetStatus(cfg.URL())
		if err != nil {
			t.Fatalf("status check failed: %v", err)
		}
		if status.Defra.Health != "healthy" {
			t.Errorf("defra health = %q, want %q", status.Defra.Health, "healthy")
		}
	})

	t.Run("profile_roundtrip", func(t *testing.T) {
		profile := types.HealthProfile{
			Conditions: []types.Condition{types.ConditionDiabetes},
			WeightGoal: types.WeightGoalLose,
		}
		body, err := json.Marshal(profile)
		if err != nil {
			t.Fatalf("marshal profile: %v", err)
		}

		resp, err := httpClient.Do(authedReq("PUT", "/api/profile", body))
		if err != nil {
			t.Fatalf("put profile failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("put profile status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		resp, err = httpClient.Do(authedReq("GET", "/api/profile", nil))
		if err != nil {
			t.Fatalf("get profile failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get profile status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var got types.HealthProfile
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode profile: %v", err)
		}
		if len(got.Conditions) != 1 || got.Conditions[0] != types.ConditionDiabetes {
			t.Errorf("conditions = %v, want [diabetes]", got.Conditions)
		}
		if got.WeightGoal != types.WeightGoalLose {
			t.Errorf("weight goal = %q, want %q", got.WeightGoal, types.WeightGoalLose)
		}
	})

	t.Run("scans_empty_history", func(t *testing.T) {
		resp, err := httpClient.Do(authedReq("GET", "/api/scans", nil))
		if err != nil {
			t.Fatalf("list scans failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list scans status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var got struct {
			Scans []types.ScanRecord `json:"scans"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode scans: %v", err)
		}
		if len(got.Scans) != 0 {
			t.Errorf("len(scans) = %d, want 0", len(got.Scans))
		}
	})

	serverCancel()
	if err := testutil.WaitForShutdown(serverErr, 60*time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}
