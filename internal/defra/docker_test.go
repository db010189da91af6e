package defra

import (
	"testing"
)

func TestDockerConfig_Defaults(t *testing.T) {
	if DefaultContainerName != "labelwise-defra" {
		t.Errorf("unexpected default container name: %s", DefaultContainerName)
	}
	if DefaultPort != "9181" {
		t.Errorf("unexpected default port: %s", DefaultPort)
	}
	if DefaultImage != "sourcenetwork/defradb:latest" {
		t.Errorf("unexpected default image: %s", DefaultImage)
	}
}

func TestContainerStatus_Values(t *testing.T) {
	statuses := []ContainerStatus{
		StatusRunning,
		StatusStopped,
		StatusNotFound,
		StatusUnhealthy,
		StatusStarting,
	}

	seen := make(map[ContainerStatus]bool)
	for _, s := range statuses {
		if s == "" {
			t.Error("empty status value")
		}
		if seen[s] {
			t.Errorf("duplicate status value: %s", s)
		}
		seen[s] = true
	}
}

func TestDockerManager_URL(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{"default port", "9181", "http://localhost:9181"},
		{"custom port", "19181", "http://localhost:19181"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &DockerManager{hostPort: tt.port}
			if got := m.URL(); got != tt.want {
				t.Errorf("URL() = %s, want %s", got, tt.want)
			}
		})
	}
}
