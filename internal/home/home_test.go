package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-labelwise")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-labelwise" {
			t.Errorf("expected path /tmp/test-labelwise, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-labelwise")

	t.Run("DataPath", func(t *testing.T) {
		expected := "/tmp/test-labelwise/data"
		if dir.DataPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.DataPath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-labelwise/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("UploadPath", func(t *testing.T) {
		expected := "/tmp/test-labelwise/uploads/scan-1.jpg"
		if dir.UploadPath("scan-1") != expected {
			t.Errorf("expected %s, got %s", expected, dir.UploadPath("scan-1"))
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	homeDir := filepath.Join(tmpDir, "labelwise-test")

	dir, err := New(homeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist yet")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist")
	}
	for _, p := range []string{dir.DataPath(), dir.UploadsPath()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}
