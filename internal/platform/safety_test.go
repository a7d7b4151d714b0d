package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRootPath(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, DevDirName)
	insideTemp := filepath.Join(tempRoot, "some-test", "tickets")

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{"Normal Mode - Empty", "", false, "."},
		{"Normal Mode - Specific Path", "/srv/tickets", false, "/srv/tickets"},
		{"Dev Mode - Empty Path", "", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Current Dir", ".", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Relative Name", "tickets", true, filepath.Join(devBase, "tickets")},
		{"Dev Mode - Clean Name", "../bad/path", true, filepath.Join(devBase, "path")},
		{"Dev Mode - Absolute Outside Temp", "/srv/tickets", true, filepath.Join(devBase, "tickets")},
		{"Dev Mode - Exception for Temp Dir", insideTemp, true, insideTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRootPath(tt.userPath, tt.forceTemp)
			if got != tt.expected {
				t.Errorf("ResolveRootPath(%q, %v) = %q, want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	if !IsDevRun() {
		t.Error("Expected IsDevRun to be true under go test")
	}
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	got, err := DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot failed: %v", err)
	}
	if filepath.Base(got) != "tickets" || filepath.Base(filepath.Dir(got)) != "tessera" {
		t.Errorf("unexpected default root %q", got)
	}
}
