package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the directory under os.TempDir() used by the dev sandbox.
const DevDirName = "tessera-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}

	// go test binaries
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveRootPath determines the actual storage root based on safety rules.
// With forceTemp, paths outside the system temp dir are re-rooted under
// $TMPDIR/tessera-dev/<base> so a sandboxed run never touches real tickets.
func ResolveRootPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if userPath != "" {
		// Already inside the temp dir (e.g. t.TempDir()): trust it.
		if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return clean
		}
	}

	name := filepath.Base(clean)
	if userPath == "" || name == "." || name == string(filepath.Separator) {
		name = "default"
	}

	return filepath.Join(os.TempDir(), DevDirName, name)
}

// DefaultRoot returns the per-user ticket directory, e.g. ~/.config/tessera/tickets.
func DefaultRoot() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tessera", "tickets"), nil
}
