package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Permissions of the store. Tickets are meant to be read by external tooling.
const (
	DirPerm      os.FileMode = 0755
	ArtifactPerm os.FileMode = 0644
)

// TempFilePrefix marks in-flight artifact writes. The artifact name follows it,
// e.g. ".tessera-tmp-metadata.json-123456".
const TempFilePrefix = ".tessera-tmp-"

// writeArtifact atomically replaces dir/name with data and returns its path.
//
// A reader sees either the previous artifact or the complete new one. For
// metadata.json this is what makes a ticket appear all at once to List and
// Watch. The directory is synced after the rename so the new entry survives
// a crash on filesystems that support it.
func writeArtifact(dir, name string, data []byte) (string, error) {
	target := filepath.Join(dir, name)

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+name+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}

	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Chmod(tmpFile.Name(), ArtifactPerm); err != nil {
		return "", fmt.Errorf("failed to chmod %s: %w", name, err)
	}

	if err := os.Rename(tmpFile.Name(), target); err != nil {
		return "", fmt.Errorf("failed to rename temp file to %s: %w", target, err)
	}

	syncDir(dir)
	return target, nil
}

// isTempArtifact reports whether name is an in-flight write left by writeArtifact.
func isTempArtifact(name string) bool {
	return strings.HasPrefix(name, TempFilePrefix)
}

// syncDir flushes directory entries. Best effort: Windows cannot fsync directories.
func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
