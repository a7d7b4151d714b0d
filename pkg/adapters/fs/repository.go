package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tessera/pkg/core"
)

// Artifact names inside each ticket directory.
const (
	ImageFile    = "qrcode.png"
	MetadataFile = "metadata.json"
)

// Repository implements core.Repository with one directory per ticket:
//
//	<root>/<ticket-id>/qrcode.png
//	<root>/<ticket-id>/metadata.json
//
// The directory is the unit of a record. There is no rollback: a crash between
// the two writes leaves a directory without metadata, which List skips.
type Repository struct {
	Path   string
	config Config
	logger *slog.Logger
	cache  *cache

	mu            sync.RWMutex
	watcherActive bool
	lastScan      *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	MustExist    bool         // Fail Initialize instead of creating the root.
	ReadOnly     bool         // Reject Save/Clear; keep index updates in memory.
	Index        bool         // Maintain IndexFile to skip re-parsing unchanged metadata.
	Logger       *slog.Logger
	ErrorHandler func(error) // Receives runtime watcher errors.
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		logger: logger,
		cache:  newCache(filepath.Join(config.Path, IndexFile)),
	}
}

// Initialize ensures the root directory exists. Calling it again is harmless.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if err != nil {
			return &core.PersistenceError{Op: "open storage", Path: r.Path, Err: err}
		}
		if !info.IsDir() {
			return &core.PersistenceError{Op: "open storage", Path: r.Path, Err: fmt.Errorf("not a directory")}
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, DirPerm); err != nil {
		return &core.PersistenceError{Op: "initialize storage", Path: r.Path, Err: err}
	}
	return nil
}

// Save writes the image and then the metadata of a ticket.
// It returns the path of the image artifact.
func (r *Repository) Save(ctx context.Context, t core.Ticket, image []byte) (string, error) {
	if r.config.ReadOnly {
		return "", &core.PersistenceError{Op: "save ticket", Path: t.ID, Err: core.ErrReadOnly}
	}
	if err := validateID(t.ID); err != nil {
		return "", &core.PersistenceError{Op: "save ticket", Path: t.ID, Err: err}
	}

	dir := filepath.Join(r.Path, t.ID)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return "", &core.PersistenceError{Op: "create ticket directory", Path: dir, Err: err}
	}

	metadata, err := t.Record().MarshalIndent()
	if err != nil {
		return "", &core.PersistenceError{Op: "serialize ticket", Path: t.ID, Err: err}
	}

	// Image first: metadata.json is what makes the ticket visible.
	imagePath, err := writeArtifact(dir, ImageFile, image)
	if err != nil {
		return "", &core.PersistenceError{Op: "save ticket image", Path: filepath.Join(dir, ImageFile), Err: err}
	}

	if _, err := writeArtifact(dir, MetadataFile, metadata); err != nil {
		return "", &core.PersistenceError{Op: "save ticket metadata", Path: filepath.Join(dir, MetadataFile), Err: err}
	}

	r.logger.Debug("ticket saved", "id", t.ID, "dir", dir)
	return imagePath, nil
}

// List scans the root for ticket directories.
//
// Strategy:
//  1. Enumerate direct children of the root. Failure here is the only error.
//  2. Skip anything that is not a directory.
//  3. For each directory, reuse the index entry when metadata.json is unchanged,
//     otherwise read and parse it.
//  4. Unreadable records are logged and omitted; one bad record never hides the others.
//  5. Prune the index to the directories seen and persist it.
func (r *Repository) List(ctx context.Context) ([]core.StoredTicket, error) {
	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list tickets in", Path: r.Path, Err: err}
	}

	if r.config.Index {
		if err := r.cache.Load(); err != nil {
			r.logger.Debug("index unavailable, scanning without it", "error", err)
		}
	}

	tickets := make([]core.StoredTicket, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if isTempArtifact(name) {
			continue
		}
		info, err := os.Stat(filepath.Join(r.Path, name))
		if err != nil {
			r.logger.Warn("skipping ticket", "dir", name, "error", err)
			continue
		}
		if !info.IsDir() {
			continue
		}

		st, err := r.readTicket(name)
		if err != nil {
			r.logger.Warn("skipping ticket", "dir", name, "error", err)
			continue
		}
		seen[name] = true
		tickets = append(tickets, st)
	}

	if r.config.Index {
		r.cache.Prune(seen)
		if !r.config.ReadOnly {
			if err := r.cache.Save(); err != nil {
				r.logger.Debug("failed to save index", "error", err)
			}
		}
	}

	r.recordScan()
	return tickets, nil
}

// readTicket loads the record stored in the directory name.
func (r *Repository) readTicket(name string) (core.StoredTicket, error) {
	dir := filepath.Join(r.Path, name)
	metadataPath := filepath.Join(dir, MetadataFile)

	info, err := os.Stat(metadataPath)
	if err != nil {
		return core.StoredTicket{}, fmt.Errorf("missing metadata: %w", err)
	}

	var record core.Record
	if entry, hit := r.cacheGet(name, info.ModTime()); hit {
		record = entry.Record
	} else {
		data, err := os.ReadFile(metadataPath)
		if err != nil {
			return core.StoredTicket{}, err
		}
		record, err = core.ParseRecord(data)
		if err != nil {
			return core.StoredTicket{}, fmt.Errorf("failed to parse %s: %w", MetadataFile, err)
		}
		if r.config.Index {
			r.cache.Set(name, &indexEntry{Record: record, LastModified: info.ModTime()})
		}
	}

	ticket, err := core.TicketFromRecord(record)
	if err != nil {
		return core.StoredTicket{}, err
	}

	st := core.StoredTicket{Ticket: ticket}
	imagePath := filepath.Join(dir, ImageFile)
	if _, err := os.Stat(imagePath); err == nil {
		st.ImagePath = imagePath
	} else {
		r.logger.Debug("ticket has no image", "id", ticket.ID, "error", err)
	}
	return st, nil
}

func (r *Repository) cacheGet(name string, mtime time.Time) (*indexEntry, bool) {
	if !r.config.Index {
		return nil, false
	}
	return r.cache.Get(name, mtime)
}

// Clear removes every directory under the root. Files at the root are left untouched.
// There is no confirmation at this layer.
func (r *Repository) Clear(ctx context.Context) error {
	if r.config.ReadOnly {
		return &core.PersistenceError{Op: "clear tickets in", Path: r.Path, Err: core.ErrReadOnly}
	}

	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return &core.PersistenceError{Op: "clear tickets in", Path: r.Path, Err: err}
	}

	removed := 0
	for _, entry := range entries {
		if isTempArtifact(entry.Name()) {
			continue
		}
		path := filepath.Join(r.Path, entry.Name())
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return &core.PersistenceError{Op: "clear tickets in", Path: path, Err: err}
		}
		if !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return &core.PersistenceError{Op: "remove ticket directory", Path: path, Err: err}
		}
		removed++
	}

	if r.config.Index {
		r.cache.Reset()
		if err := r.cache.Save(); err != nil {
			r.logger.Debug("failed to save index", "error", err)
		}
	}

	r.logger.Debug("tickets cleared", "count", removed)
	return nil
}

// validateID rejects ids that would escape the root or collide with special names.
func validateID(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", core.ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`), filepath.Base(id) != id:
		return fmt.Errorf("%w: %q contains a path separator", core.ErrInvalidID, id)
	}
	return nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
