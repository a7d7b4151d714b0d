package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/tessera/pkg/core"
)

// Watch reports tickets appearing and disappearing under the root.
//
// A ticket is announced (EventCreate) once its metadata.json exists, so
// half-written directories are never reported. EventDelete is sent when a
// ticket directory is removed. pattern is a doublestar glob matched against
// the ticket id; "" and "*" match everything.
//
// The returned channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, &core.PersistenceError{Op: "watch", Path: r.Path, Err: err}
	}

	state := &watchState{
		pattern:   pattern,
		known:     make(map[string]bool),
		announced: make(map[string]bool),
	}

	entries, err := os.ReadDir(r.Path)
	if err != nil {
		_ = watcher.Close()
		return nil, &core.PersistenceError{Op: "watch", Path: r.Path, Err: err}
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.Path, entry.Name())
		if err := watcher.Add(dir); err != nil {
			r.logger.Debug("failed to watch ticket directory", "dir", dir, "error", err)
			continue
		}
		state.known[entry.Name()] = true
		if fileExists(filepath.Join(dir, MetadataFile)) {
			state.announced[entry.Name()] = true
		}
	}

	events := make(chan core.Event, 16)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return r.watchLoop(ctx, watcher, state, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.handleWatchError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

// watchState is owned by the watch goroutine.
type watchState struct {
	pattern   string
	known     map[string]bool // ticket directories being watched
	announced map[string]bool // tickets already reported as created
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, state *watchState, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			r.processEvent(ctx, watcher, state, event, events)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.handleWatchError(wErr)
		}
	}
}

func (r *Repository) processEvent(ctx context.Context, watcher *fsnotify.Watcher, state *watchState, event fsnotify.Event, events chan<- core.Event) {
	rel, err := filepath.Rel(r.Path, event.Name)
	if err != nil {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	id := parts[0]
	if isTempArtifact(parts[len(parts)-1]) {
		return
	}

	r.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	switch {
	case len(parts) == 1 && event.Has(fsnotify.Create):
		if !isDir(event.Name) {
			return
		}
		// Add before checking for metadata so a write racing with Add is seen by one of the two.
		if err := watcher.Add(event.Name); err != nil {
			r.handleWatchError(fmt.Errorf("failed to watch %s: %w", event.Name, err))
		}
		state.known[id] = true
		if fileExists(filepath.Join(event.Name, MetadataFile)) {
			r.announce(ctx, state, id, events)
		}

	case len(parts) == 1 && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)):
		if !state.known[id] {
			return
		}
		delete(state.known, id)
		delete(state.announced, id)
		r.emit(ctx, state, core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()}, events)

	case len(parts) == 2 && parts[1] == MetadataFile && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)):
		r.announce(ctx, state, id, events)
	}
}

func (r *Repository) announce(ctx context.Context, state *watchState, id string, events chan<- core.Event) {
	if state.announced[id] {
		return
	}
	state.announced[id] = true
	r.emit(ctx, state, core.Event{Type: core.EventCreate, ID: id, Timestamp: time.Now().Unix()}, events)
}

func (r *Repository) emit(ctx context.Context, state *watchState, e core.Event, events chan<- core.Event) {
	if state.pattern != "" && state.pattern != "*" {
		if ok, _ := doublestar.Match(state.pattern, e.ID); !ok {
			return
		}
	}
	select {
	case events <- e:
	case <-ctx.Done():
	}
}

func (r *Repository) handleWatchError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.logger.Error("watcher error", "error", err)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
