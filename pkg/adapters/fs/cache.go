package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/tessera/pkg/core"
)

// IndexFile is the name of the index kept at the store root.
// It is a plain file, so Clear leaves it alone and List never mistakes it for a ticket.
const IndexFile = ".tessera-index.json"

// indexEntry is the parsed metadata of one ticket directory.
type indexEntry struct {
	Record       core.Record `json:"record"`
	LastModified time.Time   `json:"lastModified"` // mtime of metadata.json
}

// index represents the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is the ticket directory name
	dirty   bool
	mu      sync.RWMutex
}

// cache avoids re-parsing metadata.json files that did not change since the last scan.
// A hit is only trusted when the metadata file still exists with the same mtime,
// so partial or deleted records are never served from it.
type cache struct {
	Path  string
	index *index
}

func newCache(path string) *cache {
	return &cache{
		Path: path,
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. Missing or corrupted files yield an empty index.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var loaded struct {
		Version int                    `json:"version"`
		Entries map[string]*indexEntry `json:"entries"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&loaded); err != nil || loaded.Version != c.index.Version {
		// Self-heal: the next Save rewrites a valid index.
		c.index.Entries = make(map[string]*indexEntry)
		c.index.dirty = true
		return nil
	}

	if loaded.Entries == nil {
		loaded.Entries = make(map[string]*indexEntry)
	}
	c.index.Entries = loaded.Entries
	c.index.dirty = false
	return nil
}

// Save persists the cache to disk if it is dirty.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()

	if err != nil {
		return err
	}

	if _, err := writeArtifact(filepath.Dir(c.Path), filepath.Base(c.Path), data); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()

	return nil
}

// Get returns the entry for dir if it matches the current metadata mtime.
func (c *cache) Get(dir string, currentMtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[dir]
	if !ok {
		return nil, false
	}
	if !entry.LastModified.Equal(currentMtime) {
		return nil, false
	}
	return entry, true
}

// Set updates an entry in the cache.
func (c *cache) Set(dir string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[dir] = entry
	c.index.dirty = true
}

// Prune removes entries that are not in the 'keep' set.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	for dir := range c.index.Entries {
		if !keep[dir] {
			delete(c.index.Entries, dir)
			c.index.dirty = true
		}
	}
}

// Reset drops every entry.
func (c *cache) Reset() {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries = make(map[string]*indexEntry)
	c.index.dirty = true
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
