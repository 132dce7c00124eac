package assist

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// cacheVersion is folded into every key. Bump it when prompts change so
// stale answers don't survive an upgrade.
const cacheVersion = "v2"

// Cache is a persistent response cache keyed by query kind and text. A
// corrupt or missing cache file is treated as empty; cache write failures
// are swallowed since the cache is an optimization, not a datastore.
type Cache struct {
	fs   afero.Fs
	path string

	mu      sync.Mutex
	entries map[string]json.RawMessage
}

// NewCache opens or creates the cache backed by the file at path.
func NewCache(fsys afero.Fs, path string) *Cache {
	c := &Cache{fs: fsys, path: path, entries: make(map[string]json.RawMessage)}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return c
	}
	// Tolerate corruption, the next Put rewrites the file.
	_ = json.Unmarshal(data, &c.entries)
	if c.entries == nil {
		c.entries = make(map[string]json.RawMessage)
	}
	return c
}

func cacheKey(kind, text string) string {
	sum := sha256.Sum256([]byte(cacheVersion + "|" + kind + "|" + text))
	return fmt.Sprintf("%x", sum)
}

// Get unmarshals the cached answer for (kind, text) into out and reports
// whether one existed.
func (c *Cache) Get(kind, text string, out any) bool {
	c.mu.Lock()
	raw, ok := c.entries[cacheKey(kind, text)]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Put stores the answer for (kind, text) and persists the cache.
func (c *Cache) Put(kind, text string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.entries[cacheKey(kind, text)] = raw
	c.mu.Unlock()

	c.save()
}

// Clear drops all cached answers and removes the backing file.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]json.RawMessage)
	c.mu.Unlock()

	_ = c.fs.Remove(c.path)
}

func (c *Cache) save() {
	c.mu.Lock()
	data, err := json.Marshal(c.entries)
	c.mu.Unlock()
	if err != nil {
		return
	}

	_ = c.fs.MkdirAll(filepath.Dir(c.path), 0700)
	_ = afero.WriteFile(c.fs, c.path, data, 0600)
}
