package cache

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"clinex/pkg/core"
)

const defaultTTL = 7 * 24 * time.Hour

// Cache is a content-addressed store of model responses on disk. Each entry
// is a gzip JSON file named after a hash of the full request, so identical
// prompts against the same model and options resolve to the same file.
type Cache struct {
	Dir string
	TTL time.Duration
}

func New(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".clinex", "cache")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{Dir: dir, TTL: ttl}, nil
}

// request is the cache identity. Any field that changes the model output must
// be part of it.
type request struct {
	Model   string               `json:"model"`
	Prompt  string               `json:"prompt"`
	Options core.GenerateOptions `json:"options"`
}

type entry struct {
	Response core.Response `json:"response"`
	SavedAt  time.Time     `json:"saved_at"`
}

func (c *Cache) entryPath(req request) string {
	encoded, _ := json.Marshal(req)
	sum := sha256.Sum256(encoded)
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:])+".json.gz")
}

// Get returns the cached response for the request, if present and fresh.
// Stale entries are removed on the way out.
func (c *Cache) Get(modelName, prompt string, opts core.GenerateOptions) (core.Response, bool) {
	path := c.entryPath(request{Model: modelName, Prompt: prompt, Options: opts})
	e, err := load(path)
	if err != nil {
		return core.Response{}, false
	}
	if time.Since(e.SavedAt) > c.TTL {
		_ = os.Remove(path)
		return core.Response{}, false
	}
	return e.Response, true
}

// Set stores a response. The write goes through a temp file and rename so a
// crashed run never leaves a truncated entry behind.
func (c *Cache) Set(modelName, prompt string, opts core.GenerateOptions, resp core.Response) error {
	path := c.entryPath(request{Model: modelName, Prompt: prompt, Options: opts})
	return store(c.Dir, path, entry{Response: resp, SavedAt: time.Now()})
}

func load(path string) (entry, error) {
	var e entry
	f, err := os.Open(path)
	if err != nil {
		return e, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return e, err
	}
	defer gz.Close()
	return e, json.NewDecoder(gz).Decode(&e)
}

func store(dir, path string, e entry) error {
	tmp, err := os.CreateTemp(dir, "entry-*.json.gz")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	gz := gzip.NewWriter(tmp)
	if err := json.NewEncoder(gz).Encode(e); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
