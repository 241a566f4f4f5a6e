package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/zeebo/xxh3"
)

// CacheSchemaVersion is bumped when the generated output format
// changes. A mismatch forces regeneration of every type, so upgrading
// the tool never leaves stale output behind.
const CacheSchemaVersion = 2

// cacheFileName is the per-package skip cache, written next to the
// generated files.
const cacheFileName = ".uniongen.cache"

type cacheEntry struct {
	SchemaHash string `json:"schemaHash"`
	Output     string `json:"output"`
}

type cache struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

// loadCache reads the skip cache of a directory. A missing, corrupt or
// version-mismatched cache degrades to an empty one: the only cost is
// regeneration.
func loadCache(dir string) *cache {
	empty := &cache{Version: CacheSchemaVersion, Entries: make(map[string]cacheEntry)}

	data, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		return empty
	}
	var c cache
	if err := json.Unmarshal(data, &c); err != nil {
		return empty
	}
	if c.Version != CacheSchemaVersion || c.Entries == nil {
		return empty
	}
	return &c
}

// save writes the cache back. Cache write failures are not fatal to a
// build; the caller decides whether to report them.
func (c *cache) save(dir string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFileName), data, 0644)
}

// upToDate reports whether the recorded hash for a host type matches
// and its output file still exists on disk.
func (c *cache) upToDate(host, hash, outputPath string) bool {
	entry, ok := c.Entries[host]
	if !ok || entry.SchemaHash != hash {
		return false
	}
	if _, err := os.Stat(outputPath); err != nil {
		return false
	}
	return true
}

// record stores the hash and output name of a freshly generated type.
func (c *cache) record(host, hash, output string) {
	c.Entries[host] = cacheEntry{SchemaHash: hash, Output: output}
}

// schemaHash fingerprints the source snapshot a type was generated
// from, together with the settings that shape the output.
func schemaHash(source []byte, cfg *Config) string {
	seed := fmt.Sprintf("v%d|%s|%s|", CacheSchemaVersion, cfg.OutputSuffix, cfg.TagUnderlying)
	h := xxh3.Hash(append([]byte(seed), source...))
	return fmt.Sprintf("%016x", h)
}
