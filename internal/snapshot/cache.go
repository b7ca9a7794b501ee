package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")

	// ErrEmptyPayload rejects caching an empty record list. Writing an
	// empty series would mask upstream collection failures.
	ErrEmptyPayload = errors.New("cannot cache empty payload")
)

// Cache is a read-through filesystem cache for JSON payloads, keyed by
// a tuple of string parts. It affects performance only, never
// correctness.
type Cache struct {
	root string
}

// NewCache creates the cache root directory if needed.
func NewCache(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Cache{root: root}, nil
}

// Exists reports whether a cached artifact exists for the key.
func (c *Cache) Exists(parts ...string) bool {
	_, err := os.Stat(c.buildPath(parts))
	return err == nil
}

// ReadJSON loads a cached payload into out. Returns ErrCacheMiss when
// the artifact does not exist.
func (c *Cache) ReadJSON(out any, parts ...string) error {
	data, err := os.ReadFile(c.buildPath(parts))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCacheMiss
		}
		return fmt.Errorf("read cache entry: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode cache entry: %w", err)
	}
	return nil
}

// WriteJSON stores a payload under the key.
func (c *Cache) WriteJSON(payload any, parts ...string) error {
	path := c.buildPath(parts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// WriteRecords stores a record list, rejecting empty lists with
// ErrEmptyPayload.
func (c *Cache) WriteRecords(records []map[string]any, parts ...string) error {
	if len(records) == 0 {
		return ErrEmptyPayload
	}
	return c.WriteJSON(records, parts...)
}

// Remove deletes a cached artifact if it exists.
func (c *Cache) Remove(parts ...string) error {
	err := os.Remove(c.buildPath(parts))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// buildPath sanitizes key parts into a relative file path.
func (c *Cache) buildPath(parts []string) string {
	safe := make([]string, 0, len(parts)+1)
	safe = append(safe, c.root)
	for _, part := range parts {
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "/", "_")
		part = strings.ReplaceAll(part, ":", "-")
		safe = append(safe, part)
	}
	return filepath.Join(safe...) + ".json"
}
