package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const explanationDir = "explanations"

// Explanation is a cached explanation for one piece.
type Explanation struct {
	Text      string    `json:"text"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"version"`
}

// ExplanationCache stores explanations on disk keyed by content hash.
type ExplanationCache struct {
	config CacheConfig
	mu     sync.RWMutex
}

// NewExplanationCache creates the cache directory and returns the cache.
func NewExplanationCache(config CacheConfig) (*ExplanationCache, error) {
	if err := ensureDir(filepath.Join(config.BaseDir, explanationDir)); err != nil {
		return nil, fmt.Errorf("failed to create cache directory; %w", err)
	}

	return &ExplanationCache{config: config}, nil
}

func (c *ExplanationCache) path(key string) string {
	return hashToPath(filepath.Join(c.config.BaseDir, explanationDir), key, fmt.Sprintf("-v%d.json", c.config.Version))
}

// Get retrieves a cached explanation by key.
func (c *ExplanationCache) Get(key string) (*Explanation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache file; %w", err)
	}

	var e Explanation
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data; %w", err)
	}

	if e.Version != c.config.Version {
		return nil, ErrVersionMismatch
	}

	return &e, nil
}

// Set stores an explanation. The entry version is set to the cache version.
func (c *ExplanationCache) Set(key string, e *Explanation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.path(key)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create cache directory; %w", err)
	}

	e.Version = c.config.Version
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal explanation; %w", err)
	}

	// Readers never observe a partially written entry.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file; %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write cache file; %w", err)
	}

	return nil
}

// Delete removes a cached entry.
func (c *ExplanationCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file; %w", err)
	}

	return nil
}

// Has checks if a cache entry exists.
func (c *ExplanationCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, err := os.Stat(c.path(key))
	return err == nil
}

// Clear removes all cached entries.
func (c *ExplanationCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.config.BaseDir, explanationDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear cache; %w", err)
	}

	return ensureDir(dir)
}

// Stats returns cache statistics.
func (c *ExplanationCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{}
	_ = filepath.Walk(filepath.Join(c.config.BaseDir, explanationDir), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			stats.EntryCount++
			stats.TotalSize += info.Size()
		}
		return nil
	})

	return stats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	EntryCount int64
	TotalSize  int64
}
