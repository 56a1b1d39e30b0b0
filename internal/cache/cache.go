package cache

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

var (
	// ErrCacheMiss is returned when an entry is not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrVersionMismatch is returned when the cached version doesn't match.
	ErrVersionMismatch = errors.New("version mismatch")
)

// CacheConfig contains configuration for the cache.
type CacheConfig struct {
	// BaseDir is the base directory for cache storage.
	BaseDir string

	// Version is the current explanation format version.
	Version int
}

// Key derives a content-addressed cache key from parts. Parts are
// length-prefixed so that ("ab","c") and ("a","bc") hash differently.
func Key(parts ...string) string {
	h := blake3.New(32, nil)
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write([]byte(p))
	}
	return "blake3:" + hex.EncodeToString(h.Sum(nil))
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// hashToPath converts a content hash to a cache file path with fan-out.
// Uses 2-level directory fan-out: xx/yy/full_hash
func hashToPath(baseDir, hash, suffix string) string {
	// Remove algorithm prefix if present (e.g., "blake3:")
	cleanHash := hash
	if idx := strings.Index(hash, ":"); idx != -1 {
		cleanHash = hash[idx+1:]
	}

	if len(cleanHash) < 4 {
		return filepath.Join(baseDir, cleanHash+suffix)
	}

	return filepath.Join(baseDir, cleanHash[:2], cleanHash[2:4], cleanHash+suffix)
}
