package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashToPath(t *testing.T) {
	tests := []struct {
		name     string
		baseDir  string
		hash     string
		suffix   string
		expected string
	}{
		{
			name:     "normal hash",
			baseDir:  "/cache",
			hash:     "abcdef1234567890",
			suffix:   ".json",
			expected: filepath.Join("/cache", "ab", "cd", "abcdef1234567890.json"),
		},
		{
			name:     "hash with prefix",
			baseDir:  "/cache",
			hash:     "blake3:abcdef1234567890",
			suffix:   ".json",
			expected: filepath.Join("/cache", "ab", "cd", "abcdef1234567890.json"),
		},
		{
			name:     "short hash",
			baseDir:  "/cache",
			hash:     "abc",
			suffix:   ".json",
			expected: filepath.Join("/cache", "abc.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := hashToPath(tt.baseDir, tt.hash, tt.suffix)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestKey(t *testing.T) {
	a := Key("anthropic", "model", "Foo", "bar", "piece")
	b := Key("anthropic", "model", "Foo", "bar", "piece")
	if a != b {
		t.Errorf("expected stable key, got %s and %s", a, b)
	}
	if !strings.HasPrefix(a, "blake3:") {
		t.Errorf("expected blake3 prefix, got %s", a)
	}
	if len(a) != len("blake3:")+64 {
		t.Errorf("expected 64 hex chars, got %d", len(a)-len("blake3:"))
	}

	if Key("ab", "c") == Key("a", "bc") {
		t.Error("expected part boundaries to affect the key")
	}
	if Key("x") == Key("y") {
		t.Error("expected different content to produce different keys")
	}
}

func newTestCache(t *testing.T, version int) (*ExplanationCache, string) {
	t.Helper()
	tmpDir := t.TempDir()
	cache, err := NewExplanationCache(CacheConfig{BaseDir: tmpDir, Version: version})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return cache, tmpDir
}

func TestExplanationCache_GetSet(t *testing.T) {
	cache, _ := newTestCache(t, 1)

	if _, err := cache.Get(Key("missing")); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	key := Key("piece")
	entry := &Explanation{Text: "adds two numbers", Provider: "openai", Model: "m"}
	if err := cache.Set(key, entry); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	got, err := cache.Get(key)
	if err != nil {
		t.Fatalf("failed to get cache: %v", err)
	}
	if got.Text != entry.Text {
		t.Errorf("expected text %q, got %q", entry.Text, got.Text)
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
}

func TestExplanationCache_HasDelete(t *testing.T) {
	cache, _ := newTestCache(t, 1)
	key := Key("piece")

	if cache.Has(key) {
		t.Error("expected cache to not have entry")
	}

	_ = cache.Set(key, &Explanation{Text: "x"})
	if !cache.Has(key) {
		t.Error("expected cache to have entry")
	}

	if err := cache.Delete(key); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if cache.Has(key) {
		t.Error("expected cache entry to be deleted")
	}

	// Deleting a missing entry is not an error
	if err := cache.Delete(key); err != nil {
		t.Errorf("expected nil error deleting missing entry, got %v", err)
	}
}

func TestExplanationCache_ClearAndStats(t *testing.T) {
	cache, tmpDir := newTestCache(t, 1)

	for i := 0; i < 3; i++ {
		_ = cache.Set(Key(string(rune('a'+i))), &Explanation{Text: "x"})
	}

	stats := cache.Stats()
	if stats.EntryCount != 3 {
		t.Errorf("expected 3 entries, got %d", stats.EntryCount)
	}
	if stats.TotalSize <= 0 {
		t.Errorf("expected positive total size, got %d", stats.TotalSize)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, explanationDir))
	if err != nil {
		t.Fatalf("failed to read cache dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty cache dir, got %d entries", len(entries))
	}
}

func TestExplanationCache_DifferentVersion(t *testing.T) {
	tmpDir := t.TempDir()
	cache1, _ := NewExplanationCache(CacheConfig{BaseDir: tmpDir, Version: 1})
	cache2, _ := NewExplanationCache(CacheConfig{BaseDir: tmpDir, Version: 2})

	key := Key("piece")
	_ = cache1.Set(key, &Explanation{Text: "x"})

	// Version is in the file path, so a different version is a miss
	if _, err := cache2.Get(key); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss for different version, got %v", err)
	}
}

func TestExplanationCache_VersionMismatchInFile(t *testing.T) {
	cache, _ := newTestCache(t, 1)
	key := Key("piece")

	path := cache.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"text":"x","version":7}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := cache.Get(key); err != ErrVersionMismatch {
		t.Errorf("expected ErrVersionMismatch, got %v", err)
	}
}
