package grammar

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry manages language strategies by name and file extension.
type Registry struct {
	mu           sync.RWMutex
	strategies   map[string]Strategy // keyed by language name
	extensionMap map[string]Strategy // keyed by extension (e.g., ".java")
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies:   make(map[string]Strategy),
		extensionMap: make(map[string]Strategy),
	}
}

// DefaultRegistry returns a registry with every built-in language registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewJavaStrategy())
	r.Register(NewGoStrategy())
	r.Register(NewPythonStrategy())
	r.Register(NewJavaScriptStrategy())
	return r
}

// Register adds a strategy, replacing any previous one for the same language or extension.
func (r *Registry) Register(strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies[strings.ToLower(strategy.Language())] = strategy
	for _, ext := range strategy.Extensions() {
		r.extensionMap[strings.ToLower(ext)] = strategy
	}
}

// Get returns a strategy by language name.
func (r *Registry) Get(language string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategies[strings.ToLower(language)]
}

// GetByExtension returns a strategy by file extension, with or without the leading dot.
func (r *Registry) GetByExtension(ext string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return r.extensionMap[ext]
}

// Resolve picks a strategy from an explicit language hint, falling back to
// the extension of path.
func (r *Registry) Resolve(language, path string) (Strategy, error) {
	if language != "" {
		if s := r.Get(language); s != nil {
			return s, nil
		}
		if s := r.GetByExtension(language); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("unsupported language %q", language)
	}

	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("cannot infer language for %q; no file extension", path)
	}
	if s := r.GetByExtension(ext); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("unsupported file extension %q", ext)
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	return r.GetByExtension(filepath.Ext(path)) != nil
}

// Languages returns all registered language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	languages := make([]string, 0, len(r.strategies))
	for lang := range r.strategies {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}
