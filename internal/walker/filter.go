package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which files and directories a walk visits. Exclude
// patterns are doublestar globs matched against slash-separated paths
// relative to the walk root.
type Filter struct {
	exclude    []string
	skipHidden bool
	supports   func(path string) bool
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// WithSkipHidden skips dot files and dot directories.
func WithSkipHidden(skip bool) FilterOption {
	return func(f *Filter) {
		f.skipHidden = skip
	}
}

// WithSupported restricts files to those accepted by supports, typically
// a grammar registry's Supports method.
func WithSupported(supports func(path string) bool) FilterOption {
	return func(f *Filter) {
		f.supports = supports
	}
}

// NewFilter creates a Filter. Invalid patterns never match.
func NewFilter(exclude []string, opts ...FilterOption) *Filter {
	f := &Filter{
		exclude:    append([]string(nil), exclude...),
		skipHidden: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ShouldProcessFile returns true if the file at rel should be processed.
func (f *Filter) ShouldProcessFile(rel string) bool {
	rel = filepath.ToSlash(rel)

	if f.skipHidden && isHidden(rel) {
		return false
	}
	if f.isExcluded(rel) {
		return false
	}
	if f.supports != nil && !f.supports(rel) {
		return false
	}
	return true
}

// ShouldProcessDir returns true if the directory at rel should be traversed.
// A directory is pruned when a pattern matches it or its contents.
func (f *Filter) ShouldProcessDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return true
	}

	if f.skipHidden && isHidden(rel) {
		return false
	}
	return !f.isExcluded(rel) && !f.isExcluded(rel+"/_")
}

// isExcluded checks if rel matches any exclude pattern.
func (f *Filter) isExcluded(rel string) bool {
	for _, pattern := range f.exclude {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// isHidden reports whether the last element of rel starts with a dot.
func isHidden(rel string) bool {
	name := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		name = rel[i+1:]
	}
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
