// Package walker discovers source files to explain.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stats contains statistics about walker activity.
type Stats struct {
	FilesDiscovered int64
	FilesSkipped    int64
	DirsTraversed   int64
	LastWalkAt      time.Time
	LastWalkPath    string
}

// Option configures the Walker.
type Option func(*Walker)

// WithLogger sets the logger for the walker.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// Walker scans directories for files accepted by its filter.
type Walker struct {
	filter *Filter
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a Walker. A nil filter accepts every non-hidden file.
func New(filter *Filter, opts ...Option) *Walker {
	if filter == nil {
		filter = NewFilter(nil)
	}
	w := &Walker{
		filter: filter,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Filter returns the walker's filter.
func (w *Walker) Filter() *Filter {
	return w.filter
}

// Stats returns current walker statistics.
func (w *Walker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Walk visits every accepted file under root in lexical order, calling fn
// with its path. Symlinks are skipped. Returning an error from fn stops the
// walk.
func (w *Walker) Walk(ctx context.Context, root string, fn func(path string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat path; %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	w.mu.Lock()
	w.stats.LastWalkPath = root
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.stats.LastWalkAt = time.Now()
		w.mu.Unlock()
	}()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path != root && !w.filter.ShouldProcessDir(rel) {
				w.count(&w.stats.FilesSkipped)
				return fs.SkipDir
			}
			w.count(&w.stats.DirsTraversed)
			return nil
		}

		if !w.filter.ShouldProcessFile(rel) {
			w.count(&w.stats.FilesSkipped)
			return nil
		}

		w.count(&w.stats.FilesDiscovered)
		w.logger.Debug("discovered file", "path", path)
		return fn(path)
	})
}

// Collect expands paths into a deduplicated file list. Directories are
// walked; files named explicitly are kept even when the filter would skip
// them.
func (w *Walker) Collect(ctx context.Context, paths ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) error {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s; %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		if err := w.Walk(ctx, p, add); err != nil {
			return nil, fmt.Errorf("failed to walk %s; %w", p, err)
		}
	}

	return files, nil
}

func (w *Walker) count(field *int64) {
	w.mu.Lock()
	*field++
	w.mu.Unlock()
}
