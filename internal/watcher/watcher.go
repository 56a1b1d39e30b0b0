// Package watcher turns filesystem notifications under watched roots into
// debounced per-file changes.
package watcher

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"lukechampine.com/blake3"

	"github.com/leefowlercu/code-explainer/internal/walker"
)

// Stats contains statistics about watcher activity.
type Stats struct {
	WatchedPaths   int
	EventsReceived int64
	ChangesEmitted int64
	Unchanged      int64
	Errors         int64
	IsRunning      bool
	DegradedMode   bool
}

// Option configures the Watcher.
type Option func(*Watcher)

// WithDebounceWindow sets the quiet window for change coalescing.
func WithDebounceWindow(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceWindow = d
	}
}

// WithDeleteGracePeriod sets the grace period before emitting deletes.
func WithDeleteGracePeriod(d time.Duration) Option {
	return func(w *Watcher) {
		w.deleteGracePeriod = d
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher watches directory trees and emits one Change per settled file.
// Files are filtered relative to the watched root they belong to.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	filter    *walker.Filter
	coalescer *Coalescer
	logger    *slog.Logger

	debounceWindow    time.Duration
	deleteGracePeriod time.Duration

	mu      sync.RWMutex
	roots   map[string]bool
	hashes  map[string]string
	stats   Stats
	running bool

	changes  chan Change
	errChan  chan error
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a Watcher. A nil filter accepts every non-hidden file.
func New(filter *walker.Filter, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}
	if filter == nil {
		filter = walker.NewFilter(nil)
	}

	w := &Watcher{
		fsWatcher:         fsw,
		filter:            filter,
		logger:            slog.Default(),
		debounceWindow:    500 * time.Millisecond,
		deleteGracePeriod: 2 * time.Second,
		roots:             make(map[string]bool),
		hashes:            make(map[string]string),
		changes:           make(chan Change, 64),
		errChan:           make(chan error, 1),
		stopCh:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.coalescer = NewCoalescer(w.debounceWindow, w.deleteGracePeriod)

	return w, nil
}

// Watch adds recursive watches for root and every directory under it the
// filter accepts.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("failed to stat path; %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absRoot)
	}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != absRoot {
			rel, _ := filepath.Rel(absRoot, p)
			if !w.filter.ShouldProcessDir(rel) {
				return fs.SkipDir
			}
		}
		if err := w.addWatch(p); err != nil {
			w.logger.Warn("failed to add watch", "path", p, "error", err)
			w.countError()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory; %w", err)
	}

	w.mu.Lock()
	w.roots[absRoot] = true
	w.stats.WatchedPaths = len(w.roots)
	w.mu.Unlock()

	w.logger.Debug("watching directory", "path", absRoot)
	return nil
}

// addWatch adds a single directory to the fsnotify watcher.
func (w *Watcher) addWatch(path string) error {
	if err := w.fsWatcher.Add(path); err != nil {
		if isWatchLimitError(err) {
			w.mu.Lock()
			w.stats.DegradedMode = true
			w.mu.Unlock()
			w.logger.Warn("watch limit reached, entering degraded mode", "path", path)
			return nil
		}
		return err
	}
	return nil
}

// Unwatch removes root and every watch beneath it.
func (w *Watcher) Unwatch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}

	w.mu.Lock()
	delete(w.roots, absRoot)
	w.stats.WatchedPaths = len(w.roots)
	w.mu.Unlock()

	for _, watched := range w.fsWatcher.WatchList() {
		if watched == absRoot || strings.HasPrefix(watched, absRoot+string(filepath.Separator)) {
			_ = w.fsWatcher.Remove(watched)
		}
	}

	return nil
}

// WatchedPaths returns the watched roots.
func (w *Watcher) WatchedPaths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.roots))
	for p := range w.roots {
		paths = append(paths, p)
	}
	return paths
}

// Changes returns the channel of settled changes. It is closed after Stop
// or when the Start context ends.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors reports fsnotify errors. Sends never block; extra errors are
// dropped and counted.
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// Stats returns current watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Start begins processing filesystem events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stats.IsRunning = true
	w.mu.Unlock()

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.processChanges(ctx)

	return nil
}

// Stop stops the watcher and closes the Changes channel.
func (w *Watcher) Stop() error {
	var stopErr error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		wasRunning := w.running
		w.running = false
		w.stats.IsRunning = false
		w.mu.Unlock()

		w.coalescer.Stop()
		close(w.stopCh)
		w.wg.Wait()
		if !wasRunning {
			close(w.changes)
		}

		stopErr = w.fsWatcher.Close()
	})
	return stopErr
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.countError()
			w.logger.Error("fsnotify error", "error", err)
			select {
			case w.errChan <- err:
			default:
			}
		}
	}
}

// handleEvent filters one raw notification and feeds it to the coalescer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	w.stats.EventsReceived++
	w.mu.Unlock()

	if isEditorNoise(event.Name) {
		return
	}

	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.filter.ShouldProcessDir(rel) {
				if err := w.addWatch(event.Name); err != nil {
					w.logger.Warn("failed to add watch for new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !w.filter.ShouldProcessFile(rel) {
		return
	}

	var changeType ChangeType
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		changeType = ChangeDelete
	case event.Has(fsnotify.Create):
		changeType = ChangeCreate
	case event.Has(fsnotify.Write):
		changeType = ChangeModify
	default:
		return
	}

	w.coalescer.Add(Change{
		Path:      event.Name,
		Type:      changeType,
		Timestamp: time.Now(),
	})
}

// relative returns path relative to the watched root containing it.
func (w *Watcher) relative(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return "", false
			}
			return rel, true
		}
	}
	return "", false
}

func (w *Watcher) processChanges(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.changes)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case change, ok := <-w.coalescer.Changes():
			if !ok {
				return
			}
			if !w.settle(&change) {
				continue
			}
			select {
			case w.changes <- change:
				w.mu.Lock()
				w.stats.ChangesEmitted++
				w.mu.Unlock()
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// settle fills in the content hash and drops writes that left the content
// unchanged. It reports whether the change should be emitted.
func (w *Watcher) settle(change *Change) bool {
	if change.Type != ChangeDelete {
		info, err := os.Stat(change.Path)
		switch {
		case os.IsNotExist(err):
			change.Type = ChangeDelete
		case err != nil:
			w.logger.Warn("failed to stat file", "path", change.Path, "error", err)
			return false
		case info.IsDir():
			return false
		}
	}

	if change.Type == ChangeDelete {
		w.mu.Lock()
		delete(w.hashes, change.Path)
		w.mu.Unlock()
		return true
	}

	hash, err := HashFile(change.Path)
	if err != nil {
		w.logger.Warn("failed to compute hash", "path", change.Path, "error", err)
		return false
	}
	change.Hash = hash

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hashes[change.Path] == hash {
		w.stats.Unchanged++
		w.logger.Debug("content unchanged; skipping", "path", change.Path)
		return false
	}
	w.hashes[change.Path] = hash
	return true
}

func (w *Watcher) countError() {
	w.mu.Lock()
	w.stats.Errors++
	w.mu.Unlock()
}

// isEditorNoise returns true if the file is a transient editor artifact.
func isEditorNoise(path string) bool {
	name := filepath.Base(path)

	// Vim swap files
	if strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".swo") || strings.HasSuffix(name, ".swn") {
		return true
	}

	// Vim temporary file during save
	if name == "4913" {
		return true
	}

	// Emacs auto-save files
	if strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#") {
		return true
	}

	// Backup files
	if strings.HasSuffix(name, "~") {
		return true
	}

	return false
}

// isWatchLimitError checks if an error indicates watch limit exhaustion.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "too many open files") ||
		strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "user limit on total number of inotify watches")
}

// HashFile computes the blake3 hash of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := blake3.New(32, nil)
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return "blake3:" + hex.EncodeToString(hash.Sum(nil)), nil
}
