package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation controls log file rotation.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultRotation is used unless WithRotation overrides it.
var DefaultRotation = Rotation{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28}

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler  *SwappableHandler
	logger   *slog.Logger
	stderr   io.Writer
	rotation Rotation
	logFile  *lumberjack.Logger
	level    *slog.LevelVar
	mu       sync.Mutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithWriter replaces stderr as the console destination.
func WithWriter(w io.Writer) ManagerOption {
	return func(m *Manager) {
		m.stderr = w
	}
}

// WithRotation sets the log file rotation policy.
func WithRotation(r Rotation) ManagerOption {
	return func(m *Manager) {
		m.rotation = r
	}
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes text to stderr only.
// Call Upgrade() after config is available to enable file logging.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		stderr:   os.Stderr,
		rotation: DefaultRotation,
		level:    new(slog.LevelVar),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.level.Set(DefaultLevel)

	m.handler = NewSwappableHandler(slog.NewTextHandler(m.stderr, &slog.HandlerOptions{Level: m.level}))
	m.logger = slog.New(m.handler)

	return m
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade sets the level and, when logFilePath is not empty, adds a
// rotating JSON file next to the stderr text output. The file is created
// eagerly so an unusable path fails here rather than on first write.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level.Set(level)
	opts := &slog.HandlerOptions{Level: m.level}

	if logFilePath == "" {
		m.handler.Swap(slog.NewTextHandler(m.stderr, opts))
		return m.closeFile()
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	probe, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = probe.Close()

	_ = m.closeFile()
	m.logFile = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    m.rotation.MaxSizeMB,
		MaxBackups: m.rotation.MaxBackups,
		MaxAge:     m.rotation.MaxAgeDays,
	}

	m.handler.Swap(slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, opts),
		slog.NewJSONHandler(m.logFile, opts),
	))

	return nil
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Level returns the current log level.
func (m *Manager) Level() slog.Level {
	return m.level.Level()
}

// Close closes the log file, if any. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closeFile()
}

func (m *Manager) closeFile() error {
	if m.logFile == nil {
		return nil
	}
	err := m.logFile.Close()
	m.logFile = nil
	return err
}
