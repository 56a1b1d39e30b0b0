package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leefowlercu/code-explainer/internal/grammar"
	"github.com/leefowlercu/code-explainer/internal/logging"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// ValidProviders lists recognized explanation providers. "none" disables annotation.
var ValidProviders = []string{"anthropic", "openai", "google", "none"}

// ValidFormats lists recognized output formats.
var ValidFormats = []string{"json", "yaml", "toml", "xml", "markdown", "text"}

var validLengths = map[string]bool{
	"chars":      true,
	"characters": true,
	"tokens":     true,
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		add("log_level", "must be one of: debug, info, warn, error; got %q", cfg.LogLevel)
	}

	// Extract
	if cfg.Extract.Language != "" {
		reg := grammar.DefaultRegistry()
		if reg.Get(cfg.Extract.Language) == nil && reg.GetByExtension(cfg.Extract.Language) == nil {
			add("extract.language", "must be one of: %s; got %q",
				strings.Join(reg.Languages(), ", "), cfg.Extract.Language)
		}
	}

	// Split
	if cfg.Split.MaxPieceSize < 1 {
		add("split.max_piece_size", "must be at least 1, got %d", cfg.Split.MaxPieceSize)
	}
	if cfg.Split.Overlap < 0 {
		add("split.overlap", "must be non-negative, got %d", cfg.Split.Overlap)
	} else if cfg.Split.MaxPieceSize >= 1 && cfg.Split.Overlap >= cfg.Split.MaxPieceSize {
		add("split.overlap", "must be less than split.max_piece_size (%d), got %d",
			cfg.Split.MaxPieceSize, cfg.Split.Overlap)
	}
	if !validLengths[strings.ToLower(cfg.Split.Length)] {
		add("split.length", "must be one of: chars, tokens; got %q", cfg.Split.Length)
	}

	// Annotate
	if !contains(ValidProviders, cfg.Annotate.Provider) {
		add("annotate.provider", "must be one of: %s; got %q",
			strings.Join(ValidProviders, ", "), cfg.Annotate.Provider)
	}
	if cfg.Annotate.Workers < 1 {
		add("annotate.workers", "must be at least 1, got %d", cfg.Annotate.Workers)
	}
	if cfg.Annotate.Timeout < 0 {
		add("annotate.timeout", "must be non-negative, got %s", cfg.Annotate.Timeout)
	}
	if cfg.Annotate.RateLimit < 0 {
		add("annotate.rate_limit", "must be non-negative, got %d", cfg.Annotate.RateLimit)
	}

	// Cache
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		add("cache.dir", "must not be empty when cache is enabled")
	}

	// Output
	if !contains(ValidFormats, cfg.Output.Format) {
		add("output.format", "must be one of: %s; got %q",
			strings.Join(ValidFormats, ", "), cfg.Output.Format)
	}

	// Walk
	for i, pattern := range cfg.Walk.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			add(fmt.Sprintf("walk.exclude[%d]", i), "invalid glob pattern %q", pattern)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
