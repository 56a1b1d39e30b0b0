package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const fileHeader = `# explainer configuration
# Generated: %s
#
# Command-line flags override these values, and EXPLAINER_* environment
# variables (e.g. EXPLAINER_SPLIT_MAX_PIECE_SIZE) override the file.

`

// Write stores cfg as YAML at path with 0600 permissions, creating the
// directory with 0700. The file is replaced atomically.
func Write(cfg *Config, path string) error {
	path = expandHome(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s; %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config; %w", err)
	}

	content := append([]byte(fmt.Sprintf(fileHeader, time.Now().Format(time.RFC3339))), data...)

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file; %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config file %s; %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file %s; %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("failed to set config permissions; %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config file %s; %w", path, err)
	}

	return nil
}
