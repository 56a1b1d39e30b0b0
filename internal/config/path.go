package config

import (
	"os"
	"path/filepath"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "EXPLAINER"

// ConfigDirEnv names the environment variable that overrides the config
// search directory.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns the default config directory path.
func ConfigDir() string {
	home := resolveHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "explainer")
}

// resolveHomeDir prefers $HOME so tests can redirect it.
func resolveHomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// searchPaths lists config directories in priority order.
func searchPaths() []string {
	var paths []string
	if envPath := os.Getenv(ConfigDirEnv); envPath != "" {
		paths = append(paths, envPath)
	}
	if dir := ConfigDir(); dir != "" {
		paths = append(paths, dir)
	}
	return append(paths, ".")
}

// ConfigExistsAt returns true if a config file exists at the specified path.
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(expandHome(path))
	return err == nil
}
