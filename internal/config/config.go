package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// stateMu guards configFilePath and initialized
	stateMu sync.RWMutex

	// configFilePath stores the path to the loaded config file
	configFilePath string

	// initialized is set once Init has completed
	initialized bool
)

// configure applies the shared file, env and default settings to v.
func configure(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
}

// Init initializes the global configuration.
// It searches for configuration files in priority order:
//  1. Directory specified by EXPLAINER_CONFIG_DIR environment variable
//  2. ~/.config/explainer/
//  3. Current working directory (.)
//
// If no config file is found, defaults are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init() error {
	v := viper.GetViper()
	configure(v)
	for _, p := range searchPaths() {
		v.AddConfigPath(p)
	}

	path := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config; %w", err)
		}
	} else {
		path = v.ConfigFileUsed()
		slog.Debug("config initialized", "file", path)
	}

	stateMu.Lock()
	configFilePath = path
	initialized = true
	stateMu.Unlock()

	return nil
}

// Get returns the typed global configuration, or nil before Init.
// Values that fail to decode fall back to nil as well; use Load for errors.
func Get() *Config {
	stateMu.RLock()
	ok := initialized
	stateMu.RUnlock()
	if !ok {
		return nil
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		slog.Error("failed to decode config", "error", err)
		return nil
	}
	return cfg
}

// MustGet returns the typed global configuration and panics before Init.
func MustGet() *Config {
	cfg := Get()
	if cfg == nil {
		panic("config: MustGet called before Init")
	}
	return cfg
}

// ConfigFilePath returns the path to the loaded config file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	viper.Reset()
	stateMu.Lock()
	configFilePath = ""
	initialized = false
	stateMu.Unlock()
}

// GetString returns the string value for the given key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns the boolean value for the given key.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// SetDefault sets a default value for the given key.
func SetDefault(key string, value any) {
	viper.SetDefault(key, value)
}

// Set sets a value for the given key, overriding defaults and config file values.
func Set(key string, value any) {
	viper.Set(key, value)
}

// BindFlag makes a command-line flag override key when the flag is set.
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("failed to bind flag for %s; flag not defined", key)
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag for %s; %w", key, err)
	}
	return nil
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
func GetPath(key string) string {
	return expandHome(viper.GetString(key))
}

// ExpandPath expands a leading ~ in path.
func ExpandPath(path string) string {
	return expandHome(path)
}

// expandHome expands a leading ~ in path to the user's home directory.
// Only expands "~" alone or "~/..." patterns. Patterns like "~user" are not expanded.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home := resolveHomeDir()
	if home == "" {
		return path
	}

	if len(path) == 1 {
		return home
	}

	return filepath.Join(home, path[2:])
}

// GetConfigPath returns the loaded config file path. Without one it returns
// the first searched location: $EXPLAINER_CONFIG_DIR/config.yaml, else the
// default path.
func GetConfigPath() string {
	if p := ConfigFilePath(); p != "" {
		return p
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return DefaultConfigPath()
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir := ConfigDir()
	if dir == "" {
		return fmt.Errorf("failed to resolve config directory; home directory unknown")
	}
	return os.MkdirAll(dir, 0755)
}

// GetAllSettings returns all configuration settings as a map.
func GetAllSettings() map[string]any {
	return viper.AllSettings()
}

// Reload re-reads the loaded config file and validates it against a fresh
// viper instance before applying it. On failure, the previous configuration
// is retained.
func Reload() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		return fmt.Errorf("failed to reload config; no config file loaded")
	}

	if _, err := LoadFromPath(path); err != nil {
		slog.Error("config reload failed; retaining previous values", "error", err)
		return fmt.Errorf("failed to reload config; %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		slog.Error("config reload failed; retaining previous values", "error", err)
		return fmt.Errorf("failed to reload config; %w", err)
	}

	slog.Info("config reloaded", "file", path)
	return nil
}
