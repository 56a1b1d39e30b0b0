package config

import (
	"os"
	"time"
)

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel string         `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string         `yaml:"log_file" mapstructure:"log_file"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Split    SplitConfig    `yaml:"split" mapstructure:"split"`
	Annotate AnnotateConfig `yaml:"annotate" mapstructure:"annotate"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Walk     WalkConfig     `yaml:"walk" mapstructure:"walk"`
}

// ExtractConfig selects the grammar and the node kinds treated as units,
// containers and names. Empty kind lists use the language defaults.
type ExtractConfig struct {
	Language       string   `yaml:"language" mapstructure:"language"`
	UnitKinds      []string `yaml:"unit_kinds,flow" mapstructure:"unit_kinds"`
	ContainerKinds []string `yaml:"container_kinds,flow" mapstructure:"container_kinds"`
	NameKinds      []string `yaml:"name_kinds,flow" mapstructure:"name_kinds"`
	Strict         bool     `yaml:"strict" mapstructure:"strict"`
}

// SplitConfig holds piece splitting configuration.
type SplitConfig struct {
	MaxPieceSize       int      `yaml:"max_piece_size" mapstructure:"max_piece_size"`
	Overlap            int      `yaml:"overlap" mapstructure:"overlap"`
	Separators         []string `yaml:"separators" mapstructure:"separators"`
	FallbackSeparators []string `yaml:"fallback_separators" mapstructure:"fallback_separators"`
	Length             string   `yaml:"length" mapstructure:"length"`
}

// AnnotateConfig holds explanation provider configuration.
type AnnotateConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"`
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    *string       `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	Workers   int           `yaml:"workers" mapstructure:"workers"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimit int           `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ResolveAPIKey returns the API key from config or falls back to the
// configured environment variable. An empty result lets the provider read
// its own default variable.
func (c *AnnotateConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// CacheConfig holds explanation cache configuration.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig holds result document configuration. An empty Dir writes
// to stdout.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// WalkConfig holds source discovery configuration.
type WalkConfig struct {
	Exclude []string `yaml:"exclude,flow" mapstructure:"exclude"`
}
