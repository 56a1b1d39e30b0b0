package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/explainer/explainer.log"

	DefaultSplitMaxPieceSize = 2000
	DefaultSplitOverlap      = 0
	DefaultSplitLength       = "chars"

	DefaultAnnotateProvider  = "anthropic"
	DefaultAnnotateWorkers   = 4
	DefaultAnnotateTimeout   = 60 * time.Second
	DefaultAnnotateRateLimit = 0 // provider default

	DefaultCacheEnabled = true
	DefaultCacheDir     = "~/.config/explainer/cache"

	DefaultOutputFormat = "json"
)

// Default list values.
var (
	DefaultSplitSeparators         = []string{"\n\n"}
	DefaultSplitFallbackSeparators = []string{"\n", " "}
	DefaultWalkExclude             = []string{"**/.git/**", "**/node_modules/**", "**/vendor/**", "**/testdata/**"}
)

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Split: SplitConfig{
			MaxPieceSize:       DefaultSplitMaxPieceSize,
			Overlap:            DefaultSplitOverlap,
			Separators:         append([]string(nil), DefaultSplitSeparators...),
			FallbackSeparators: append([]string(nil), DefaultSplitFallbackSeparators...),
			Length:             DefaultSplitLength,
		},
		Annotate: AnnotateConfig{
			Provider:  DefaultAnnotateProvider,
			Workers:   DefaultAnnotateWorkers,
			Timeout:   DefaultAnnotateTimeout,
			RateLimit: DefaultAnnotateRateLimit,
		},
		Cache: CacheConfig{
			Enabled: DefaultCacheEnabled,
			Dir:     DefaultCacheDir,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Walk: WalkConfig{
			Exclude: append([]string(nil), DefaultWalkExclude...),
		},
	}
}

// setDefaults registers all default configuration values with v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)

	v.SetDefault("extract.language", "")
	v.SetDefault("extract.unit_kinds", []string{})
	v.SetDefault("extract.container_kinds", []string{})
	v.SetDefault("extract.name_kinds", []string{})
	v.SetDefault("extract.strict", false)

	v.SetDefault("split.max_piece_size", DefaultSplitMaxPieceSize)
	v.SetDefault("split.overlap", DefaultSplitOverlap)
	v.SetDefault("split.separators", DefaultSplitSeparators)
	v.SetDefault("split.fallback_separators", DefaultSplitFallbackSeparators)
	v.SetDefault("split.length", DefaultSplitLength)

	v.SetDefault("annotate.provider", DefaultAnnotateProvider)
	v.SetDefault("annotate.model", "")
	v.SetDefault("annotate.api_key_env", "")
	v.SetDefault("annotate.workers", DefaultAnnotateWorkers)
	v.SetDefault("annotate.timeout", DefaultAnnotateTimeout)
	v.SetDefault("annotate.rate_limit", DefaultAnnotateRateLimit)

	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.dir", DefaultCacheDir)

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.dir", "")

	v.SetDefault("walk.exclude", DefaultWalkExclude)
}
