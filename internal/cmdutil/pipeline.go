package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leefowlercu/code-explainer/internal/annotate"
	"github.com/leefowlercu/code-explainer/internal/cache"
	"github.com/leefowlercu/code-explainer/internal/config"
	"github.com/leefowlercu/code-explainer/internal/grammar"
	"github.com/leefowlercu/code-explainer/internal/metrics"
	"github.com/leefowlercu/code-explainer/internal/pipeline"
	"github.com/leefowlercu/code-explainer/internal/providers/explain"
	"github.com/leefowlercu/code-explainer/internal/split"
	"github.com/leefowlercu/code-explainer/internal/walker"
)

// ProviderNone disables annotation.
const ProviderNone = "none"

// cacheVersion is bumped when the cached explanation format changes.
const cacheVersion = 1

// ErrProviderUnavailable is returned when the configured provider has no
// credentials.
var ErrProviderUnavailable = errors.New("provider is not available")

// Kinds converts the extract settings to grammar kinds. Empty lists fall
// back to the language defaults when merged.
func Kinds(cfg config.ExtractConfig) grammar.Kinds {
	return grammar.Kinds{
		Units:      cfg.UnitKinds,
		Containers: cfg.ContainerKinds,
		Names:      cfg.NameKinds,
	}
}

// SplitOptions converts the split settings to splitter options.
func SplitOptions(cfg config.SplitConfig) (split.Options, error) {
	opts := split.DefaultOptions()
	if cfg.MaxPieceSize > 0 {
		opts.MaxSize = cfg.MaxPieceSize
	}
	opts.Overlap = cfg.Overlap
	if len(cfg.Separators) > 0 {
		opts.Separators = cfg.Separators
	}
	if cfg.FallbackSeparators != nil {
		opts.Fallback = cfg.FallbackSeparators
	}

	length, err := split.LengthByName(cfg.Length)
	if err != nil {
		return split.Options{}, err
	}
	opts.Length = length

	return opts, nil
}

// NewFilter builds the source discovery filter: configured excludes plus
// extensions known to the grammar registry.
func NewFilter(cfg *config.Config) *walker.Filter {
	reg := grammar.DefaultRegistry()
	supports := reg.Supports
	if cfg.Extract.Language != "" {
		// An explicit language accepts only that language's files
		if s, err := reg.Resolve(cfg.Extract.Language, ""); err == nil {
			only := grammar.NewRegistry()
			only.Register(s)
			supports = only.Supports
		}
	}
	return walker.NewFilter(cfg.Walk.Exclude, walker.WithSupported(supports))
}

// NewRunner builds the annotation runner for the configured provider. It
// returns a nil runner and the "none" provider name when annotation is
// disabled.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*annotate.Runner, string, error) {
	name := cfg.Annotate.Provider
	if name == "" || name == ProviderNone {
		return nil, ProviderNone, nil
	}

	p, err := explain.New(explain.Options{
		Provider:  name,
		Model:     cfg.Annotate.Model,
		APIKey:    cfg.Annotate.ResolveAPIKey(),
		RateLimit: cfg.Annotate.RateLimit,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create provider; %w", err)
	}
	if !p.Available() {
		return nil, "", fmt.Errorf("%w: %s (missing API key or configuration)", ErrProviderUnavailable, name)
	}

	annotator := instrument(explain.Annotator(p), p.Name())
	if cfg.Cache.Enabled {
		store, err := cache.NewExplanationCache(cache.CacheConfig{
			BaseDir: config.ExpandPath(cfg.Cache.Dir),
			Version: cacheVersion,
		})
		if err != nil {
			return nil, "", err
		}
		annotator = annotate.NewCachingAnnotator(annotator, countingStore{store}, p.Name(), p.ModelName(), logger)
	}

	runner := annotate.NewRunner(annotator,
		annotate.WithWorkers(cfg.Annotate.Workers),
		annotate.WithTimeout(cfg.Annotate.Timeout),
		annotate.WithLogger(logger))

	return runner, p.Name(), nil
}

// Builder creates one pipeline per language from a single configuration
// and shares the annotation runner between them.
type Builder struct {
	cfg      *config.Config
	registry *grammar.Registry
	runner   *annotate.Runner
	logger   *slog.Logger

	mu        sync.Mutex
	pipelines map[string]*pipeline.Pipeline
}

// NewBuilder creates a Builder. A nil runner builds segment-only pipelines.
func NewBuilder(cfg *config.Config, runner *annotate.Runner, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		cfg:       cfg,
		registry:  grammar.DefaultRegistry(),
		runner:    runner,
		logger:    logger,
		pipelines: make(map[string]*pipeline.Pipeline),
	}
}

// ForPath returns the pipeline for path, chosen by the configured language
// or the file extension.
func (b *Builder) ForPath(path string) (*pipeline.Pipeline, error) {
	strategy, err := b.registry.Resolve(b.cfg.Extract.Language, path)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.pipelines[strategy.Language()]; ok {
		return p, nil
	}

	splitOpts, err := SplitOptions(b.cfg.Split)
	if err != nil {
		return nil, err
	}

	g := grammar.NewTreeSitter(strategy,
		grammar.WithStrict(b.cfg.Extract.Strict),
		grammar.WithLogger(b.logger))

	opts := []pipeline.Option{pipeline.WithLogger(b.logger)}
	if b.runner != nil {
		opts = append(opts, pipeline.WithRunner(b.runner))
	}

	p, err := pipeline.New(g, pipeline.Config{
		Kinds: Kinds(b.cfg.Extract),
		Split: splitOpts,
	}, opts...)
	if err != nil {
		return nil, err
	}

	b.pipelines[strategy.Language()] = p
	return p, nil
}

// instrument records every provider request in the metrics registry.
func instrument(next annotate.Annotator, provider string) annotate.Annotator {
	return annotate.AnnotatorFunc(func(ctx context.Context, ac annotate.Context, piece string) (string, error) {
		start := time.Now()
		text, err := next.Annotate(ctx, ac, piece)
		metrics.RecordProviderRequest(provider, time.Since(start), err)
		return text, err
	})
}

// countingStore records cache hits and misses.
type countingStore struct {
	annotate.Store
}

func (s countingStore) Get(key string) (*cache.Explanation, error) {
	e, err := s.Store.Get(key)
	metrics.RecordCacheAccess(err == nil)
	return e, err
}
