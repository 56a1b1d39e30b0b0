package annotate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leefowlercu/code-explainer/internal/cache"
)

// Store is the subset of the explanation cache used by CachingAnnotator.
type Store interface {
	Get(key string) (*cache.Explanation, error)
	Set(key string, e *cache.Explanation) error
}

// CachingAnnotator serves repeated pieces from a Store and records fresh
// explanations. Failures are never cached.
type CachingAnnotator struct {
	next     Annotator
	store    Store
	provider string
	model    string
	logger   *slog.Logger
}

// NewCachingAnnotator wraps next. provider and model are part of every key.
func NewCachingAnnotator(next Annotator, store Store, provider, model string, logger *slog.Logger) *CachingAnnotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingAnnotator{
		next:     next,
		store:    store,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Annotate implements Annotator.
func (c *CachingAnnotator) Annotate(ctx context.Context, ac Context, piece string) (string, error) {
	key := cache.Key(c.provider, c.model, ac.Language, ac.EnclosingName, ac.UnitName, piece)

	hit, err := c.store.Get(key)
	switch {
	case err == nil:
		c.logger.Debug("explanation cache hit", "unit", ac.UnitName)
		return hit.Text, nil
	case errors.Is(err, cache.ErrCacheMiss), errors.Is(err, cache.ErrVersionMismatch):
	default:
		c.logger.Warn("explanation cache read failed", "error", err)
	}

	text, err := c.next.Annotate(ctx, ac, piece)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(key, &cache.Explanation{
		Text:      text,
		Provider:  c.provider,
		Model:     c.model,
		CreatedAt: time.Now(),
	}); err != nil {
		c.logger.Warn("explanation cache write failed", "error", err)
	}

	return text, nil
}
