package subcommands

import (
	"github.com/leefowlercu/code-explainer/internal/cmdutil"
	"github.com/leefowlercu/code-explainer/internal/config"
	"github.com/leefowlercu/code-explainer/internal/providers"
	"github.com/leefowlercu/code-explainer/internal/providers/explain"
)

// newRegistry registers every built-in provider. The configured provider
// gets the configured model, key and rate limit and becomes the default.
func newRegistry(cfg *config.Config) (*providers.Registry, error) {
	opts := explain.Options{
		Model:     cfg.Annotate.Model,
		APIKey:    cfg.Annotate.ResolveAPIKey(),
		RateLimit: cfg.Annotate.RateLimit,
	}
	if cfg.Annotate.Provider != cmdutil.ProviderNone {
		opts.Provider = cfg.Annotate.Provider
	}
	return explain.NewRegistry(opts)
}
