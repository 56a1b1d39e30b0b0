// Package explain provides language-model explain providers and adapts
// them to the annotation sink contract.
package explain

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/leefowlercu/code-explainer/internal/annotate"
	"github.com/leefowlercu/code-explainer/internal/providers"
)

// ErrUnknownProvider is returned by New for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown provider")

// Options selects and configures a provider.
type Options struct {
	Provider  string
	Model     string
	APIKey    string
	APIKeyEnv string
	RateLimit int
}

// New builds the named provider.
func New(opts Options) (providers.ExplainProvider, error) {
	key := opts.APIKey
	if key == "" && opts.APIKeyEnv != "" {
		key = os.Getenv(opts.APIKeyEnv)
	}

	switch opts.Provider {
	case "anthropic":
		o := []AnthropicOption{WithAnthropicModel(opts.Model), WithAnthropicAPIKey(key)}
		if opts.RateLimit > 0 {
			o = append(o, WithAnthropicRateLimit(opts.RateLimit))
		}
		return NewAnthropicProvider(o...), nil
	case "openai":
		o := []OpenAIOption{WithOpenAIModel(opts.Model), WithOpenAIAPIKey(key)}
		if opts.RateLimit > 0 {
			o = append(o, WithOpenAIRateLimit(opts.RateLimit))
		}
		return NewOpenAIProvider(o...), nil
	case "google":
		o := []GoogleOption{WithGoogleModel(opts.Model), WithGoogleAPIKey(key)}
		if opts.RateLimit > 0 {
			o = append(o, WithGoogleRateLimit(opts.RateLimit))
		}
		return NewGoogleProvider(o...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

// NewRegistry registers every built-in provider configured from opts and
// makes opts.Provider the default when it is known.
func NewRegistry(opts Options) (*providers.Registry, error) {
	reg := providers.NewRegistry()
	for _, name := range []string{"anthropic", "openai", "google"} {
		o := opts
		o.Provider = name
		if name != opts.Provider {
			// Keys and models are provider specific
			o.Model, o.APIKey, o.APIKeyEnv = "", "", ""
		}
		p, err := New(o)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register provider %s; %w", name, err)
		}
	}

	if opts.Provider != "" {
		if err := reg.SetDefault(opts.Provider); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
		}
	}
	return reg, nil
}

// Annotator adapts an ExplainProvider to annotate.Annotator.
func Annotator(p providers.ExplainProvider) annotate.Annotator {
	return annotate.AnnotatorFunc(func(ctx context.Context, c annotate.Context, piece string) (string, error) {
		res, err := p.Explain(ctx, providers.ExplainRequest{
			Language:      c.Language,
			EnclosingName: c.EnclosingName,
			UnitName:      c.UnitName,
			Piece:         piece,
		})
		if err != nil {
			return "", err
		}
		return res.Text, nil
	})
}
