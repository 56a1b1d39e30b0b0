package explain

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/leefowlercu/code-explainer/internal/providers"
)

const googleDefaultModel = "gemini-1.5-flash"

// GoogleProvider implements ExplainProvider using the Gemini API.
type GoogleProvider struct {
	apiKey          string
	model           string
	clientOpts      []option.ClientOption
	rateLimiter     *providers.RateLimiter
	rateLimitConfig *providers.RateLimitConfig

	mu     sync.Mutex
	client *genai.Client
}

// GoogleOption configures the GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithGoogleModel sets the model to use.
func WithGoogleModel(model string) GoogleOption {
	return func(p *GoogleProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithGoogleAPIKey overrides the GOOGLE_API_KEY environment variable.
func WithGoogleAPIKey(key string) GoogleOption {
	return func(p *GoogleProvider) {
		if key != "" {
			p.apiKey = key
		}
	}
}

// WithGoogleClientOptions appends client options such as a custom endpoint.
func WithGoogleClientOptions(opts ...option.ClientOption) GoogleOption {
	return func(p *GoogleProvider) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

// WithGoogleRateLimit sets a custom requests-per-minute limit.
func WithGoogleRateLimit(requestsPerMinute int) GoogleOption {
	return func(p *GoogleProvider) {
		p.rateLimitConfig = &providers.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			BurstSize:         max(1, requestsPerMinute/5),
		}
	}
}

// NewGoogleProvider creates a new Google explain provider. The API client
// is created on first use.
func NewGoogleProvider(opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		apiKey: os.Getenv("GOOGLE_API_KEY"),
		model:  googleDefaultModel,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())

	return p
}

// Name returns the provider's unique identifier.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Available returns true if the provider is configured and ready.
func (p *GoogleProvider) Available() bool {
	return p.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *GoogleProvider) RateLimit() providers.RateLimitConfig {
	if p.rateLimitConfig != nil {
		return *p.rateLimitConfig
	}
	return providers.RateLimitConfig{
		RequestsPerMinute: 15,
		BurstSize:         3,
	}
}

// ModelName returns the configured model name.
func (p *GoogleProvider) ModelName() string {
	return p.model
}

func (p *GoogleProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	opts := append([]option.ClientOption{option.WithAPIKey(p.apiKey)}, p.clientOpts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client; %w", err)
	}
	p.client = client
	return client, nil
}

// Close releases the API client if one was created.
func (p *GoogleProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// Explain asks Gemini to explain one piece.
func (p *GoogleProvider) Explain(ctx context.Context, req providers.ExplainRequest) (*providers.ExplainResult, error) {
	if !p.Available() {
		return nil, fmt.Errorf("google provider not available; GOOGLE_API_KEY not set")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed; %w", err)
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(buildSystemPrompt())}}

	resp, err := model.GenerateContent(ctx, genai.Text(buildUserPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("API request failed; %w", err)
	}

	text, err := NormalizeResponse(responseText(resp))
	if err != nil {
		return nil, err
	}

	result := &providers.ExplainResult{
		Text:         text,
		ProviderName: p.Name(),
		ModelName:    p.model,
		GeneratedAt:  time.Now(),
	}
	if resp.UsageMetadata != nil {
		result.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return result, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
		break
	}
	return strings.Join(parts, "")
}
