package explain

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leefowlercu/code-explainer/internal/providers"
)

const openaiDefaultModel = "gpt-4o-mini"

// OpenAIProvider implements ExplainProvider using the OpenAI chat API.
type OpenAIProvider struct {
	apiKey          string
	model           string
	baseURL         string
	maxTokens       int
	httpClient      *http.Client
	client          *openai.Client
	rateLimiter     *providers.RateLimiter
	rateLimitConfig *providers.RateLimitConfig
}

// OpenAIOption configures the OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIModel sets the model to use.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithOpenAIAPIKey overrides the OPENAI_API_KEY environment variable.
func WithOpenAIAPIKey(key string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if key != "" {
			p.apiKey = key
		}
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.baseURL = url
	}
}

// WithOpenAIHTTPClient sets the HTTP client to use.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.httpClient = client
	}
}

// WithOpenAIRateLimit sets a custom requests-per-minute limit.
func WithOpenAIRateLimit(requestsPerMinute int) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.rateLimitConfig = &providers.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			BurstSize:         max(1, requestsPerMinute/5),
		}
	}
}

// NewOpenAIProvider creates a new OpenAI explain provider.
func NewOpenAIProvider(opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		model:      openaiDefaultModel,
		maxTokens:  1024,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}

	for _, opt := range opts {
		opt(p)
	}

	cfg := openai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	cfg.HTTPClient = p.httpClient
	p.client = openai.NewClientWithConfig(cfg)
	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())

	return p
}

// Name returns the provider's unique identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Available returns true if the provider is configured and ready.
func (p *OpenAIProvider) Available() bool {
	return p.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *OpenAIProvider) RateLimit() providers.RateLimitConfig {
	if p.rateLimitConfig != nil {
		return *p.rateLimitConfig
	}
	return providers.RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	}
}

// ModelName returns the configured model name.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Explain asks the chat completions endpoint to explain one piece.
func (p *OpenAIProvider) Explain(ctx context.Context, req providers.ExplainRequest) (*providers.ExplainResult, error) {
	if !p.Available() {
		return nil, fmt.Errorf("openai provider not available; OPENAI_API_KEY not set")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed; %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API request failed; %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	text, err := NormalizeResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &providers.ExplainResult{
		Text:         text,
		ProviderName: p.Name(),
		ModelName:    p.model,
		GeneratedAt:  time.Now(),
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}
