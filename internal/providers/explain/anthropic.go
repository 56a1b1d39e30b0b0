package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/leefowlercu/code-explainer/internal/providers"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-5-20250929"
)

// AnthropicProvider implements ExplainProvider using Anthropic's Messages API.
type AnthropicProvider struct {
	apiKey          string
	model           string
	url             string
	maxTokens       int
	httpClient      *http.Client
	rateLimiter     *providers.RateLimiter
	rateLimitConfig *providers.RateLimitConfig
}

// AnthropicOption configures the AnthropicProvider.
type AnthropicOption func(*AnthropicProvider)

// WithAnthropicModel sets the model to use.
func WithAnthropicModel(model string) AnthropicOption {
	return func(p *AnthropicProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithAnthropicAPIKey overrides the ANTHROPIC_API_KEY environment variable.
func WithAnthropicAPIKey(key string) AnthropicOption {
	return func(p *AnthropicProvider) {
		if key != "" {
			p.apiKey = key
		}
	}
}

// WithAnthropicURL sets the Messages endpoint.
func WithAnthropicURL(url string) AnthropicOption {
	return func(p *AnthropicProvider) {
		p.url = url
	}
}

// WithAnthropicHTTPClient sets the HTTP client to use.
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(p *AnthropicProvider) {
		p.httpClient = client
	}
}

// WithAnthropicRateLimit sets a custom requests-per-minute limit.
func WithAnthropicRateLimit(requestsPerMinute int) AnthropicOption {
	return func(p *AnthropicProvider) {
		p.rateLimitConfig = &providers.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			BurstSize:         max(1, requestsPerMinute/5),
		}
	}
}

// NewAnthropicProvider creates a new Anthropic explain provider.
func NewAnthropicProvider(opts ...AnthropicOption) *AnthropicProvider {
	p := &AnthropicProvider{
		apiKey:     os.Getenv("ANTHROPIC_API_KEY"),
		model:      anthropicDefaultModel,
		url:        anthropicAPIURL,
		maxTokens:  1024,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())

	return p
}

// Name returns the provider's unique identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Available returns true if the provider is configured and ready.
func (p *AnthropicProvider) Available() bool {
	return p.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *AnthropicProvider) RateLimit() providers.RateLimitConfig {
	if p.rateLimitConfig != nil {
		return *p.rateLimitConfig
	}
	return providers.RateLimitConfig{
		RequestsPerMinute: 50,
		BurstSize:         5,
	}
}

// ModelName returns the configured model name.
func (p *AnthropicProvider) ModelName() string {
	return p.model
}

// Explain asks Claude to explain one piece.
func (p *AnthropicProvider) Explain(ctx context.Context, req providers.ExplainRequest) (*providers.ExplainResult, error) {
	if !p.Available() {
		return nil, fmt.Errorf("anthropic provider not available; ANTHROPIC_API_KEY not set")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed; %w", err)
	}

	requestBody := map[string]any{
		"model":      p.model,
		"max_tokens": p.maxTokens,
		"system":     buildSystemPrompt(),
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": buildUserPrompt(req),
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request; %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request; %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API request failed; %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response; %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response; %w", err)
	}

	var parts []string
	for _, c := range apiResp.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			parts = append(parts, c.Text)
		}
	}

	text, err := NormalizeResponse(strings.Join(parts, "\n\n"))
	if err != nil {
		return nil, err
	}

	return &providers.ExplainResult{
		Text:         text,
		ProviderName: p.Name(),
		ModelName:    p.model,
		GeneratedAt:  time.Now(),
		TokensUsed:   apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
	}, nil
}

// anthropicResponse represents the API response structure.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
