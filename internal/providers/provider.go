package providers

import (
	"context"
	"time"
)

// Provider is the base interface for all explanation providers.
type Provider interface {
	// Name returns the provider's unique identifier.
	Name() string

	// Available returns true if the provider is configured and ready.
	Available() bool

	// RateLimit returns the rate limit configuration for this provider.
	RateLimit() RateLimitConfig
}

// RateLimitConfig defines rate limiting parameters for a provider.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// ExplainRequest is one piece of a code unit to explain.
type ExplainRequest struct {
	// Language is the source language of the piece.
	Language string

	// EnclosingName is the name of the container declaring the unit.
	EnclosingName string

	// UnitName is the name of the method or function.
	UnitName string

	// Piece is the code text to explain.
	Piece string
}

// ExplainResult is a provider's explanation of a piece.
type ExplainResult struct {
	// Text is the normalized explanation.
	Text string `json:"text"`

	// ProviderName is the name of the provider that generated this result.
	ProviderName string `json:"provider_name"`

	// ModelName is the specific model used.
	ModelName string `json:"model_name"`

	// GeneratedAt is when the explanation was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// TokensUsed is the number of tokens consumed.
	TokensUsed int `json:"tokens_used"`
}

// ExplainProvider explains code pieces using a language model.
type ExplainProvider interface {
	Provider

	// Explain returns an explanation for the request's piece.
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResult, error)

	// ModelName returns the model identifier used by this provider.
	ModelName() string
}
