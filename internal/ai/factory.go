package ai

import (
	"context"
	"errors"
)

// Returned when the generation credential is absent; handlers map this to
// a 500 with code "api_key_missing".
var ErrNoAPIKey = errors.New("ai: api key missing")

// Returned on provider throttling; handlers map this to a 429 with code
// "rate_limit_exceeded".
var ErrRateLimited = errors.New("ai: rate limit exceeded")

// Options override per-call what the factory configured as defaults.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Provider is a single text-in/text-out completion backend.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Factory inputs to construct a provider without leaking provider details.
type FactoryConfig struct {
	Provider  string // "openai" or "claude"
	OpenAIKey string
	ClaudeKey string
	BaseURL   string // override for tests
	// Defaults
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

func newProvider(cfg FactoryConfig) Provider {
	switch cfg.Provider {
	case "claude":
		return newClaudeProvider(cfg)
	default:
		return newOpenAIProvider(cfg)
	}
}

func (c FactoryConfig) apiKey() string {
	if c.Provider == "claude" {
		return c.ClaudeKey
	}
	return c.OpenAIKey
}

func valueOrDefault(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

func orInt(v, d int) int {
	if v != 0 {
		return v
	}
	return d
}

func orFloat(v, d float64) float64 {
	if v != 0 {
		return v
	}
	return d
}
