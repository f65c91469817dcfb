package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const composerSystemPrompt = "You are a social media content assistant. " +
	"Write engaging, platform-appropriate copy. Respond with the content only, no preamble."

// Sentiment is the analysis result for a piece of content.
type Sentiment struct {
	Sentiment string  `json:"sentiment"` // positive | neutral | negative
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback,omitempty"`
}

// Service exposes the content operations on top of a completion provider.
type Service struct {
	provider   Provider
	configured bool
}

func NewService(cfg FactoryConfig) *Service {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = composerSystemPrompt
	}
	return &Service{
		provider:   newProvider(cfg),
		configured: cfg.apiKey() != "",
	}
}

// NewServiceWithProvider wires a custom provider, used by tests.
func NewServiceWithProvider(p Provider) *Service {
	return &Service{provider: p, configured: true}
}

func (s *Service) GenerateContent(ctx context.Context, prompt, platform string) (string, error) {
	if !s.configured {
		return "", ErrNoAPIKey
	}
	full := prompt
	if platform != "" {
		full = fmt.Sprintf("Write a %s post: %s\n\nFollow %s length and tone conventions.",
			platform, prompt, platform)
	}
	return s.provider.Complete(ctx, full, Options{})
}

func (s *Service) GenerateIdeas(ctx context.Context, topic string, count int) ([]string, error) {
	if !s.configured {
		return nil, ErrNoAPIKey
	}
	if count <= 0 {
		count = 5
	}
	prompt := fmt.Sprintf(
		"List %d social media post ideas about: %s\nReturn one idea per line, no numbering.",
		count, topic)
	raw, err := s.provider.Complete(ctx, prompt, Options{})
	if err != nil {
		return nil, err
	}
	return splitIdeas(raw, count), nil
}

func (s *Service) AnalyzeSentiment(ctx context.Context, content string) (*Sentiment, error) {
	if !s.configured {
		return nil, ErrNoAPIKey
	}
	prompt := fmt.Sprintf(
		"Analyze the sentiment of this social media post:\n%s\n\n"+
			`Respond with JSON only: {"sentiment":"positive|neutral|negative","score":0.0,"feedback":"..."}`,
		content)
	raw, err := s.provider.Complete(ctx, prompt, Options{Temperature: 0.1})
	if err != nil {
		return nil, err
	}
	return parseSentiment(raw)
}

func (s *Service) OptimizeContent(ctx context.Context, content, platform string) (string, error) {
	if !s.configured {
		return "", ErrNoAPIKey
	}
	target := "social media"
	if platform != "" {
		target = platform
	}
	prompt := fmt.Sprintf(
		"Rewrite this post to perform better on %s, keeping the meaning:\n%s", target, content)
	return s.provider.Complete(ctx, prompt, Options{})
}

func splitIdeas(raw string, max int) []string {
	var ideas []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" {
			continue
		}
		ideas = append(ideas, line)
		if len(ideas) == max {
			break
		}
	}
	return ideas
}

// parseSentiment tolerates providers wrapping the JSON in code fences or
// surrounding prose.
func parseSentiment(raw string) (*Sentiment, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in sentiment response")
	}
	var out Sentiment
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parse sentiment: %w", err)
	}
	switch out.Sentiment {
	case "positive", "neutral", "negative":
	default:
		out.Sentiment = "neutral"
	}
	return &out, nil
}
