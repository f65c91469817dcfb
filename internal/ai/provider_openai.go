package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type openAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	defaults   Options
}

func newOpenAIProvider(cfg FactoryConfig) *openAIProvider {
	return &openAIProvider{
		apiKey:     cfg.OpenAIKey,
		baseURL:    valueOrDefault(cfg.BaseURL, "https://api.openai.com/v1"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		defaults: Options{
			Model:        valueOrDefault(cfg.Model, "gpt-4o-mini"),
			Temperature:  orFloat(cfg.Temperature, 0.7),
			MaxTokens:    orInt(cfg.MaxTokens, 1000),
			SystemPrompt: cfg.SystemPrompt,
		},
	}
}

func (p *openAIProvider) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	merged := p.merge(opts)
	messages := []map[string]string{}
	if merged.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": merged.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	reqBody := map[string]interface{}{
		"model":       merged.Model,
		"messages":    messages,
		"temperature": merged.Temperature,
		"max_tokens":  merged.MaxTokens,
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("openAI: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openAI API error: %s", string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return result.Choices[0].Message.Content, nil
}

func (p *openAIProvider) merge(opts Options) Options {
	out := p.defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxTokens != 0 {
		out.MaxTokens = opts.MaxTokens
	}
	if opts.SystemPrompt != "" {
		out.SystemPrompt = opts.SystemPrompt
	}
	return out
}
