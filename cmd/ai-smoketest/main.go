// Operator tool that exercises the AI providers against their real APIs.
// Useful to verify keys and model names before pointing the server at them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/postloom/postloom/internal/ai"
)

var (
	providersFlag = flag.String("providers", "openai", "Comma-separated provider list or 'all'")
	modeFlag      = flag.String("mode", "generate", "generate|ideas|analyze|optimize|all")
	modelFlag     = flag.String("model", "", "Override model name")
	promptFlag    = flag.String("prompt", defaultPrompt, "Prompt for generate mode")
	platformFlag  = flag.String("platform", "Twitter", "Target platform")
	contentFlag   = flag.String("content", defaultContent, "Content for analyze/optimize modes")
	topicFlag     = flag.String("topic", "product launch", "Topic for ideas mode")
	timeoutFlag   = flag.Duration("timeout", 45*time.Second, "Per-provider timeout")
	maxLenFlag    = flag.Int("max-bytes", 1200, "Maximum bytes of output to print per response (0=unlimited)")
)

var allProviders = []string{"openai", "claude"}

const (
	defaultPrompt  = "Announce that our scheduling dashboard now supports bulk rescheduling."
	defaultContent = "Big news! Our scheduling dashboard just got a major upgrade. Drag, drop, done."
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()
	flag.Parse()

	providers := resolveProviders(*providersFlag)
	if len(providers) == 0 {
		log.Fatal("no providers specified")
	}

	modes, err := parseModes(*modeFlag)
	if err != nil {
		log.Fatalf("invalid mode: %v", err)
	}

	for _, provider := range providers {
		svc := ai.NewService(ai.FactoryConfig{
			Provider:  provider,
			OpenAIKey: os.Getenv("OPENAI_API_KEY"),
			ClaudeKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:     *modelFlag,
		})
		fmt.Printf("=== %s ===\n", provider)
		for _, mode := range modes {
			if err := run(svc, mode); err != nil {
				fmt.Printf("%s FAILED: %v\n", mode, err)
			}
		}
	}
}

func run(svc *ai.Service, mode string) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	var out string
	var err error
	switch mode {
	case "generate":
		out, err = svc.GenerateContent(ctx, *promptFlag, *platformFlag)
	case "ideas":
		var ideas []string
		ideas, err = svc.GenerateIdeas(ctx, *topicFlag, 5)
		out = strings.Join(ideas, "\n")
	case "analyze":
		var s *ai.Sentiment
		s, err = svc.AnalyzeSentiment(ctx, *contentFlag)
		if s != nil {
			out = fmt.Sprintf("%s (%.2f) %s", s.Sentiment, s.Score, s.Feedback)
		}
	case "optimize":
		out, err = svc.OptimizeContent(ctx, *contentFlag, *platformFlag)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s OK (%.1fs)\n%s\n", mode, time.Since(start).Seconds(), truncate(out, *maxLenFlag))
	return nil
}

func resolveProviders(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.EqualFold(raw, "all") {
		return append([]string{}, allProviders...)
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var out []string
	seen := map[string]struct{}{}
	for _, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func parseModes(input string) ([]string, error) {
	mode := strings.ToLower(strings.TrimSpace(input))
	switch mode {
	case "generate", "ideas", "analyze", "optimize":
		return []string{mode}, nil
	case "all":
		return []string{"generate", "ideas", "analyze", "optimize"}, nil
	default:
		return nil, errors.New("expected generate, ideas, analyze, optimize, or all")
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:limit]) + "...(truncated)"
}
