// Package notify delivers best-effort chat notifications when a post is
// created in a ready-to-go state. Failures are logged by the caller and
// never affect the request that triggered them.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/postloom/postloom/internal/types"
)

type Notifier interface {
	PostCreated(ctx context.Context, post types.Post) error
}

type Config struct {
	SlackWebhookURL  string
	DiscordToken     string
	DiscordChannelID string
}

// New picks the configured channel: Slack webhook first, then Discord,
// otherwise a no-op.
func New(cfg Config) Notifier {
	if cfg.SlackWebhookURL != "" {
		return NewSlack(cfg.SlackWebhookURL)
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		n, err := NewDiscord(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			log.Printf("notify: discord disabled: %v", err)
			return Nop{}
		}
		return n
	}
	return Nop{}
}

// Dispatch runs the notification in the background with a bounded
// lifetime. The create that triggered it is already committed.
func Dispatch(n Notifier, post types.Post) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.PostCreated(ctx, post); err != nil {
			log.Printf("notify: post %d: %v", post.ID, err)
		}
	}()
}

type Nop struct{}

func (Nop) PostCreated(context.Context, types.Post) error { return nil }
