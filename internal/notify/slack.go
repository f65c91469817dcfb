package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/postloom/postloom/internal/types"
)

// SlackNotifier posts to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

func (s *SlackNotifier) PostCreated(ctx context.Context, post types.Post) error {
	msg := &slack.WebhookMessage{
		Text:   fmt.Sprintf("New %s post scheduled", post.Platform),
		Blocks: postBlocks(post),
	}
	return slack.PostWebhookContext(ctx, s.webhookURL, msg)
}

func postBlocks(post types.Post) *slack.Blocks {
	header := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*New %s post* (status `%s`)", post.Platform, post.Status), false, false),
		nil, nil)
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, post.Content, false, false),
		nil, nil)
	when := slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Scheduled for %s", post.ScheduledTime.Format("Mon, 02 Jan 2006 15:04 MST")), false, false))
	return &slack.Blocks{BlockSet: []slack.Block{header, body, when}}
}
