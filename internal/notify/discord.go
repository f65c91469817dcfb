package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/postloom/postloom/internal/types"
)

// DiscordNotifier sends an embed to a fixed channel. Messages go over the
// REST API, no gateway session needed.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*DiscordNotifier, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{session: s, channelID: channelID}, nil
}

func (d *DiscordNotifier) PostCreated(ctx context.Context, post types.Post) error {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("New %s post", post.Platform),
		Description: post.Content,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: post.Status, Inline: true},
			{Name: "Scheduled", Value: post.ScheduledTime.Format("Mon, 02 Jan 2006 15:04 MST"), Inline: true},
		},
	}
	_, err := d.session.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx))
	return err
}
