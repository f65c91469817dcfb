package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/settings"
)

type SlackStatus struct {
	cfg config.Config
}

func NewSlackStatus(cfg config.Config) SlackStatus { return SlackStatus{cfg: cfg} }

// Status reports Slack wiring without leaking any credential values.
// Settings rows override environment config at runtime.
func (h SlackStatus) Status(c *gin.Context) {
	webhook := settings.GetOr("slack_webhook_url", h.cfg.SlackWebhookURL)
	token := settings.GetOr("slack_bot_token", h.cfg.SlackBotToken)
	channel := settings.GetOr("slack_channel", h.cfg.SlackChannel)

	// An incoming webhook carries its own channel, so it satisfies both.
	tokenConfigured := token != "" || webhook != ""
	channelConfigured := channel != "" || webhook != ""

	c.JSON(http.StatusOK, gin.H{
		"connected":         tokenConfigured && channelConfigured,
		"channelConfigured": channelConfigured,
		"tokenConfigured":   tokenConfigured,
	})
}
