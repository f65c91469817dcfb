package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	ClientURL string
	JWTSecret string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	AIProvider string
	OpenAIKey  string
	ClaudeKey  string

	SlackWebhookURL string
	SlackBotToken   string
	SlackChannel    string

	DiscordToken     string
	DiscordChannelID string

	OAuthRedirectURI string

	AIRateLimit  int
	AIRateWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port:      getenv("PORT", "3001"),
		ClientURL: getenv("CLIENT_URL", "http://localhost:3000"),
		JWTSecret: getenv("SESSION_SECRET", "social-media-calendar-secret"),

		DBDriver:    os.Getenv("DB_DRIVER"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "local.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		AIProvider: getenv("AI_PROVIDER", "openai"),
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),
		ClaudeKey:  os.Getenv("ANTHROPIC_API_KEY"),

		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		SlackBotToken:   os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:    os.Getenv("SLACK_CHANNEL"),

		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		OAuthRedirectURI: getenv("OAUTH_REDIRECT_URI", "http://localhost:3001/oauth/callback"),

		AIRateLimit:  getenvInt("AI_RATE_LIMIT", 10),
		AIRateWindow: time.Duration(getenvInt("AI_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	// Backend selected once at start: DATABASE_URL implies postgres,
	// otherwise the embedded sqlite file.
	if cfg.DBDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.DBDriver = "postgres"
		} else {
			cfg.DBDriver = "sqlite"
		}
	}

	warnMissing(cfg)
	return cfg
}

func warnMissing(cfg Config) {
	if os.Getenv("SESSION_SECRET") == "" {
		log.Printf("SESSION_SECRET not set, using development default. DO NOT use in production")
	}
	for _, platform := range []string{"TWITTER", "LINKEDIN", "FACEBOOK", "INSTAGRAM"} {
		if os.Getenv(platform+"_CLIENT_ID") == "" || os.Getenv(platform+"_CLIENT_SECRET") == "" {
			log.Printf("Missing OAuth credentials for %s, connect flow disabled for this platform", platform)
		}
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using %d", key, v, def)
	}
	return def
}
