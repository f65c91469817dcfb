package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/postloom/postloom/internal/ai"
	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/notify"
	"github.com/postloom/postloom/internal/session"
	"github.com/postloom/postloom/internal/settings"
	"github.com/postloom/postloom/internal/store"
	"github.com/postloom/postloom/internal/webserver"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	st, err := store.Open(store.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		Path:   cfg.SQLitePath,
	})
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initCtx, cancelInit := context.WithTimeout(ctx, 30*time.Second)
	if err := st.Init(initCtx); err != nil {
		cancelInit()
		log.Fatalf("store init: %v", err)
	}
	cancelInit()
	log.Printf("Using %s database", cfg.DBDriver)

	if err := settings.Load(ctx, st); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = session.OpenRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Printf("REDIS_URL not set, OAuth connect flow disabled")
	}

	notifier := notify.New(notify.Config{
		SlackWebhookURL:  settings.GetOr("slack_webhook_url", cfg.SlackWebhookURL),
		DiscordToken:     settings.GetOr("discord_token", cfg.DiscordToken),
		DiscordChannelID: settings.GetOr("discord_channel_id", cfg.DiscordChannelID),
	})

	aiSvc := ai.NewService(ai.FactoryConfig{
		Provider:  cfg.AIProvider,
		OpenAIKey: cfg.OpenAIKey,
		ClaudeKey: cfg.ClaudeKey,
	})

	router := webserver.New(cfg, st, rdb, aiSvc, notifier)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("Postloom API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
