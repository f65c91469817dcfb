package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/postloom/postloom/internal/ai"
	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/notify"
	"github.com/postloom/postloom/internal/store"
)

func New(cfg config.Config, st store.Store, rdb *redis.Client, aiSvc *ai.Service, notifier notify.Notifier) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, st, rdb, aiSvc, notifier)
	return g
}
