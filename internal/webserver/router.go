package webserver

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/postloom/postloom/internal/ai"
	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/notify"
	"github.com/postloom/postloom/internal/session"
	"github.com/postloom/postloom/internal/store"
)

func attachRoutes(r *gin.Engine, cfg config.Config, st store.Store, rdb *redis.Client, aiSvc *ai.Service, notifier notify.Notifier) {
	origins := []string{"http://localhost:3000"}
	if cfg.ClientURL != "" && cfg.ClientURL != origins[0] {
		origins = append(origins, cfg.ClientURL)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	health := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	r.GET("/health", health)

	secret := []byte(cfg.JWTSecret)
	postsH := NewPosts(st, notifier)
	acctH := NewAccounts(st)
	composeH := NewCompose(aiSvc)
	slackH := NewSlackStatus(cfg)
	authH := NewAuth(secret)

	api := r.Group("/api")
	api.Use(session.Middleware(secret))
	api.GET("/health", health)
	api.POST("/session", authH.Login)

	api.GET("/calendar", postsH.List)
	cal := api.Group("/calendar")
	{
		cal.GET("/posts", postsH.List)
		cal.POST("/posts", postsH.Create)
		cal.GET("/posts/:id", postsH.Get)
		cal.PATCH("/posts/:id", postsH.Update)
		cal.PUT("/posts/:id", postsH.Update) // legacy clients
		cal.DELETE("/posts/:id", postsH.Delete)

		limiter := NewRateLimiter(cfg.AIRateLimit, cfg.AIRateWindow)
		aiRoutes := cal.Group("")
		aiRoutes.Use(RateLimitMiddleware(limiter))
		aiRoutes.POST("/generate", composeH.Generate)
		aiRoutes.POST("/ideas", composeH.Ideas)
		aiRoutes.POST("/analyze", composeH.Analyze)
		aiRoutes.POST("/optimize", composeH.Optimize)
	}

	api.GET("/social-accounts", acctH.List)
	api.GET("/social-accounts/:platform", acctH.Get)
	api.POST("/social-accounts/:platform", acctH.Connect)
	api.DELETE("/social-accounts/:platform", acctH.Disconnect)
	api.POST("/social-accounts/:platform/refresh", acctH.Refresh)

	api.GET("/slack/status", slackH.Status)

	// Connect flow needs redis for state nonces; without it the routes
	// are simply not registered.
	if rdb != nil {
		oauthH := NewOAuth(st, rdb, mockExchanger{}, cfg.OAuthRedirectURI)
		oauth := r.Group("/oauth")
		oauth.Use(session.Middleware(secret))
		oauth.GET("/:platform/connect", oauthH.Start)
		oauth.GET("/:platform/callback", oauthH.Callback)
	}
}
