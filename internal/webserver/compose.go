package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postloom/postloom/internal/ai"
)

type Compose struct {
	svc *ai.Service
}

func NewCompose(svc *ai.Service) Compose { return Compose{svc: svc} }

func (h Compose) Generate(c *gin.Context) {
	var req struct {
		Prompt   string `json:"prompt" binding:"required"`
		Platform string `json:"platform"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content, err := h.svc.GenerateContent(c, req.Prompt, req.Platform)
	if err != nil {
		respondAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (h Compose) Ideas(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" binding:"required"`
		Count int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ideas, err := h.svc.GenerateIdeas(c, req.Topic, req.Count)
	if err != nil {
		respondAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas})
}

func (h Compose) Analyze(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.AnalyzeSentiment(c, req.Content)
	if err != nil {
		respondAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h Compose) Optimize(c *gin.Context) {
	var req struct {
		Content  string `json:"content" binding:"required"`
		Platform string `json:"platform"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content, err := h.svc.OptimizeContent(c, req.Content, req.Platform)
	if err != nil {
		respondAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func respondAIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ai.ErrNoAPIKey):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "AI provider is not configured",
			"code":  "api_key_missing",
		})
	case errors.Is(err, ai.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "AI provider rate limit exceeded",
			"code":  "rate_limit_exceeded",
		})
	default:
		log.Printf("ai: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "content generation failed",
			"code":  "generation_failed",
		})
	}
}
