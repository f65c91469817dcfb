package webserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/postloom/postloom/internal/notify"
	"github.com/postloom/postloom/internal/session"
	"github.com/postloom/postloom/internal/store"
	"github.com/postloom/postloom/internal/types"
)

type Posts struct {
	st        store.Store
	notifier  notify.Notifier
	sanitizer *bluemonday.Policy
}

func NewPosts(st store.Store, notifier notify.Notifier) Posts {
	return Posts{
		st:        st,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (h Posts) List(c *gin.Context) {
	posts, err := h.st.FindAllPosts(c, session.UserID(c))
	if err != nil {
		respondStoreError(c, err, "posts not found")
		return
	}
	if posts == nil {
		posts = []types.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

func (h Posts) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	post, err := h.st.FindPostByID(c, id)
	if err != nil {
		respondStoreError(c, err, "Post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h Posts) Create(c *gin.Context) {
	var req struct {
		Platform      string    `json:"platform" binding:"required"`
		Content       string    `json:"content" binding:"required"`
		ScheduledTime time.Time `json:"scheduledTime" binding:"required"`
		Status        string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "detail": err.Error()})
		return
	}
	if req.Status != "" && !types.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + req.Status, "field": "status"})
		return
	}

	userID := session.UserID(c)

	// A post must reference a platform the user has connected.
	acct, err := h.st.FindSocialAccountByPlatform(c, userID, req.Platform)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondStoreError(c, err, "")
		return
	}
	if acct == nil || !acct.Connected {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("No connected %s account found", req.Platform),
		})
		return
	}

	post := types.Post{
		UserID:        userID,
		Platform:      req.Platform,
		Content:       h.sanitizer.Sanitize(req.Content),
		ScheduledTime: req.ScheduledTime,
		Status:        req.Status,
	}
	if err := h.st.CreatePost(c, &post); err != nil {
		respondStoreError(c, err, "")
		return
	}

	// Best effort; the create above is authoritative.
	if post.Status == types.StatusScheduled || post.Status == types.StatusReady {
		notify.Dispatch(h.notifier, post)
	}

	c.JSON(http.StatusCreated, post)
}

func (h Posts) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	var req struct {
		Platform      *string    `json:"platform"`
		Content       *string    `json:"content"`
		ScheduledTime *time.Time `json:"scheduledTime"`
		Status        *string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Content != nil {
		clean := h.sanitizer.Sanitize(*req.Content)
		req.Content = &clean
	}

	post, err := h.st.UpdatePost(c, id, store.PostUpdate{
		Platform:      req.Platform,
		Content:       req.Content,
		ScheduledTime: req.ScheduledTime,
		Status:        req.Status,
	})
	if err != nil {
		respondStoreError(c, err, "Post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h Posts) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	if err := h.st.DeletePost(c, id); err != nil {
		respondStoreError(c, err, "Post not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
