package webserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/postloom/postloom/internal/session"
	"github.com/postloom/postloom/internal/store"
	"github.com/postloom/postloom/internal/types"
)

// Token is what a provider exchange yields.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds
	Username     string
	ProfileData  string
}

// TokenExchanger trades an authorization code for tokens. The real
// provider call lives behind this boundary.
type TokenExchanger interface {
	Exchange(ctx context.Context, platform, code string) (Token, error)
}

// mockExchanger stands in when no provider integration is configured.
type mockExchanger struct{}

func (mockExchanger) Exchange(_ context.Context, platform, code string) (Token, error) {
	if code == "" {
		return Token{}, fmt.Errorf("empty authorization code")
	}
	return Token{
		AccessToken:  "tok_" + uuid.NewString(),
		RefreshToken: "ref_" + uuid.NewString(),
		ExpiresIn:    3600,
		Username:     "demo_" + strings.ToLower(platform),
	}, nil
}

var authorizeEndpoints = map[string]string{
	"twitter":   "https://twitter.com/i/oauth2/authorize",
	"linkedin":  "https://www.linkedin.com/oauth/v2/authorization",
	"facebook":  "https://www.facebook.com/v18.0/dialog/oauth",
	"instagram": "https://api.instagram.com/oauth/authorize",
}

type OAuth struct {
	st          store.Store
	rdb         *redis.Client
	exchanger   TokenExchanger
	redirectURI string
}

func NewOAuth(st store.Store, rdb *redis.Client, ex TokenExchanger, redirectURI string) OAuth {
	return OAuth{st: st, rdb: rdb, exchanger: ex, redirectURI: redirectURI}
}

// Start hands the client the provider authorization URL plus a one-time
// state nonce stored in redis.
func (h OAuth) Start(c *gin.Context) {
	platform := c.Param("platform")
	endpoint, ok := authorizeEndpoints[strings.ToLower(platform)]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform " + platform})
		return
	}
	clientID := os.Getenv(strings.ToUpper(platform) + "_CLIENT_ID")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth not configured for " + platform})
		return
	}

	state := uuid.NewString()
	if err := session.SetOAuthState(c, h.rdb, state, platform); err != nil {
		log.Printf("oauth: store state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start connect flow"})
		return
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", clientID)
	q.Set("redirect_uri", h.redirectURI)
	q.Set("state", state)

	c.JSON(http.StatusOK, gin.H{
		"url":   endpoint + "?" + q.Encode(),
		"state": state,
	})
}

// Callback consumes the state nonce, exchanges the code and upserts the
// account so reconnects overwrite the previous tokens.
func (h OAuth) Callback(c *gin.Context) {
	platform := c.Param("platform")
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code"})
		return
	}

	issuedFor, err := session.TakeOAuthState(c, h.rdb, state)
	if err != nil || !strings.EqualFold(issuedFor, platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired state"})
		return
	}

	tok, err := h.exchanger.Exchange(c, platform, code)
	if err != nil {
		log.Printf("oauth: exchange for %s: %v", platform, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "token exchange failed"})
		return
	}

	expiry := time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second)
	acct, err := h.st.UpsertSocialAccount(c, &types.SocialAccount{
		UserID:       session.UserID(c),
		Platform:     platform,
		Username:     tok.Username,
		AccessToken:  tok.AccessToken,
		RefreshToken: &tok.RefreshToken,
		TokenExpiry:  &expiry,
		Connected:    true,
		ConnectedAt:  time.Now().UTC(),
		ProfileData:  tok.ProfileData,
	})
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, acct)
}
