package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/postloom/postloom/internal/session"
	"github.com/postloom/postloom/internal/store"
	"github.com/postloom/postloom/internal/types"
)

type Accounts struct {
	st store.Store
}

func NewAccounts(st store.Store) Accounts { return Accounts{st: st} }

func (h Accounts) List(c *gin.Context) {
	accts, err := h.st.FindAllSocialAccounts(c, session.UserID(c))
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	if accts == nil {
		accts = []types.SocialAccount{}
	}
	c.JSON(http.StatusOK, accts)
}

func (h Accounts) Get(c *gin.Context) {
	acct, err := h.st.FindSocialAccountByPlatform(c, session.UserID(c), c.Param("platform"))
	if err != nil {
		respondStoreError(c, err, "Account not found")
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Connect upserts the (user, platform) row, so a reconnect after a
// soft-disconnect reuses the same identity.
func (h Accounts) Connect(c *gin.Context) {
	var req struct {
		Username     string     `json:"username" binding:"required"`
		AccessToken  string     `json:"accessToken" binding:"required"`
		RefreshToken *string    `json:"refreshToken"`
		TokenExpiry  *time.Time `json:"tokenExpiry"`
		ProfileData  string     `json:"profileData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, err := h.st.UpsertSocialAccount(c, &types.SocialAccount{
		UserID:       session.UserID(c),
		Platform:     c.Param("platform"),
		Username:     req.Username,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenExpiry:  req.TokenExpiry,
		Connected:    true,
		ConnectedAt:  time.Now().UTC(),
		ProfileData:  req.ProfileData,
	})
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Disconnect flips connected off but keeps the row.
func (h Accounts) Disconnect(c *gin.Context) {
	connected := false
	_, err := h.st.UpdateSocialAccount(c, session.UserID(c), c.Param("platform"),
		store.AccountUpdate{Connected: &connected})
	if err != nil {
		respondStoreError(c, err, "Account not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Refresh rotates the access token. The provider exchange itself is out
// of scope; a fresh opaque token with a one hour expiry stands in.
func (h Accounts) Refresh(c *gin.Context) {
	userID := session.UserID(c)
	platform := c.Param("platform")

	acct, err := h.st.FindSocialAccountByPlatform(c, userID, platform)
	if err != nil || acct.RefreshToken == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found or no refresh token available"})
		return
	}

	newToken := "refreshed_" + uuid.NewString()
	expiry := time.Now().UTC().Add(time.Hour)
	if _, err := h.st.UpdateSocialAccount(c, userID, platform, store.AccountUpdate{
		AccessToken: &newToken,
		TokenExpiry: &expiry,
	}); err != nil {
		respondStoreError(c, err, "Account not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": newToken,
		"tokenExpiry": expiry,
	})
}
