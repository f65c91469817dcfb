package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postloom/postloom/internal/session"
)

type Auth struct {
	secret []byte
}

func NewAuth(secret []byte) Auth { return Auth{secret: secret} }

// Login issues a session token for a username. There is no password
// check; requests without a token fall back to the demo identity anyway,
// this just lets clients scope their data to a name.
func (h Auth) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=1,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := session.IssueToken(h.secret, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
