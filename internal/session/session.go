package session

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultUser is the fallback identity used when a request carries no
// valid session token. Effectively single-tenant in development.
const DefaultUser = "demo-user"

const userKey = "uid"

// IssueToken mints a signed session token for a user identity.
func IssueToken(secret []byte, userID string) (string, error) {
	claims := jwt.MapClaims{
		"uid": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies a session token and returns the user identity.
func ParseToken(secret []byte, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	uid, _ := claims["uid"].(string)
	if uid == "" {
		return "", errors.New("missing uid claim")
	}
	return uid, nil
}

// Middleware resolves the request identity from an optional Bearer token
// and falls back to DefaultUser. An invalid token is rejected rather than
// silently downgraded.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")
		if bearer == "" {
			c.Set(userKey, DefaultUser)
			c.Next()
			return
		}
		if !strings.HasPrefix(bearer, "Bearer ") {
			c.AbortWithStatus(401)
			return
		}
		uid, err := ParseToken(secret, bearer[7:])
		if err != nil {
			c.AbortWithStatus(401)
			return
		}
		c.Set(userKey, uid)
		c.Next()
	}
}

// UserID returns the identity resolved by Middleware.
func UserID(c *gin.Context) string {
	if uid := c.GetString(userKey); uid != "" {
		return uid
	}
	return DefaultUser
}
