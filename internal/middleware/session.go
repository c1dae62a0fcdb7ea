package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reindeer-games/backend/internal/identity"
	"github.com/reindeer-games/backend/internal/models"
)

// SessionCookie is the HTTP-only cookie carrying the access token.
const SessionCookie = "access_token"

// ContextSession is the gin context key holding the resolved *models.Session.
const ContextSession = "session"

// Session returns a middleware that resolves the caller's session from the
// Authorization header or the session cookie. An absent or invalid token
// leaves the session nil; handlers decide whether authentication is required.
func Session(verifier *identity.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token != "" {
			if user, err := verifier.Verify(token); err == nil {
				c.Set(ContextSession, &models.Session{AccessToken: token, User: user})
			}
		}
		c.Next()
	}
}

// SessionFrom returns the resolved session, or nil when unauthenticated.
func SessionFrom(c *gin.Context) *models.Session {
	if v, ok := c.Get(ContextSession); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
