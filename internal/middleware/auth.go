package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/logger"
)

const (
	SessionCookie = "session-token"
	sessionKey    = "session"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid session token. The token is taken
// from the Authorization header, falling back to the session cookie.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			logger.FromContext(c).Warn("rejected session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}

		c.Set(sessionKey, claims)
		logger.WithContext(c, logger.FromContext(c).With(
			zap.String("user_id", claims.UserID),
			zap.String("store_id", claims.StoreID),
		))
		c.Next()
	}
}

// Session returns the claims stored by Auth.
func Session(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// SetSession stores claims as Auth would.
func SetSession(c *gin.Context, claims *auth.Claims) {
	c.Set(sessionKey, claims)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
