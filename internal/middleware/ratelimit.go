package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mahammedjunedattar/cloth-invent/internal/logger"
	"github.com/mahammedjunedattar/cloth-invent/internal/ratelimit"
)

// Limiter consumes one point for a key.
type Limiter interface {
	Allow(key string) ratelimit.Result
}

// RateLimit throttles each client IP. onLimited, when set, runs for every
// rejected request.
func RateLimit(l Limiter, onLimited func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c)
		res := l.Allow(ip)
		reset := seconds(res.ResetAfter.Seconds())

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if !res.Allowed {
			if onLimited != nil {
				onLimited()
			}
			logger.FromContext(c).Warn("rate limit exceeded", zap.String("ip", ip))
			c.Header("Retry-After", strconv.Itoa(reset))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": fmt.Sprintf("Try again in %d seconds", reset),
			})
			return
		}
		c.Next()
	}
}

// ClientIP resolves the caller address from proxy headers, in order:
// X-Forwarded-For (first hop), CF-Connecting-IP, X-Real-IP, then the socket.
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	for _, h := range []string{"CF-Connecting-IP", "X-Real-IP"} {
		if ip := strings.TrimSpace(c.GetHeader(h)); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	if c.Request.RemoteAddr != "" {
		return c.Request.RemoteAddr
	}
	return "unknown"
}

func seconds(s float64) int {
	return int(math.Ceil(s))
}
