// Package httpmiddleware holds the gin middleware shared by both
// control planes: request ID propagation, security headers, Prometheus
// metrics, and bearer-token authentication.
package httpmiddleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth validates the Authorization header against a single
// static token, minted at first start and persisted to a secrets file
// rather than a signed session. A constant-time comparison avoids
// timing side-channels on the token check.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			abortUnauthorized(c)
			return
		}
		presented := strings.TrimPrefix(header, prefix)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "missing or invalid bearer token",
	})
}
