package httpmiddleware

import "github.com/gin-gonic/gin"

// Security sets common HTTP security headers on every response. It is
// applied to the external (LAN-facing) plane; the loopback-only
// internal plane doesn't face a browser and skips it.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		c.Next()
	}
}
