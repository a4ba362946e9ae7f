package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into Gin context (key: "real_ip").
// With trustProxy the left-most X-Forwarded-For address wins, otherwise
// Gin's own ClientIP is used.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if trustProxy {
			if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if parsed := net.ParseIP(strings.TrimSpace(first)); parsed != nil {
					ip = parsed.String()
				}
			}
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}
