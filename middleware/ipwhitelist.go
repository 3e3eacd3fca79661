package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IPWhitelist only lets through clients whose IP is listed. Entries may be
// single addresses or CIDR ranges. An empty list allows all.
func IPWhitelist(entries []string) gin.HandlerFunc {
	exact := make(map[string]bool, len(entries))
	var nets []*net.IPNet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
			continue
		}
		if ip := net.ParseIP(e); ip != nil {
			exact[ip.String()] = true
		}
	}
	open := len(exact) == 0 && len(nets) == 0

	return func(c *gin.Context) {
		if open {
			c.Next()
			return
		}
		ip := net.ParseIP(c.ClientIP())
		if ip != nil && exact[ip.String()] {
			c.Next()
			return
		}
		for _, n := range nets {
			if ip != nil && n.Contains(ip) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}
