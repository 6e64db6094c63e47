package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenRequired guards the API with the static bearer token from API_TOKEN.
// Without a configured token every request passes.
func (s *Server) TokenRequired() gin.HandlerFunc {
	expected := []byte(s.cfg.APIToken)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), expected) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
