package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ImportTokenHeader carries the shared secret for write-only automation endpoints.
const ImportTokenHeader = "X-Import-Token"

// RequireToken rejects requests whose X-Import-Token does not equal token.
// An empty token means the endpoint was never configured and fails closed.
func RequireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "IMPORT_TOKEN is not set on the server"})
			return
		}
		got := c.GetHeader(ImportTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
