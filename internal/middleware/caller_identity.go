package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CallerIDHeader carries the caller's owner ID, resolved by the session
// layer in front of this service. The core trusts it but never derives it.
const CallerIDHeader = "X-Caller-ID"

// CallerIdentityMiddleware extracts the caller identity header and stores
// it in the request context. Requests without it are rejected before they
// reach any handler.
func CallerIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := c.GetHeader(CallerIDHeader)
		if callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED", "message": "missing " + CallerIDHeader + " header"})
			return
		}

		c.Request = c.Request.WithContext(WithCallerID(c.Request.Context(), callerID))
		c.Next()
	}
}
