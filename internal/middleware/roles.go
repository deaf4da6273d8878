package middleware

import (
	"net/http" // HTTP status codes

	"calorie_tracker/internal/domain" // Domain models
	"calorie_tracker/internal/policy" // Role policy decisions

	"github.com/gin-gonic/gin" // Gin web framework
)

// abortForbidden ends the request with the uniform error envelope
func abortForbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,                // Failure envelope
		"error":   http.StatusForbidden, // Numeric code mirrors the status
		"message": msg,                  // Human-readable reason
	})
}

// RequireRole rejects requests from accounts ranking below min. The role is
// taken from the identity SessionMiddleware loaded, so a demotion applies on
// the very next request.
func RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		if !user.Role.AtLeast(min) {
			abortForbidden(c, "Insufficient role")
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// RequireRecordAccess rejects roles without any record access (managers)
func RequireRecordAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		if !policy.CanAccessRecords(user.Role) {
			abortForbidden(c, "Role has no record access")
			return
		}
		c.Next() // Proceed to the next handler
	}
}
