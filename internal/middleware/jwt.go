package middleware

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"calorie_tracker/internal/domain" // Domain models
	"calorie_tracker/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Context keys set by the session middleware
const (
	userKey  = "currentUser"  // *domain.User of the authenticated account
	tokenKey = "sessionToken" // Raw bearer token of the session
)

// RevokedSessionPrefix namespaces logged-out tokens in Redis
const RevokedSessionPrefix = "session:revoked:"

// abortUnauthorized ends the request with the uniform error envelope
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,                    // Failure envelope
		"error":   http.StatusUnauthorized,  // Numeric code mirrors the status
		"message": msg,                      // Human-readable reason
	})
}

// SessionMiddleware validates the bearer token, rejects revoked sessions and
// loads the acting account fresh from the database so role changes take
// effect immediately.
func SessionMiddleware(db *gorm.DB, rdb *redis.Client, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the session token
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}
		// A logged-out token stays on the denylist until it would expire anyway
		if rdb != nil {
			revoked, err := rdb.Exists(context.Background(), RevokedSessionPrefix+tokenStr).Result()
			if err == nil && revoked > 0 {
				abortUnauthorized(c, "Session has been logged out")
				return
			}
		}
		var user domain.User // Load the account backing the session
		if err := db.First(&user, claims.UserID).Error; err != nil {
			abortUnauthorized(c, "Account no longer exists")
			return
		}
		c.Set(userKey, &user)      // Store the acting identity in context
		c.Set(tokenKey, tokenStr)  // Keep the raw token for logout
		c.Next()                   // Proceed to the next handler
	}
}

// CurrentUser returns the authenticated account placed by SessionMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// SessionToken returns the raw bearer token of the current session
func SessionToken(c *gin.Context) (string, bool) {
	v, exists := c.Get(tokenKey)
	if !exists {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
