package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"calorie_tracker/internal/middleware" // Session context accessors
	"calorie_tracker/internal/store"      // User directory
	"calorie_tracker/internal/utils"      // JWT utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Request struct for signup
type SignupRequest struct {
	Username         string `json:"username" binding:"required"`          // Username must be provided
	Password         string `json:"password" binding:"required"`          // Password must be provided
	ExpectedCalories int    `json:"expected_calories" binding:"required"` // Daily target must be provided
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// HomeHandler serves the unauthenticated root banner
func HomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Calorie Tracker API.")
	}
}

// SignupHandler creates a new "user"-role account
func SignupHandler(users *store.Users, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			Fail(c, http.StatusBadRequest, "username, password and expected_calories are required")
			return
		}
		user, err := users.Signup(req.Username, req.Password, req.ExpectedCalories)
		if err != nil {
			FailErr(c, err) // Duplicate username maps to 422
			return
		}
		// New account changes the user directory, drop cached listings
		_ = utils.BumpCacheVersion(context.Background(), rdb, usersCacheNamespace)
		OK(c, http.StatusCreated, gin.H{"user": user})
	}
}

// LoginHandler authenticates a user and starts a session
func LoginHandler(users *store.Users, rdb *redis.Client, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			Fail(c, http.StatusBadRequest, "username and password are required")
			return
		}
		// Verify credentials; failures are deliberately indistinguishable
		user, err := users.Authenticate(req.Username, req.Password)
		if err != nil {
			FailErr(c, err)
			return
		}
		// Issue the session token
		token, err := utils.GenerateJWT(user.ID, user.Username, jwtSecret)
		if err != nil {
			FailErr(c, err)
			return
		}
		OK(c, http.StatusOK, gin.H{"token": token, "user": user})
	}
}

// LogoutHandler ends the session by denylisting its token until expiry
func LogoutHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.SessionToken(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if rdb != nil {
			// Keep the token revoked for as long as it could still validate
			key := middleware.RevokedSessionPrefix + token
			_ = rdb.Set(context.Background(), key, "1", utils.SessionTTL).Err()
		}
		OK(c, http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// SessionHandler returns the identity behind the current session
func SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		OK(c, http.StatusOK, gin.H{"user": user})
	}
}
