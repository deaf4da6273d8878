package api

import (
	"context"  // Context for Redis operations
	"fmt"      // Cache key formatting
	"net/http" // HTTP status codes
	"strconv"  // Query parameter parsing
	"time"     // Cache TTL

	"calorie_tracker/internal/domain"     // Domain models
	"calorie_tracker/internal/middleware" // Session context accessors
	"calorie_tracker/internal/store"      // User directory
	"calorie_tracker/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// usersCacheNamespace versions cached user-directory listings
const usersCacheNamespace = "users"

// listCacheTTL bounds staleness of cached list responses
const listCacheTTL = 60 * time.Second

// parsePagination reads 1-based page and limit query parameters with the
// usual defaults and a hard cap on page size.
func parsePagination(c *gin.Context) (int, int) {
	page := 1   // Default page
	limit := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v // Set page size if valid
		}
	}
	return page, limit
}

// ListUsersHandler returns the user directory grouped by role (manager/admin)
func ListUsersHandler(users *store.Users, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		page, limit := parsePagination(c)
		filter := store.UserFilter{
			Username: c.Query("username"),              // Exact username filter
			Role:     domain.Role(c.Query("role")),     // Exact role filter
		}
		if id := c.Query("id"); id != "" {
			if v, err := strconv.ParseUint(id, 10, 64); err == nil {
				filter.ID = uint(v) // Exact id filter
			}
		}
		ctx := context.Background()
		// Versioned cache key: bumping the namespace drops every combination
		ver := utils.CacheVersion(ctx, rdb, usersCacheNamespace)
		cacheKey := fmt.Sprintf("%s:v%d:id=%d:username=%s:role=%s:page=%d:limit=%d",
			usersCacheNamespace, ver, filter.ID, filter.Username, filter.Role, page, limit)
		var cached store.UserListing
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respondUserListing(c, &cached, page, limit, true)
			return
		}
		listing, err := users.List(actor, filter, page, limit)
		if err != nil {
			FailErr(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, listing, listCacheTTL)
		respondUserListing(c, listing, page, limit, false)
	}
}

// respondUserListing shapes a directory page into the success envelope
func respondUserListing(c *gin.Context, listing *store.UserListing, page, limit int, cached bool) {
	totalPages := (int(listing.Total) + limit - 1) / limit // Calculate total pages
	OK(c, http.StatusOK, gin.H{
		"users":       listing.Users,    // Role "user" bucket
		"managers":    listing.Managers, // Role "manager" bucket
		"admins":      listing.Admins,   // Role "admin" bucket
		"total":       listing.Total,    // Size of the full filtered set
		"page":        page,             // Current page
		"limit":       limit,            // Page size
		"total_pages": totalPages,       // Total pages
		"cached":      cached,           // Indicate whether response came from cache
	})
}

// Request struct for PUT /users; exactly one of the two update shapes applies
type UpdateUserRequest struct {
	ExpectedCalories *int    `json:"expected_calories"` // Self-update of the daily target
	Username         *string `json:"username"`          // Target account for a role change
	Role             *string `json:"role"`              // New role for the target
}

// UpdateUsersHandler updates the caller's own expected calories or, for
// managers and admins, another account's role.
func UpdateUsersHandler(users *store.Users, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			Fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		switch {
		case req.Role != nil:
			// Role transition on the named target
			if req.Username == nil || *req.Username == "" {
				Fail(c, http.StatusBadRequest, "username is required for a role change")
				return
			}
			if err := users.UpdateRole(actor, *req.Username, domain.Role(*req.Role)); err != nil {
				FailErr(c, err)
				return
			}
			_ = utils.BumpCacheVersion(context.Background(), rdb, usersCacheNamespace)
			OK(c, http.StatusOK, gin.H{"message": "Role updated"})
		case req.ExpectedCalories != nil:
			// Self-service daily target update
			if err := users.UpdateSelfCalories(actor, *req.ExpectedCalories); err != nil {
				FailErr(c, err)
				return
			}
			_ = utils.BumpCacheVersion(context.Background(), rdb, usersCacheNamespace)
			OK(c, http.StatusOK, gin.H{"message": "Expected calories updated"})
		default:
			Fail(c, http.StatusBadRequest, "Nothing to update")
		}
	}
}

// Request struct for DELETE /users
type DeleteUserRequest struct {
	Username string `json:"username" binding:"required"` // Target username must be provided
}

// DeleteUserHandler removes an account and its entries (manager/admin only)
func DeleteUserHandler(users *store.Users, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req DeleteUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			Fail(c, http.StatusBadRequest, "username is required")
			return
		}
		if err := users.Delete(actor, req.Username); err != nil {
			FailErr(c, err)
			return
		}
		ctx := context.Background()
		// Deleting an account changes both directory and record listings
		_ = utils.BumpCacheVersion(ctx, rdb, usersCacheNamespace)
		_ = utils.BumpCacheVersion(ctx, rdb, recordsCacheNamespace)
		OK(c, http.StatusOK, gin.H{"message": "User deleted"})
	}
}
