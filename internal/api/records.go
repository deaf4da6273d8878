package api

import (
	"context"  // Context for Redis operations
	"fmt"      // Cache key formatting
	"net/http" // HTTP status codes
	"strconv"  // Query parameter parsing

	"calorie_tracker/internal/domain"     // Domain models
	"calorie_tracker/internal/middleware" // Session context accessors
	"calorie_tracker/internal/store"      // Record store
	"calorie_tracker/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// recordsCacheNamespace versions cached record listings. Any entry mutation
// bumps it, which is coarse but keeps every filter and owner combination
// consistent without tracking individual keys.
const recordsCacheNamespace = "records"

// Request struct for POST /records
type CreateRecordRequest struct {
	UserID   uint   `json:"user_id"`                 // Target owner, admin only
	Text     string `json:"text" binding:"required"` // Food description must be provided
	Calories *int   `json:"calories"`                // Omitted calories trigger the food lookup
	Date     string `json:"date"`                    // Optional explicit date, admin convenience
	Time     string `json:"time"`                    // Optional explicit time, admin convenience
}

// CreateRecordHandler submits a new calorie entry
func CreateRecordHandler(records *store.Records, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req CreateRecordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			Fail(c, http.StatusBadRequest, "text is required")
			return
		}
		entry, err := records.Create(actor, store.NewEntry{
			OwnerID:  req.UserID,   // 0 means the actor themself
			Text:     req.Text,     // Description, replaced by the canonical name on lookup
			Calories: req.Calories, // nil triggers the food lookup
			Date:     req.Date,     // Defaults to today
			Time:     req.Time,     // Defaults to now
		})
		if err != nil {
			FailErr(c, err)
			return
		}
		_ = utils.BumpCacheVersion(context.Background(), rdb, recordsCacheNamespace)
		OK(c, http.StatusCreated, gin.H{"entry": entry})
	}
}

// parseEntryFilter reads the optional record filters from the query string
func parseEntryFilter(c *gin.Context) store.EntryFilter {
	filter := store.EntryFilter{
		Date: c.Query("date"), // Exact date filter
		Text: c.Query("text"), // Case-insensitive substring filter
	}
	if min := c.Query("min_calories"); min != "" {
		if v, err := strconv.Atoi(min); err == nil {
			filter.MinCalories = &v // Inclusive lower bound
		}
	}
	if max := c.Query("max_calories"); max != "" {
		if v, err := strconv.Atoi(max); err == nil {
			filter.MaxCalories = &v // Inclusive upper bound
		}
	}
	return filter
}

// ListRecordsHandler lists entries. Users always get their own; admins may
// target one owner, fetch a single entry by id, or — with neither — get one
// result set per non-manager account.
func ListRecordsHandler(records *store.Records, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		// Admin shortcut: a bare id query returns that single entry
		if id := c.Query("id"); id != "" && actor.Role == domain.RoleAdmin {
			v, err := strconv.ParseUint(id, 10, 64)
			if err != nil {
				Fail(c, http.StatusBadRequest, "id must be numeric")
				return
			}
			entry, err := records.Get(actor, uint(v))
			if err != nil {
				FailErr(c, err)
				return
			}
			OK(c, http.StatusOK, gin.H{"entry": entry})
			return
		}
		page, limit := parsePagination(c)
		filter := parseEntryFilter(c)
		var ownerID uint
		if owner := c.Query("user_id"); owner != "" {
			if v, err := strconv.ParseUint(owner, 10, 64); err == nil {
				ownerID = uint(v) // Owner override, honored for admins only
			}
		}
		ctx := context.Background()
		ver := utils.CacheVersion(ctx, rdb, recordsCacheNamespace)
		cacheKey := fmt.Sprintf("%s:v%d:actor=%d:%s:page=%d:limit=%d",
			recordsCacheNamespace, ver, actor.ID, c.Request.URL.RawQuery, page, limit)
		// Admin bulk view: neither owner nor id given
		if actor.Role == domain.RoleAdmin && ownerID == 0 {
			var cached []store.EntryListing
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				OK(c, http.StatusOK, gin.H{"results": cached, "page": page, "limit": limit, "cached": true})
				return
			}
			listings, err := records.ListAll(actor, filter, page, limit)
			if err != nil {
				FailErr(c, err)
				return
			}
			_ = utils.SetCache(ctx, rdb, cacheKey, listings, listCacheTTL)
			OK(c, http.StatusOK, gin.H{"results": listings, "page": page, "limit": limit, "cached": false})
			return
		}
		var cached store.EntryListing
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respondEntryListing(c, &cached, page, limit, true)
			return
		}
		listing, err := records.List(actor, ownerID, filter, page, limit)
		if err != nil {
			FailErr(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, listing, listCacheTTL)
		respondEntryListing(c, listing, page, limit, false)
	}
}

// respondEntryListing shapes one owner's page into the success envelope
func respondEntryListing(c *gin.Context, listing *store.EntryListing, page, limit int, cached bool) {
	totalPages := (int(listing.Total) + limit - 1) / limit // Calculate total pages
	OK(c, http.StatusOK, gin.H{
		"entries":     listing.Entries, // The requested page
		"total":       listing.Total,   // Size of the full filtered set
		"page":        page,            // Current page
		"limit":       limit,           // Page size
		"total_pages": totalPages,      // Total pages
		"cached":      cached,          // Indicate whether response came from cache
	})
}

// Request struct for PUT /records
type UpdateRecordRequest struct {
	ID       uint    `json:"id" binding:"required"` // Entry to update
	Text     *string `json:"text"`                  // New description, optional
	Calories *int    `json:"calories"`              // New calorie count, optional
}

// UpdateRecordHandler patches the provided fields of an entry
func UpdateRecordHandler(records *store.Records, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req UpdateRecordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			Fail(c, http.StatusBadRequest, "id is required")
			return
		}
		entry, err := records.Update(actor, req.ID, store.EntryUpdate{
			Text:     req.Text,     // Only provided fields change
			Calories: req.Calories, // The below-expected snapshot never does
		})
		if err != nil {
			FailErr(c, err)
			return
		}
		_ = utils.BumpCacheVersion(context.Background(), rdb, recordsCacheNamespace)
		OK(c, http.StatusOK, gin.H{"entry": entry})
	}
}

// Request struct for DELETE /records
type DeleteRecordRequest struct {
	ID uint `json:"id" binding:"required"` // Entry to delete
}

// DeleteRecordHandler hard-deletes an entry
func DeleteRecordHandler(records *store.Records, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req DeleteRecordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			Fail(c, http.StatusBadRequest, "id is required")
			return
		}
		if err := records.Delete(actor, req.ID); err != nil {
			FailErr(c, err)
			return
		}
		_ = utils.BumpCacheVersion(context.Background(), rdb, recordsCacheNamespace)
		OK(c, http.StatusOK, gin.H{"message": "Entry deleted"})
	}
}
