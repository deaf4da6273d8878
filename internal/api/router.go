package api

import (
	"net/http" // HTTP status codes

	"calorie_tracker/internal/domain"     // Domain models
	"calorie_tracker/internal/middleware" // Session and role middleware
	"calorie_tracker/internal/store"      // Stores

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// SetupRouter wires every endpoint. Both the server entry point and the
// handler tests build the engine through here.
func SetupRouter(db *gorm.DB, rdb *redis.Client, lookup store.FoodLookup, jwtSecret string) *gin.Engine {
	users := store.NewUsers(db)            // User directory
	records := store.NewRecords(db, lookup) // Record store

	r := gin.New()                  // Gin router instance
	r.Use(gin.Recovery())           // Recover from handler panics
	r.HandleMethodNotAllowed = true // Surface 405 instead of 404 on wrong methods

	// Unknown routes and unsupported methods share the failure envelope
	r.NoRoute(func(c *gin.Context) {
		Fail(c, http.StatusNotFound, "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		Fail(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public routes
	r.GET("/", HomeHandler())                           // Root banner
	r.POST("/signup", SignupHandler(users, rdb))        // Registration endpoint
	r.POST("/login", LoginHandler(users, rdb, jwtSecret)) // Login endpoint

	// Session-gated routes
	session := r.Group("")
	session.Use(middleware.SessionMiddleware(db, rdb, jwtSecret))
	session.POST("/logout", LogoutHandler(rdb))   // End session endpoint
	session.POST("/session", SessionHandler())    // Whoami endpoint

	// User directory routes
	session.GET("/users", middleware.RequireRole(domain.RoleManager), ListUsersHandler(users, rdb))
	session.PUT("/users", UpdateUsersHandler(users, rdb)) // Mixed roles, policy decides inside
	session.DELETE("/users", middleware.RequireRole(domain.RoleManager), DeleteUserHandler(users, rdb))

	// Record routes (managers have no record access at all)
	recordGroup := session.Group("/records")
	recordGroup.Use(middleware.RequireRecordAccess())
	recordGroup.GET("", ListRecordsHandler(records, rdb))     // List/filter/paginate entries
	recordGroup.POST("", CreateRecordHandler(records, rdb))   // Create an entry
	recordGroup.PUT("", UpdateRecordHandler(records, rdb))    // Update an entry
	recordGroup.DELETE("", DeleteRecordHandler(records, rdb)) // Delete an entry

	return r
}
