package main

import (
	"context" // context package is needed for Redis operations

	"calorie_tracker/internal/api"         // Custom package for API handlers and router
	"calorie_tracker/internal/config"      // Custom package for configuration
	"calorie_tracker/internal/db"          // Custom package for schema and seeding
	"calorie_tracker/internal/nutritionix" // Food lookup client

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gormDB, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// First-run bootstrap: make sure an admin account exists
	if err := db.SeedAdmin(gormDB); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}

	// Setup Redis client; an empty address runs the service without caching
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, running without cache and session denylist")
	}

	// Food lookup client for entries submitted without explicit calories
	lookup := nutritionix.NewClient(cfg.NutritionixURL, cfg.NutritionixAppID, cfg.NutritionixAppKey)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin with all routes wired
	r := api.SetupRouter(gormDB, redisClient, lookup, cfg.JWTSecret)

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err) // Start the server on port cfg.AppPort
	}
}
