package main

import (
	"calorie_tracker/internal/config" // Custom import path (Config)
	"calorie_tracker/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Run schema migration and the admin bootstrap against MySQL
	db.Migrate(cfg.DSN())
}
