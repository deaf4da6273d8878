package db

import (
	"errors" // Error inspection

	"calorie_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Bootstrap admin credentials. A deployer must rotate this password before
// production use; it matches the well-known first-run seed.
const (
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin"
	SeedAdminCalories = 2000
)

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := AutoMigrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	if err := SeedAdmin(db); err != nil {
		logrus.Fatalf("admin seed failed: %v", err) // Log fatal error if seeding fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}

// AutoMigrate creates or updates the schema for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Entry{})
}

// SeedAdmin creates the bootstrap admin account when no admin exists yet
func SeedAdmin(db *gorm.DB) error {
	var admin domain.User
	err := db.Where("role = ?", domain.RoleAdmin).First(&admin).Error
	if err == nil {
		return nil // An admin already exists, nothing to do
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin = domain.User{
		Username:         SeedAdminUsername,
		Password:         string(hash),
		Role:             domain.RoleAdmin,
		ExpectedCalories: SeedAdminCalories,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("username", SeedAdminUsername).Warn("Seeded bootstrap admin, rotate its password")
	return nil
}
