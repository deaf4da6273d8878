package store

import (
	"fmt"
	"strings"
	"testing"

	"calorie_tracker/internal/domain"
	"calorie_tracker/internal/nutritionix"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database named after the test so parallel
// tests never share state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Entry{}))
	return db
}

// mustUser inserts an account directly, bypassing signup
func mustUser(t *testing.T, db *gorm.DB, username string, role domain.Role, expected int) *domain.User {
	t.Helper()
	u := domain.User{Username: username, Password: "x", Role: role, ExpectedCalories: expected}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// fakeLookup serves canned food matches in place of the Nutritionix API
type fakeLookup struct {
	foods map[string]nutritionix.Food
}

func (f fakeLookup) Lookup(query string) (*nutritionix.Food, error) {
	if food, ok := f.foods[query]; ok {
		return &food, nil
	}
	return nil, nutritionix.ErrNotFound
}

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }
