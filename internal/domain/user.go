package domain

// Role is a privilege tier with a total order: user < manager < admin
type Role string

// Supported roles
const (
	RoleUser    Role = "user"    // Regular account, owns its entries
	RoleManager Role = "manager" // Administers accounts, no record access
	RoleAdmin   Role = "admin"   // Full access to accounts and records
)

// roleLevels maps each role to its position in the hierarchy
var roleLevels = map[Role]int{
	RoleUser:    0,
	RoleManager: 1,
	RoleAdmin:   2,
}

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the numeric rank of the role (-1 for unknown roles)
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// AtLeast reports whether r ranks at or above other
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// User Model
type User struct {
	ID               uint   `gorm:"primaryKey" json:"id"`              // Primary key
	Username         string `gorm:"unique;not null" json:"username"`   // Unique username (case-sensitive)
	Password         string `gorm:"not null" json:"-"`                 // Bcrypt hash, never serialized
	Role             Role   `gorm:"not null;default:user" json:"role"` // Privilege tier
	ExpectedCalories int    `gorm:"not null" json:"expected_calories"` // Personal daily calorie target
}
