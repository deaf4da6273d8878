package domain

// Wire formats for the entry date and time columns
const (
	DateLayout = "2006-01-02" // Calendar date, YYYY-MM-DD
	TimeLayout = "15:04:05"   // Time of day, HH:MM:SS
)

// Entry Model
type Entry struct {
	ID              uint   `gorm:"primaryKey" json:"id"`               // Primary key
	UserID          uint   `gorm:"not null;index" json:"user_id"`      // Owner, immutable after creation
	Date            string `gorm:"not null;index" json:"date"`         // Calendar date (DateLayout)
	Time            string `gorm:"not null" json:"time"`               // Time of day (TimeLayout)
	Text            string `gorm:"not null" json:"text"`               // Free-text food description
	Calories        int    `gorm:"not null" json:"calories"`           // Non-negative calorie count
	IsBelowExpected bool   `json:"is_below_expected"`                  // Snapshot taken at creation, never recomputed
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
