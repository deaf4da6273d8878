package store

import (
	"database/sql" // Transaction isolation options
	"errors"       // Error inspection
	"fmt"          // Error wrapping
	"strings"      // Case-insensitive text filter
	"time"         // Creation timestamps

	"calorie_tracker/internal/domain"      // Domain models
	"calorie_tracker/internal/nutritionix" // Food lookup result type
	"calorie_tracker/internal/policy"      // Role policy decisions

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// FoodLookup resolves free text to a canonical food name and calorie count
type FoodLookup interface {
	Lookup(query string) (*nutritionix.Food, error)
}

// Records is the record store: entry CRUD plus filtered, paginated queries,
// scoped by ownership and role.
type Records struct {
	db     *gorm.DB   // Backing database handle
	lookup FoodLookup // Calorie resolution for entries without explicit calories
}

// NewRecords builds a record store over db using lookup for calorie fallback
func NewRecords(db *gorm.DB, lookup FoodLookup) *Records {
	return &Records{db: db, lookup: lookup}
}

// DailyTotal sums the calories of all existing entries for (userID, date)
func DailyTotal(tx *gorm.DB, userID uint, date string) (int, error) {
	var total int
	err := tx.Model(&domain.Entry{}).
		Where("user_id = ? AND date = ?", userID, date).
		Select("COALESCE(SUM(calories), 0)").
		Scan(&total).Error
	return total, err
}

// NewEntry carries the caller-supplied fields of a record submission
type NewEntry struct {
	OwnerID  uint   // Target owner; 0 means the actor themself
	Text     string // Free-text food description
	Calories *int   // Explicit calories; nil triggers the food lookup
	Date     string // Optional explicit date (admin), defaults to today
	Time     string // Optional explicit time (admin), defaults to now
}

// Create inserts a new entry. When calories are omitted the food lookup
// resolves them and its canonical name replaces the submitted text. The daily
// sum and the insert run in one serializable transaction so two concurrent
// submissions for the same day cannot both miss each other's calories.
func (s *Records) Create(actor *domain.User, in NewEntry) (*domain.Entry, error) {
	ownerID := in.OwnerID
	if ownerID == 0 {
		ownerID = actor.ID
	}
	if !policy.CanCreateEntryFor(actor, ownerID) {
		return nil, ErrForbidden
	}
	if in.Text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}
	text := in.Text
	var calories int
	if in.Calories != nil {
		if *in.Calories < 0 {
			return nil, fmt.Errorf("%w: calories must not be negative", ErrValidation)
		}
		calories = *in.Calories
	} else {
		// Resolve calories from the food description
		food, err := s.lookup.Lookup(in.Text)
		if err != nil {
			if errors.Is(err, nutritionix.ErrNotFound) {
				return nil, ErrUnresolvedFood
			}
			return nil, err
		}
		text = food.Name // Canonical name overwrites the submitted text
		calories = food.Calories
	}
	now := time.Now()
	date := in.Date
	if date == "" {
		date = now.Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	timeOfDay := in.Time
	if timeOfDay == "" {
		timeOfDay = now.Format(domain.TimeLayout)
	} else if _, err := time.Parse(domain.TimeLayout, timeOfDay); err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM:SS", ErrValidation)
	}
	entry := domain.Entry{
		UserID:   ownerID,
		Date:     date,
		Time:     timeOfDay,
		Text:     text,
		Calories: calories,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owner domain.User
		if err := tx.First(&owner, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		total, err := DailyTotal(tx, ownerID, date)
		if err != nil {
			return err
		}
		// Snapshot: strict less-than against the owner's current target,
		// never recomputed when later entries land on the same day
		entry.IsBelowExpected = total+entry.Calories < owner.ExpectedCalories
		return tx.Create(&entry).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"owner_id": ownerID,
		"entry_id": entry.ID,
		"calories": entry.Calories,
	}).Info("Entry created")
	return &entry, nil
}

// EntryFilter narrows a record listing
type EntryFilter struct {
	Date        string // Exact date, "" = any
	Text        string // Case-insensitive substring on text, "" = any
	MinCalories *int   // Inclusive lower calorie bound
	MaxCalories *int   // Inclusive upper calorie bound
}

// EntryListing is one page of entries for a single owner plus the total size
// of the full filtered set.
type EntryListing struct {
	OwnerID  uint           `json:"user_id"`            // Owner of the entries
	Username string         `json:"username,omitempty"` // Owner's username when known
	Entries  []domain.Entry `json:"entries"`            // The requested page
	Total    int64          `json:"total"`              // Filtered count before pagination
}

// applyFilter adds the filter conditions to an entry query
func applyFilter(query *gorm.DB, filter EntryFilter) *gorm.DB {
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Text != "" {
		query = query.Where("LOWER(text) LIKE ?", "%"+strings.ToLower(filter.Text)+"%")
	}
	if filter.MinCalories != nil {
		query = query.Where("calories >= ?", *filter.MinCalories)
	}
	if filter.MaxCalories != nil {
		query = query.Where("calories <= ?", *filter.MaxCalories)
	}
	return query
}

// listOwner returns one page of ownerID's entries matching the filter
func (s *Records) listOwner(ownerID uint, filter EntryFilter, page, limit int) (*EntryListing, error) {
	listing := EntryListing{OwnerID: ownerID, Entries: []domain.Entry{}}
	query := applyFilter(s.db.Model(&domain.Entry{}).Where("user_id = ?", ownerID), filter)
	if err := query.Count(&listing.Total).Error; err != nil {
		return nil, err
	}
	if err := query.Order("id asc").Offset((page - 1) * limit).Limit(limit).
		Find(&listing.Entries).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// List returns one page of entries for a single owner. A "user" actor is
// always scoped to their own entries regardless of ownerID; an admin may pick
// any owner (0 = themself).
func (s *Records) List(actor *domain.User, ownerID uint, filter EntryFilter, page, limit int) (*EntryListing, error) {
	if !policy.CanAccessRecords(actor.Role) {
		return nil, ErrForbidden
	}
	if actor.Role != domain.RoleAdmin || ownerID == 0 {
		ownerID = actor.ID
	}
	return s.listOwner(ownerID, filter, page, limit)
}

// ListAll returns one result set per non-manager account, for admins only
func (s *Records) ListAll(actor *domain.User, filter EntryFilter, page, limit int) ([]EntryListing, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	var owners []domain.User
	if err := s.db.Where("role <> ?", domain.RoleManager).Order("id asc").Find(&owners).Error; err != nil {
		return nil, err
	}
	listings := make([]EntryListing, 0, len(owners))
	for _, owner := range owners {
		listing, err := s.listOwner(owner.ID, filter, page, limit)
		if err != nil {
			return nil, err
		}
		listing.Username = owner.Username
		listings = append(listings, *listing)
	}
	return listings, nil
}

// Get fetches a single entry by id, subject to ownership rules
func (s *Records) Get(actor *domain.User, id uint) (*domain.Entry, error) {
	var entry domain.Entry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !policy.CanTouchEntry(actor, &entry) {
		return nil, ErrForbidden
	}
	return &entry, nil
}

// EntryUpdate carries partial changes to an entry; nil fields stay untouched
type EntryUpdate struct {
	Text     *string // New description
	Calories *int    // New calorie count
}

// Update patches the provided fields of an entry. The is_below_expected
// snapshot is deliberately left as it was computed at creation time.
func (s *Records) Update(actor *domain.User, id uint, in EntryUpdate) (*domain.Entry, error) {
	var entry domain.Entry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !policy.CanTouchEntry(actor, &entry) {
			return ErrForbidden
		}
		updates := map[string]any{}
		if in.Text != nil {
			if *in.Text == "" {
				return fmt.Errorf("%w: text must not be empty", ErrValidation)
			}
			updates["text"] = *in.Text
			entry.Text = *in.Text
		}
		if in.Calories != nil {
			if *in.Calories < 0 {
				return fmt.Errorf("%w: calories must not be negative", ErrValidation)
			}
			updates["calories"] = *in.Calories
			entry.Calories = *in.Calories
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&entry).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"entry_id": entry.ID,
	}).Info("Entry updated")
	return &entry, nil
}

// Delete hard-deletes an entry, subject to ownership rules
func (s *Records) Delete(actor *domain.User, id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry domain.Entry
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !policy.CanTouchEntry(actor, &entry) {
			return ErrForbidden
		}
		return tx.Delete(&entry).Error
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"entry_id": id,
	}).Info("Entry deleted")
	return nil
}
