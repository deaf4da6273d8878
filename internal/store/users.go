package store

import (
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Role normalization

	"calorie_tracker/internal/domain" // Domain models
	"calorie_tracker/internal/policy" // Role policy decisions

	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// Users is the user directory: account CRUD, credential verification and
// role transitions, all gated by the role policy.
type Users struct {
	db *gorm.DB // Backing database handle
}

// NewUsers builds a user directory over db
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Signup creates a "user"-role account. The username must be unused (exact,
// case-sensitive match) and the password is bcrypt-hashed before storage.
func (s *Users) Signup(username, password string, expectedCalories int) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if expectedCalories <= 0 {
		return nil, fmt.Errorf("%w: expected_calories must be positive", ErrValidation)
	}
	// Check for an existing account before hashing
	var count int64
	if err := s.db.Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		Username:         username,
		Password:         string(hash),
		Role:             domain.RoleUser, // Signup never yields elevated roles
		ExpectedCalories: expectedCalories,
	}
	if err := s.db.Create(&user).Error; err != nil {
		// A concurrent signup may still trip the unique index
		return nil, ErrDuplicateUsername
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User signed up")
	return &user, nil
}

// Authenticate verifies username/password and returns the matching account.
// Both unknown-user and wrong-password collapse into ErrInvalidCredentials.
func (s *Users) Authenticate(username, password string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID fetches one account by primary key
func (s *Users) GetByID(id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserFilter narrows a directory listing
type UserFilter struct {
	ID       uint        // Exact id, 0 = any
	Username string      // Exact username, "" = any
	Role     domain.Role // Exact role, "" = any
}

// UserListing is one page of the directory, grouped into role buckets, plus
// the total size of the full filtered set.
type UserListing struct {
	Users    []domain.User // Accounts with role "user"
	Managers []domain.User // Accounts with role "manager"
	Admins   []domain.User // Accounts with role "admin"
	Total    int64         // Count of the filtered set before pagination
}

// List returns one page of the directory for a manager or admin actor
func (s *Users) List(actor *domain.User, filter UserFilter, page, limit int) (*UserListing, error) {
	if !policy.CanListUsers(actor.Role) {
		return nil, ErrForbidden
	}
	query := s.db.Model(&domain.User{})
	if filter.ID != 0 {
		query = query.Where("id = ?", filter.ID)
	}
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	listing := UserListing{
		Users:    []domain.User{},
		Managers: []domain.User{},
		Admins:   []domain.User{},
	}
	// Count the full filtered set before applying the page window
	if err := query.Count(&listing.Total).Error; err != nil {
		return nil, err
	}
	var users []domain.User
	if err := query.Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	// Group the page into role buckets for response shaping
	for _, u := range users {
		switch u.Role {
		case domain.RoleManager:
			listing.Managers = append(listing.Managers, u)
		case domain.RoleAdmin:
			listing.Admins = append(listing.Admins, u)
		default:
			listing.Users = append(listing.Users, u)
		}
	}
	return &listing, nil
}

// UpdateSelfCalories changes the actor's own daily target ("user" role only)
func (s *Users) UpdateSelfCalories(actor *domain.User, expectedCalories int) error {
	if !policy.CanUpdateOwnCalories(actor.Role) {
		return ErrForbidden
	}
	if expectedCalories <= 0 {
		return fmt.Errorf("%w: expected_calories must be positive", ErrValidation)
	}
	if err := s.db.Model(&domain.User{}).Where("id = ?", actor.ID).
		Update("expected_calories", expectedCalories).Error; err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":           actor.ID,
		"expected_calories": expectedCalories,
	}).Info("Expected calories updated")
	return nil
}

// UpdateRole sets the role of the account named targetUsername. The target is
// re-read and the policy evaluated inside one transaction so a concurrent role
// change cannot slip past the check.
func (s *Users) UpdateRole(actor *domain.User, targetUsername string, newRole domain.Role) error {
	newRole = domain.Role(strings.ToLower(string(newRole)))
	if !newRole.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, newRole)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target domain.User
		if err := tx.Where("username = ?", targetUsername).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !policy.CanUpdateRole(actor, &target, newRole) {
			return ErrForbidden
		}
		return tx.Model(&target).Update("role", newRole).Error
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"username": targetUsername,
		"new_role": newRole,
	}).Info("Role updated")
	return nil
}

// Delete removes the account named targetUsername together with its entries.
// Entries are owned by their user, so the delete cascades in one transaction.
func (s *Users) Delete(actor *domain.User, targetUsername string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target domain.User
		if err := tx.Where("username = ?", targetUsername).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !policy.CanDeleteUser(actor, &target) {
			return ErrForbidden
		}
		// Remove the user's entries first, then the account itself
		if err := tx.Where("user_id = ?", target.ID).Delete(&domain.Entry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&target).Error
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"username": targetUsername,
	}).Info("User deleted")
	return nil
}
