// Package policy holds the pure role-based access decisions. Every rule takes
// the acting identity and (where relevant) the target and returns allow/deny;
// handlers translate a deny into a 403 response.
package policy

import (
	"calorie_tracker/internal/domain" // Role and User models
)

// CanListUsers reports whether the actor may view the user directory
func CanListUsers(actor domain.Role) bool {
	return actor.AtLeast(domain.RoleManager)
}

// CanUpdateOwnCalories reports whether the actor may change their own daily target
func CanUpdateOwnCalories(actor domain.Role) bool {
	return actor == domain.RoleUser
}

// CanUpdateRole reports whether actor may set target's role to newRole.
// Actors never change their own role; managers may neither assign "admin"
// nor touch a target that is already manager or admin.
func CanUpdateRole(actor *domain.User, target *domain.User, newRole domain.Role) bool {
	if !actor.Role.AtLeast(domain.RoleManager) {
		return false
	}
	if actor.ID == target.ID {
		return false
	}
	if actor.Role == domain.RoleManager {
		if newRole == domain.RoleAdmin {
			return false
		}
		if target.Role.AtLeast(domain.RoleManager) {
			return false
		}
	}
	return true
}

// CanDeleteUser reports whether actor may delete target. Self-deletion is
// never allowed; managers may only delete plain users.
func CanDeleteUser(actor *domain.User, target *domain.User) bool {
	if !actor.Role.AtLeast(domain.RoleManager) {
		return false
	}
	if actor.ID == target.ID {
		return false
	}
	if actor.Role == domain.RoleManager && target.Role.AtLeast(domain.RoleManager) {
		return false
	}
	return true
}

// CanAccessRecords reports whether the role has any record access at all.
// Managers administer accounts but have no access to calorie entries.
func CanAccessRecords(actor domain.Role) bool {
	return actor == domain.RoleUser || actor == domain.RoleAdmin
}

// CanCreateEntryFor reports whether actor may create an entry owned by ownerID
func CanCreateEntryFor(actor *domain.User, ownerID uint) bool {
	if !CanAccessRecords(actor.Role) {
		return false
	}
	// Only admins may attribute an entry to someone else
	return actor.Role == domain.RoleAdmin || ownerID == actor.ID
}

// CanTouchEntry reports whether actor may read, update or delete the entry
func CanTouchEntry(actor *domain.User, entry *domain.Entry) bool {
	if !CanAccessRecords(actor.Role) {
		return false
	}
	return actor.Role == domain.RoleAdmin || entry.UserID == actor.ID
}
