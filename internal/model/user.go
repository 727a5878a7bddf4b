package model

import (
	"fmt"
	"time"
)

// User represents an authentication user (separate from employees).
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin       = "admin"
	RoleStorekeeper = "storekeeper"
	RoleViewer      = "viewer"
)

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// Capabilities checked at the API boundary.
const (
	CapView          = "view"
	CapEditDirectory = "edit_directory"
	CapEditEquipment = "edit_equipment"
	CapMoveEquipment = "move_equipment"
	CapEditDocuments = "edit_documents"
	CapManageUsers   = "manage_users"
)

var roleCapabilities = map[string][]string{
	RoleViewer: {CapView},
	RoleStorekeeper: {
		CapView,
		CapEditEquipment,
		CapMoveEquipment,
		CapEditDocuments,
	},
	RoleAdmin: {
		CapView,
		CapEditDirectory,
		CapEditEquipment,
		CapMoveEquipment,
		CapEditDocuments,
		CapManageUsers,
	},
}

// HasPermission reports whether role grants capability. Unknown roles and
// capabilities fail closed.
func HasPermission(role, capability string) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns the capabilities role grants, or nil for an unknown role.
func Capabilities(role string) []string {
	caps := roleCapabilities[role]
	if caps == nil {
		return nil
	}
	return append([]string(nil), caps...)
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
