// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is the closed set of account roles known to the platform.
type Role string

const (
	// RoleUser is a mining company account.
	RoleUser Role = "user"
	// RoleAuditor is an external ESG auditor account.
	RoleAuditor Role = "auditor"
	// RoleAdmin is a platform administrator account.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAuditor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", NewValidationError("role must be one of: user, auditor, admin")
	}
	return r, nil
}

// User is a login identity in the credential store. Rows are created only by
// the approval engine or the development bootstrap, never by self-signup.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"userId"`
	Username  string    `gorm:"size:60;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
