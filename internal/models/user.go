package models

import "time"

// User represents a staff account.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	DisplayName  string    `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`

	Roles []Role `gorm:"many2many:user_roles;"`
}

// HasPermission reports whether any of the user's roles carries the named
// permission. Roles and their permissions must be preloaded.
func (u *User) HasPermission(name string) bool {
	for _, role := range u.Roles {
		for _, p := range role.Permissions {
			if p.Name == name || p.Name == PermAdminAll {
				return true
			}
		}
	}
	return false
}
