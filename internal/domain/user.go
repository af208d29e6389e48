package domain

import "time"

// Roles recognised by the role guard
const (
	RoleEmployee = "Employee" // Default staff role
	RoleManager  = "Manager"  // Can manage users
	RoleAdmin    = "Admin"    // Can manage users
)

// User Model
type User struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`                                         // Store-assigned identifier
	Username  string    `gorm:"type:varchar(191) COLLATE utf8mb4_bin;uniqueIndex;not null" json:"username"` // Unique, case-sensitive username
	Password  string    `gorm:"not null" json:"-"`                                                          // Bcrypt hash, never serialized
	Roles     []string  `gorm:"type:text;serializer:json;not null" json:"roles"`                            // At least one role
	Active    bool      `gorm:"not null;default:true" json:"active"`                                        // Account enabled flag
	CreatedAt time.Time `json:"createdAt"`                                                                  // Creation timestamp
	UpdatedAt time.Time `json:"updatedAt"`                                                                  // Last update timestamp
}

// HasRole reports whether the user holds any of the given roles
func (u *User) HasRole(roles ...string) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
