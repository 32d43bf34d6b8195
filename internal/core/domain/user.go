package domain

import "time"

// Role is an authorization tag attached to a user.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleUser          Role = "User"
)

// DefaultRoles are created at startup when missing.
var DefaultRoles = []Role{RoleAdministrator, RoleUser}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries r.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}
