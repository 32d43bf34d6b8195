package ports

import (
	"context"

	"github.com/kontakty/contacts-api/internal/core/domain"
)

// IdentityStore is the credential subsystem the account service relies on.
// Password hashing stays behind this boundary.
type IdentityStore interface {
	CreateUser(ctx context.Context, username, email, password string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	VerifyPassword(user *domain.User, password string) bool
	AssignRole(ctx context.Context, user *domain.User, role domain.Role) error
}

// UserRepository defines persistence for user identities.
type UserRepository interface {
	// Create returns domain.ErrUserExists on a duplicate username or email.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	AddRole(ctx context.Context, userID string, role domain.Role) error
}

// RoleRepository defines persistence for the role catalogue.
type RoleRepository interface {
	Exists(ctx context.Context, role domain.Role) (bool, error)
	// Ensure creates the role if missing and reports whether it was created.
	Ensure(ctx context.Context, role domain.Role) (bool, error)
}
