package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// Identity implements ports.IdentityStore on top of the user and role
// repositories. Passwords are hashed with bcrypt.
type Identity struct {
	users ports.UserRepository
	roles ports.RoleRepository
	cost  int
}

func NewIdentity(users ports.UserRepository, roles ports.RoleRepository) *Identity {
	return &Identity{users: users, roles: roles, cost: bcrypt.DefaultCost}
}

func (i *Identity) CreateUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), i.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	return i.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (i *Identity) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return i.users.FindByUsername(ctx, username)
}

func (i *Identity) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return i.users.FindByEmail(ctx, email)
}

func (i *Identity) VerifyPassword(user *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// AssignRole attaches an existing role to the user and mirrors it on user.Roles.
func (i *Identity) AssignRole(ctx context.Context, user *domain.User, role domain.Role) error {
	ok, err := i.roles.Exists(ctx, role)
	if err != nil {
		return fmt.Errorf("lookup role %s: %w", role, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRoleNotFound, role)
	}

	if err := i.users.AddRole(ctx, user.ID, role); err != nil {
		return err
	}
	if !user.HasRole(role) {
		user.Roles = append(user.Roles, role)
	}
	return nil
}
