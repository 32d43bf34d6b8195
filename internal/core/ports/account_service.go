package ports

import "context"

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Username string
	Email    string
	Token    string
}

type AccountService interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
}
