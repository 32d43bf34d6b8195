package ports

import (
	"time"

	"github.com/kontakty/contacts-api/internal/core/domain"
)

// TokenClaims is the identity recovered from a verified bearer token.
type TokenClaims struct {
	Username  string
	Email     string
	Roles     []domain.Role
	ExpiresAt time.Time
}

// TokenIssuer creates and verifies signed bearer tokens.
type TokenIssuer interface {
	CreateToken(user *domain.User) (string, error)
	ParseToken(token string) (*TokenClaims, error)
}
