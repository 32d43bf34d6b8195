package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// DefaultTokenTTL is the lifetime of an issued bearer token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenConfig captures the shared settings used to sign and verify tokens.
type TokenConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// tokenClaims is the JWT payload. given_name carries the username.
type tokenClaims struct {
	Email     string   `json:"email"`
	GivenName string   `json:"given_name"`
	Roles     []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS512 bearer tokens.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		key:      []byte(cfg.SigningKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// CreateToken signs a token carrying the user's email, username and roles.
func (s *TokenService) CreateToken(user *domain.User) (string, error) {
	now := s.now()

	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}

	claims := tokenClaims{
		Email:     user.Email,
		GivenName: user.Username,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm, issuer, audience and expiry.
func (s *TokenService) ParseToken(raw string) (*ports.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	var claims tokenClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tkn.Valid {
		return nil, errors.New("parse token: token is not valid")
	}

	roles := make([]domain.Role, len(claims.Roles))
	for i, r := range claims.Roles {
		roles[i] = domain.Role(r)
	}

	out := &ports.TokenClaims{
		Username: claims.GivenName,
		Email:    claims.Email,
		Roles:    roles,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
