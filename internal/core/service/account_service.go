package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
	"github.com/kontakty/contacts-api/internal/infrastructure/metrics"
)

// AccountService implements login and registration.
type AccountService struct {
	identity ports.IdentityStore
	tokens   ports.TokenIssuer
	limiter  ports.LoginLimiter // optional
	log      zerolog.Logger
}

// NewAccountService wires the account use cases. limiter may be nil, which
// disables login throttling.
func NewAccountService(identity ports.IdentityStore, tokens ports.TokenIssuer, limiter ports.LoginLimiter, log zerolog.Logger) *AccountService {
	return &AccountService{identity: identity, tokens: tokens, limiter: limiter, log: log}
}

func (s *AccountService) Login(ctx context.Context, username, password string) (_ *ports.AuthResult, err error) {
	defer func() { recordAuth("login", err) }()

	if s.limiter != nil {
		allowed, wait, err := s.limiter.Allow(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login limiter unavailable, continuing")
		} else if !allowed {
			return nil, &domain.LockoutError{RetryAfter: wait}
		}
	}

	user, err := s.identity.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, username)
			return nil, domain.ErrInvalidUsername
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.identity.VerifyPassword(user, password) {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Success(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login limiter")
		}
	}

	token, err := s.tokens.CreateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("user logged in")
	return &ports.AuthResult{Username: user.Username, Email: user.Email, Token: token}, nil
}

func (s *AccountService) Register(ctx context.Context, username, email, password string) (_ *ports.AuthResult, err error) {
	defer func() { recordAuth("register", err) }()

	existing, err := s.identity.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrEmailTaken
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.identity.CreateUser(ctx, username, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		s.log.Error().Err(err).Str("username", username).Msg("identity creation failed")
		return nil, &domain.ProviderError{Op: "create user", Err: err}
	}

	if err := s.identity.AssignRole(ctx, user, domain.RoleUser); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("role assignment failed")
		return nil, &domain.ProviderError{Op: "assign role", Err: err}
	}

	token, err := s.tokens.CreateToken(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{Username: user.Username, Email: user.Email, Token: token}, nil
}

func (s *AccountService) recordFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	locked, wait, err := s.limiter.Failure(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
		return
	}
	if locked {
		s.log.Warn().Str("username", username).Dur("lockout", wait).Msg("username locked after repeated failures")
	}
}

func recordAuth(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTooManyAttempts):
		result = "locked"
	case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrInvalidCredentials):
		result = "invalid"
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUserExists):
		result = "conflict"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(op, result).Inc()
}
