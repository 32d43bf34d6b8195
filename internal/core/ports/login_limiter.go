package ports

import (
	"context"
	"time"
)

// LoginLimiter throttles repeated failed logins for a username.
type LoginLimiter interface {
	// Allow reports whether a login may be attempted and, if not, how long
	// the caller must wait.
	Allow(ctx context.Context, username string) (bool, time.Duration, error)
	// Failure records a failed attempt and reports whether it triggered a lockout.
	Failure(ctx context.Context, username string) (bool, time.Duration, error)
	// Success clears the failure history.
	Success(ctx context.Context, username string) error
}
