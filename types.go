package session

import (
	"context"
	"fmt"
)

// Logger is the minimal leveled logger used across the package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore persists the current session token. There is a single slot:
// saving overwrites any prior value and clearing is idempotent. No
// operation fails the caller; a write that cannot be persisted only means
// the session will not survive a restart.
type TokenStore interface {
	Save(token string)
	Read() (token string, ok bool)
	Clear()
}

// IdentityClient talks to the remote identity provider. It is the only
// component that issues provider calls, and the only writer of the
// TokenStore.
type IdentityClient interface {
	// SignIn exchanges credentials for an Outcome. On an Authenticated
	// outcome the session token has already been persisted.
	SignIn(ctx context.Context, email, password string) (Outcome, error)

	// CompleteChallenge commits a pending forced password change along
	// with any required attributes. On success the session token has been
	// persisted and the signed-in user is returned.
	CompleteChallenge(ctx context.Context, challenge *ChallengeState, newPassword string, attributes map[string]string) (*User, error)

	// SignOut terminates the local session and best-effort revokes the
	// provider session. It never fails the caller.
	SignOut(ctx context.Context) error

	// RestoreSession recovers an existing provider session without user
	// interaction. Any failure reports ok=false rather than an error.
	RestoreSession(ctx context.Context) (user *User, ok bool)
}

// DefaultLogger is the logger used when none is provided.
var DefaultLogger Logger = defLogger{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
