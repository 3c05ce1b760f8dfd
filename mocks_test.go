package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-idp-session"
)

// stubClient implements session.IdentityClient with function fields and
// call counters.
type stubClient struct {
	mu            sync.Mutex
	signInCalls   int
	completeCalls int
	signOutCalls  int
	restoreCalls  int

	signInFn   func(ctx context.Context, email, password string) (session.Outcome, error)
	completeFn func(ctx context.Context, challenge *session.ChallengeState, newPassword string, attributes map[string]string) (*session.User, error)
	signOutFn  func(ctx context.Context) error
	restoreFn  func(ctx context.Context) (*session.User, bool)
}

var _ session.IdentityClient = (*stubClient)(nil)

func (s *stubClient) SignIn(ctx context.Context, email, password string) (session.Outcome, error) {
	s.mu.Lock()
	s.signInCalls++
	fn := s.signInFn
	s.mu.Unlock()

	if fn == nil {
		return nil, session.NewAuthError(session.KindUnknown, "")
	}
	return fn(ctx, email, password)
}

func (s *stubClient) CompleteChallenge(ctx context.Context, challenge *session.ChallengeState, newPassword string, attributes map[string]string) (*session.User, error) {
	s.mu.Lock()
	s.completeCalls++
	fn := s.completeFn
	s.mu.Unlock()

	if fn == nil {
		return nil, session.NewAuthError(session.KindUnknown, "")
	}
	return fn(ctx, challenge, newPassword, attributes)
}

func (s *stubClient) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.signOutCalls++
	fn := s.signOutFn
	s.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (s *stubClient) RestoreSession(ctx context.Context) (*session.User, bool) {
	s.mu.Lock()
	s.restoreCalls++
	fn := s.restoreFn
	s.mu.Unlock()

	if fn == nil {
		return nil, false
	}
	return fn(ctx)
}

func (s *stubClient) calls() (signIn, complete, signOut, restore int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signInCalls, s.completeCalls, s.signOutCalls, s.restoreCalls
}

// signTestToken mints an HS256 token carrying the given claims. Claims
// decoding never verifies, so the key is irrelevant beyond producing a
// well-formed third segment.
func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}
