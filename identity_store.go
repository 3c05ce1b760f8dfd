package session

import (
	"context"
	"sync"
)

// Phase describes what the identity store knows about the current user.
type Phase string

const (
	// PhaseLoading means session restore has not resolved yet. Callers
	// must treat this as neither signed in nor signed out, to avoid a
	// flash of the wrong UI.
	PhaseLoading Phase = "loading"
	// PhaseSignedOut means there is no current user.
	PhaseSignedOut Phase = "signed_out"
	// PhaseSignedIn means a user is set.
	PhaseSignedIn Phase = "signed_in"
)

// DefaultDisplayName is the label used when no display name, token claim,
// or email can be derived.
const DefaultDisplayName = "Account"

// IdentitySnapshot is the value delivered to subscribers. User is nil
// unless Phase is PhaseSignedIn.
type IdentitySnapshot struct {
	Phase Phase
	User  *User
}

// IdentityStore is the process-wide observable holding the current user.
// It starts in PhaseLoading until Init resolves a one-shot session
// restore. The sign-in Flow and Init are its only writers.
type IdentityStore struct {
	mu      sync.RWMutex
	client  IdentityClient
	tokens  TokenStore
	logger  Logger
	phase   Phase
	user    *User
	restore sync.Once
	nextSub int
	subs    map[int]func(IdentitySnapshot)
}

// IdentityStoreOption customizes store construction.
type IdentityStoreOption func(*IdentityStore)

// WithIdentityStoreLogger overrides the store logger.
func WithIdentityStoreLogger(logger Logger) IdentityStoreOption {
	return func(s *IdentityStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewIdentityStore returns a store in PhaseLoading. The token store is
// read only to derive display names from stored token claims.
func NewIdentityStore(client IdentityClient, tokens TokenStore, opts ...IdentityStoreOption) *IdentityStore {
	s := &IdentityStore{
		client: client,
		tokens: tokens,
		logger: DefaultLogger,
		phase:  PhaseLoading,
		subs:   map[int]func(IdentitySnapshot){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Init resolves the initial session restore exactly once. A failed or
// absent session degrades to PhaseSignedOut without surfacing an error;
// there is no user action to report one against. Subsequent calls are
// no-ops.
func (s *IdentityStore) Init(ctx context.Context) {
	s.restore.Do(func() {
		user, ok := s.client.RestoreSession(ctx)
		if !ok {
			s.logger.Debug("identity: no session restored")
			s.ClearUser()
			return
		}
		s.Set(user)
	})
}

// Set makes user the current user and notifies subscribers.
func (s *IdentityStore) Set(user *User) {
	s.mu.Lock()
	s.phase = PhaseSignedIn
	s.user = user
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// ClearUser removes the current user and notifies subscribers.
func (s *IdentityStore) ClearUser() {
	s.mu.Lock()
	s.phase = PhaseSignedOut
	s.user = nil
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Snapshot returns the current phase and user.
func (s *IdentityStore) Snapshot() IdentitySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IdentitySnapshot{Phase: s.phase, User: s.user}
}

// Subscribe registers fn for every subsequent change and invokes it once
// immediately with the current snapshot. The returned func cancels the
// subscription and is safe to call more than once.
func (s *IdentityStore) Subscribe(fn func(IdentitySnapshot)) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snapshot := IdentitySnapshot{Phase: s.phase, User: s.user}
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// DisplayName derives the label to render for the current user: the
// user's name, else the best-effort name from the stored token claims,
// else the user's email, else DefaultDisplayName.
func (s *IdentityStore) DisplayName() string {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()

	if user != nil && user.Name != "" {
		return user.Name
	}

	if s.tokens != nil {
		if token, ok := s.tokens.Read(); ok {
			if claims, ok := DecodeClaims(token); ok {
				if name := DisplayNameFromClaims(claims); name != "" {
					return name
				}
			}
		}
	}

	if user != nil && user.Email != "" {
		return user.Email
	}

	return DefaultDisplayName
}

// snapshotLocked copies the subscriber list so notification runs outside
// the lock. Callers must hold s.mu.
func (s *IdentityStore) snapshotLocked() (IdentitySnapshot, []func(IdentitySnapshot)) {
	subs := make([]func(IdentitySnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return IdentitySnapshot{Phase: s.phase, User: s.user}, subs
}

func notify(subs []func(IdentitySnapshot), snapshot IdentitySnapshot) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
