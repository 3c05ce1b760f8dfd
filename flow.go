package session

import (
	"context"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FlowState identifies where the interactive sign-in flow currently is.
type FlowState string

const (
	// FlowIdle is the initial state, before any form is shown.
	FlowIdle FlowState = "idle"
	// FlowAwaitingCredentials means the credentials form is shown.
	FlowAwaitingCredentials FlowState = "awaiting_credentials"
	// FlowAuthenticating means a sign-in call is in flight.
	FlowAuthenticating FlowState = "authenticating"
	// FlowChallengePending means the provider demands a new password and
	// possibly additional attributes before granting a session.
	FlowChallengePending FlowState = "challenge_pending"
	// FlowCompletingChallenge means a challenge completion is in flight.
	FlowCompletingChallenge FlowState = "completing_challenge"
	// FlowAuthenticated is terminal for the flow; the user is set.
	FlowAuthenticated FlowState = "authenticated"
)

// Challenge attributes the flow knows how to collect. Anything else the
// provider lists as required is ignored for form rendering and never
// blocks submission.
const (
	AttributeGivenName  = "given_name"
	AttributeFamilyName = "family_name"
)

// FieldNewPassword names the new-password input in validation errors.
const FieldNewPassword = "new_password"

// Flow drives the sign-in state machine. It owns the current flow state,
// the error attached to the form (if any), and the pending challenge. A
// Flow and its IdentityStore are the only writers of the current user.
//
// Only one provider call may be in flight per Flow; submissions made
// while a call is pending are ignored, not queued.
type Flow struct {
	mu          sync.Mutex
	client      IdentityClient
	identity    *IdentityStore
	logger      Logger
	state       FlowState
	err         error
	challenge   *ChallengeState
	busy        bool
	transitions map[FlowState]map[FlowState]struct{}
}

// FlowOption customizes flow construction.
type FlowOption func(*Flow)

// WithFlowLogger overrides the flow logger.
func WithFlowLogger(logger Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFlow returns a flow bound to the given provider client and identity
// store.
func NewFlow(client IdentityClient, identity *IdentityStore, opts ...FlowOption) *Flow {
	f := &Flow{
		client:   client,
		identity: identity,
		logger:   DefaultLogger,
		state:    FlowIdle,
		transitions: map[FlowState]map[FlowState]struct{}{
			FlowIdle: {
				FlowAwaitingCredentials: {},
			},
			FlowAwaitingCredentials: {
				FlowAuthenticating: {},
			},
			FlowAuthenticating: {
				FlowAuthenticated:       {},
				FlowChallengePending:    {},
				FlowAwaitingCredentials: {},
			},
			FlowChallengePending: {
				FlowCompletingChallenge: {},
				FlowAwaitingCredentials: {},
			},
			FlowCompletingChallenge: {
				FlowAuthenticated:    {},
				FlowChallengePending: {},
			},
			FlowAuthenticated: {
				FlowAwaitingCredentials: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Begin shows the credentials form: Idle -> AwaitingCredentials. Calling
// it in any other state is a no-op.
func (f *Flow) Begin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FlowIdle {
		f.setState(FlowAwaitingCredentials)
	}
}

// State returns the current flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error attached to the current interactive state, if
// any. It is cleared on the next submission.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Challenge returns the pending challenge, or nil.
func (f *Flow) Challenge() *ChallengeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenge
}

// RequiredFields returns the challenge attributes the form must collect,
// with the provider namespace stripped. Only given_name and family_name
// are recognized; unrecognized required attributes are dropped.
func (f *Flow) RequiredFields() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return requiredFields(f.challenge)
}

// SubmitCredentials runs the sign-in exchange. Valid from Idle (the form
// is implicitly shown) and AwaitingCredentials; ignored in any other
// state, and ignored while a prior submission is still pending. The
// returned error, when non-nil, is also attached to the flow for
// rendering next to the form.
func (f *Flow) SubmitCredentials(ctx context.Context, email, password string) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return nil
	}
	if f.state == FlowIdle {
		f.setState(FlowAwaitingCredentials)
	}
	if f.state != FlowAwaitingCredentials {
		f.mu.Unlock()
		return nil
	}

	if err := validateCredentials(email, password); err != nil {
		f.err = err
		f.mu.Unlock()
		return err
	}

	f.err = nil
	f.busy = true
	f.setState(FlowAuthenticating)
	f.mu.Unlock()

	outcome, err := f.client.SignIn(ctx, strings.TrimSpace(email), password)

	f.mu.Lock()
	f.busy = false

	if err != nil {
		f.err = err
		f.setState(FlowAwaitingCredentials)
		f.mu.Unlock()
		return err
	}

	var signedIn *User
	switch v := outcome.(type) {
	case Authenticated:
		f.challenge = nil
		f.setState(FlowAuthenticated)
		signedIn = v.User
	case ChallengeRequired:
		f.challenge = v.Challenge
		f.setState(FlowChallengePending)
	default:
		unknown := NewAuthError(KindUnknown, "")
		f.err = unknown
		f.setState(FlowAwaitingCredentials)
		f.mu.Unlock()
		return unknown
	}
	f.mu.Unlock()

	// Published outside the lock: subscribers may read flow state from
	// their callbacks.
	if signedIn != nil {
		f.identity.Set(signedIn)
	}
	return nil
}

// SubmitChallenge completes the pending forced password change. The new
// password and every recognized required attribute must be non-empty
// after trimming; otherwise a field-specific validation error is
// returned and no provider call is made. Ignored outside
// ChallengePending and while a prior submission is pending.
func (f *Flow) SubmitChallenge(ctx context.Context, newPassword string, attributes map[string]string) error {
	f.mu.Lock()
	if f.busy || f.state != FlowChallengePending {
		f.mu.Unlock()
		return nil
	}

	required := requiredFields(f.challenge)
	if err := validateChallengeInput(newPassword, required, attributes); err != nil {
		f.err = err
		f.mu.Unlock()
		return err
	}

	submitted := make(map[string]string, len(required))
	for _, field := range required {
		submitted[field] = strings.TrimSpace(attributes[field])
	}

	challenge := f.challenge
	f.err = nil
	f.busy = true
	f.setState(FlowCompletingChallenge)
	f.mu.Unlock()

	user, err := f.client.CompleteChallenge(ctx, challenge, newPassword, submitted)

	f.mu.Lock()
	f.busy = false

	if err != nil {
		f.err = err
		f.setState(FlowChallengePending)
		f.mu.Unlock()
		return err
	}

	f.challenge = nil
	f.setState(FlowAuthenticated)
	f.mu.Unlock()

	// Published outside the lock: subscribers may read flow state from
	// their callbacks.
	f.identity.Set(user)
	return nil
}

// Cancel abandons a pending challenge and returns to the credentials
// form, discarding the challenge state. Ignored while a call is in
// flight or outside ChallengePending.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy || f.state != FlowChallengePending {
		return
	}

	f.challenge = nil
	f.err = nil
	f.setState(FlowAwaitingCredentials)
}

// SignOut terminates the session: the provider client clears the token
// and best-effort revokes the provider session, the current user is
// cleared, and the flow returns to the credentials form. It never fails.
func (f *Flow) SignOut(ctx context.Context) {
	_ = f.client.SignOut(ctx)
	f.identity.ClearUser()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.challenge = nil
	f.err = nil
	if f.state == FlowAuthenticated || f.state == FlowChallengePending {
		f.setState(FlowAwaitingCredentials)
	}
}

// setState applies a transition, logging any topology violation. Callers
// must hold f.mu.
func (f *Flow) setState(target FlowState) {
	if f.state == target {
		return
	}
	if allowed, ok := f.transitions[f.state]; ok {
		if _, ok := allowed[target]; !ok {
			f.logger.Warn("flow: unexpected transition %s -> %s", f.state, target)
		}
	}
	f.state = target
}

// requiredFields strips the provider namespace from required attribute
// names and keeps the ones the flow recognizes, given_name first.
func requiredFields(challenge *ChallengeState) []string {
	if challenge == nil {
		return nil
	}

	seen := map[string]bool{}
	for _, name := range challenge.RequiredAttributes {
		switch bare := strings.TrimPrefix(name, AttributeNamespace); bare {
		case AttributeGivenName, AttributeFamilyName:
			seen[bare] = true
		}
	}

	fields := make([]string, 0, 2)
	if seen[AttributeGivenName] {
		fields = append(fields, AttributeGivenName)
	}
	if seen[AttributeFamilyName] {
		fields = append(fields, AttributeFamilyName)
	}
	return fields
}

func validateCredentials(email, password string) error {
	errs := validation.Errors{
		"email":    validation.Validate(strings.TrimSpace(email), validation.Required),
		"password": validation.Validate(password, validation.Required),
	}

	if err := errs.Filter(); err != nil {
		return WrapValidationErrors(err, failingKeys(errs))
	}
	return nil
}

func validateChallengeInput(newPassword string, required []string, attributes map[string]string) error {
	errs := validation.Errors{
		FieldNewPassword: validation.Validate(strings.TrimSpace(newPassword), validation.Required),
	}
	for _, field := range required {
		errs[field] = validation.Validate(strings.TrimSpace(attributes[field]), validation.Required)
	}

	if err := errs.Filter(); err != nil {
		return WrapValidationErrors(err, failingKeys(errs))
	}
	return nil
}

func failingKeys(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for key, err := range errs {
		if err != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
