package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-idp-session"
)

func newTestFlow(client session.IdentityClient) (*session.Flow, *session.IdentityStore) {
	identity := session.NewIdentityStore(client, session.NewMemoryTokenStore())
	return session.NewFlow(client, identity), identity
}

func TestFlow_BeginShowsCredentialsForm(t *testing.T) {
	flow, _ := newTestFlow(&stubClient{})

	assert.Equal(t, session.FlowIdle, flow.State())
	flow.Begin()
	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())

	// Begin outside Idle is a no-op.
	flow.Begin()
	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())
}

func TestFlow_SignInSuccess(t *testing.T) {
	user := &session.User{ID: "u1", Email: "a@b.com", Name: "Ada"}
	client := &stubClient{
		signInFn: func(_ context.Context, email, password string) (session.Outcome, error) {
			assert.Equal(t, "a@b.com", email)
			assert.Equal(t, "goodpass", password)
			return session.Authenticated{User: user}, nil
		},
	}
	flow, identity := newTestFlow(client)

	flow.Begin()
	require.NoError(t, flow.SubmitCredentials(context.Background(), "a@b.com", "goodpass"))

	assert.Equal(t, session.FlowAuthenticated, flow.State())
	assert.NoError(t, flow.Err())

	snapshot := identity.Snapshot()
	assert.Equal(t, session.PhaseSignedIn, snapshot.Phase)
	assert.Equal(t, user, snapshot.User)
}

func TestFlow_SignInFailureReturnsToForm(t *testing.T) {
	client := &stubClient{
		signInFn: func(context.Context, string, string) (session.Outcome, error) {
			return nil, session.NewAuthError(session.KindNotAuthorized, session.MsgNotAuthorized)
		},
	}
	flow, identity := newTestFlow(client)

	flow.Begin()
	err := flow.SubmitCredentials(context.Background(), "a@b.com", "badpass")

	require.Error(t, err)
	assert.True(t, session.IsKind(err, session.KindNotAuthorized))
	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())
	assert.Equal(t, err, flow.Err())
	assert.NotEqual(t, session.PhaseSignedIn, identity.Snapshot().Phase)
}

func TestFlow_SubmitFromIdleImplicitlyBegins(t *testing.T) {
	client := &stubClient{
		signInFn: func(context.Context, string, string) (session.Outcome, error) {
			return session.Authenticated{User: &session.User{ID: "u1"}}, nil
		},
	}
	flow, _ := newTestFlow(client)

	require.NoError(t, flow.SubmitCredentials(context.Background(), "a@b.com", "pw"))
	assert.Equal(t, session.FlowAuthenticated, flow.State())
}

func TestFlow_EmptyCredentialsRejectedLocally(t *testing.T) {
	client := &stubClient{}
	flow, _ := newTestFlow(client)

	flow.Begin()
	err := flow.SubmitCredentials(context.Background(), "   ", "")

	require.Error(t, err)
	assert.True(t, session.IsKind(err, session.KindValidation))
	assert.Equal(t, []string{"email", "password"}, session.FailingFields(err))
	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())

	signIn, _, _, _ := client.calls()
	assert.Equal(t, 0, signIn)
}

func TestFlow_DoubleSubmitIssuesOneProviderCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	client := &stubClient{
		signInFn: func(context.Context, string, string) (session.Outcome, error) {
			started <- struct{}{}
			<-release
			return session.Authenticated{User: &session.User{ID: "u1"}}, nil
		},
	}
	flow, _ := newTestFlow(client)
	flow.Begin()

	done := make(chan error, 1)
	go func() {
		done <- flow.SubmitCredentials(context.Background(), "a@b.com", "pw")
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the provider")
	}

	// The second submission lands while the first is in flight and must
	// be ignored: no queueing, no second call.
	assert.NoError(t, flow.SubmitCredentials(context.Background(), "a@b.com", "pw"))
	assert.Equal(t, session.FlowAuthenticating, flow.State())

	close(release)
	require.NoError(t, <-done)

	signIn, _, _, _ := client.calls()
	assert.Equal(t, 1, signIn)
	assert.Equal(t, session.FlowAuthenticated, flow.State())
}

func TestFlow_SubscriberMayReadFlowStateOnSignIn(t *testing.T) {
	user := &session.User{ID: "u1", Email: "a@b.com"}
	client := &stubClient{
		signInFn: func(context.Context, string, string) (session.Outcome, error) {
			return session.Authenticated{User: user}, nil
		},
	}
	flow, identity := newTestFlow(client)

	states := make(chan session.FlowState, 1)
	cancel := identity.Subscribe(func(s session.IdentitySnapshot) {
		if s.Phase == session.PhaseSignedIn {
			states <- flow.State()
		}
	})
	defer cancel()

	done := make(chan error, 1)
	go func() {
		flow.Begin()
		done <- flow.SubmitCredentials(context.Background(), "a@b.com", "pw")
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sign-in blocked while notifying subscribers")
	}
	assert.Equal(t, session.FlowAuthenticated, <-states)
}

func TestFlow_SubscriberMayReadFlowStateOnChallengeCompletion(t *testing.T) {
	user := &session.User{ID: "u1", Email: "a@b.com"}
	client := &stubClient{
		completeFn: func(context.Context, *session.ChallengeState, string, map[string]string) (*session.User, error) {
			return user, nil
		},
	}
	flow, identity := challengeFlow(t, client, &session.ChallengeState{
		Session:            "continuation-handle",
		Username:           "a@b.com",
		RequiredAttributes: []string{"userAttributes.given_name"},
	})

	states := make(chan session.FlowState, 1)
	cancel := identity.Subscribe(func(s session.IdentitySnapshot) {
		if s.Phase == session.PhaseSignedIn {
			states <- flow.State()
		}
	})
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- flow.SubmitChallenge(context.Background(), "NewPass1!", map[string]string{"given_name": "Ada"})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("challenge completion blocked while notifying subscribers")
	}
	assert.Equal(t, session.FlowAuthenticated, <-states)
}

func pendingChallenge() *session.ChallengeState {
	return &session.ChallengeState{
		Session:            "continuation-handle",
		Username:           "a@b.com",
		RequiredAttributes: []string{"userAttributes.given_name", "userAttributes.family_name", "userAttributes.locale"},
		KnownAttributes:    map[string]string{"email": "a@b.com"},
	}
}

func challengeFlow(t *testing.T, client *stubClient, challenge *session.ChallengeState) (*session.Flow, *session.IdentityStore) {
	t.Helper()

	client.signInFn = func(context.Context, string, string) (session.Outcome, error) {
		return session.ChallengeRequired{Challenge: challenge}, nil
	}
	flow, identity := newTestFlow(client)
	flow.Begin()
	require.NoError(t, flow.SubmitCredentials(context.Background(), "a@b.com", "oldpass"))
	require.Equal(t, session.FlowChallengePending, flow.State())
	return flow, identity
}

func TestFlow_RequiredFieldsStripNamespace(t *testing.T) {
	flow, _ := challengeFlow(t, &stubClient{}, pendingChallenge())

	// locale is required by the provider but unrecognized: it must not be
	// rendered and must not block submission.
	assert.Equal(t, []string{session.AttributeGivenName, session.AttributeFamilyName}, flow.RequiredFields())
}

func TestFlow_SubmitChallengeMissingFieldNoProviderCall(t *testing.T) {
	client := &stubClient{}
	flow, _ := challengeFlow(t, client, &session.ChallengeState{
		Session:            "continuation-handle",
		Username:           "a@b.com",
		RequiredAttributes: []string{"userAttributes.given_name"},
	})

	err := flow.SubmitChallenge(context.Background(), "NewPass1!", map[string]string{"given_name": "   "})

	require.Error(t, err)
	assert.True(t, session.IsKind(err, session.KindValidation))
	assert.Contains(t, session.FailingFields(err), session.AttributeGivenName)
	assert.Equal(t, session.FlowChallengePending, flow.State())

	_, complete, _, _ := client.calls()
	assert.Equal(t, 0, complete)
}

func TestFlow_SubmitChallengeSuccess(t *testing.T) {
	user := &session.User{ID: "u1", Email: "a@b.com", Name: "Ada"}
	client := &stubClient{
		completeFn: func(_ context.Context, challenge *session.ChallengeState, newPassword string, attributes map[string]string) (*session.User, error) {
			assert.Equal(t, "continuation-handle", challenge.Session)
			assert.Equal(t, "NewPass1!", newPassword)
			assert.Equal(t, map[string]string{"given_name": "Ada"}, attributes)
			return user, nil
		},
	}
	flow, identity := challengeFlow(t, client, &session.ChallengeState{
		Session:            "continuation-handle",
		Username:           "a@b.com",
		RequiredAttributes: []string{"userAttributes.given_name"},
	})

	require.NoError(t, flow.SubmitChallenge(context.Background(), "NewPass1!", map[string]string{"given_name": " Ada "}))

	assert.Equal(t, session.FlowAuthenticated, flow.State())
	assert.Nil(t, flow.Challenge())
	assert.Equal(t, user, identity.Snapshot().User)
}

func TestFlow_SubmitChallengeProviderFailureStaysPending(t *testing.T) {
	client := &stubClient{
		completeFn: func(context.Context, *session.ChallengeState, string, map[string]string) (*session.User, error) {
			return nil, session.NewAuthError(session.KindInvalidParameter, "password does not meet requirements")
		},
	}
	flow, _ := challengeFlow(t, client, &session.ChallengeState{
		Session:            "continuation-handle",
		Username:           "a@b.com",
		RequiredAttributes: []string{"userAttributes.given_name"},
	})

	err := flow.SubmitChallenge(context.Background(), "weak", map[string]string{"given_name": "Ada"})

	require.Error(t, err)
	assert.Equal(t, session.FlowChallengePending, flow.State())
	assert.NotNil(t, flow.Challenge())
	assert.Equal(t, err, flow.Err())
}

func TestFlow_CancelDiscardsChallenge(t *testing.T) {
	flow, _ := challengeFlow(t, &stubClient{}, pendingChallenge())

	flow.Cancel()

	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())
	assert.Nil(t, flow.Challenge())
	assert.NoError(t, flow.Err())
}

func TestFlow_SubmitChallengeIgnoredOutsideChallenge(t *testing.T) {
	client := &stubClient{}
	flow, _ := newTestFlow(client)
	flow.Begin()

	assert.NoError(t, flow.SubmitChallenge(context.Background(), "NewPass1!", nil))

	_, complete, _, _ := client.calls()
	assert.Equal(t, 0, complete)
	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())
}

func TestFlow_SignOutDuringChallengeReturnsToForm(t *testing.T) {
	client := &stubClient{}
	flow, identity := challengeFlow(t, client, pendingChallenge())

	flow.SignOut(context.Background())

	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())
	assert.Nil(t, flow.Challenge())
	assert.NoError(t, flow.Err())
	assert.Equal(t, session.PhaseSignedOut, identity.Snapshot().Phase)

	_, _, signOut, _ := client.calls()
	assert.Equal(t, 1, signOut)
}

func TestFlow_SignOutClearsEverything(t *testing.T) {
	client := &stubClient{
		signInFn: func(context.Context, string, string) (session.Outcome, error) {
			return session.Authenticated{User: &session.User{ID: "u1"}}, nil
		},
	}
	flow, identity := newTestFlow(client)
	flow.Begin()
	require.NoError(t, flow.SubmitCredentials(context.Background(), "a@b.com", "pw"))
	require.Equal(t, session.PhaseSignedIn, identity.Snapshot().Phase)

	flow.SignOut(context.Background())

	assert.Equal(t, session.FlowAwaitingCredentials, flow.State())
	assert.Equal(t, session.PhaseSignedOut, identity.Snapshot().Phase)

	_, _, signOut, _ := client.calls()
	assert.Equal(t, 1, signOut)

	// Signing out again never errors.
	flow.SignOut(context.Background())
	assert.Equal(t, session.PhaseSignedOut, identity.Snapshot().Phase)
}
