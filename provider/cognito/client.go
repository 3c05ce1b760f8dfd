package cognito

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	session "github.com/goliatone/go-idp-session"
)

const (
	headerTarget    = "X-Amz-Target"
	headerRequestID = "X-Request-Id"
	contentType     = "application/x-amz-json-1.1"
)

var _ session.IdentityClient = (*Client)(nil)

// Client implements session.IdentityClient against a Cognito-style user
// pool endpoint. It is the only writer of the token store it is given.
type Client struct {
	config     Config
	httpClient *http.Client
	tokens     session.TokenStore
	logger     session.Logger
}

// New creates a provider client. Endpoint and client id are required;
// a missing configuration is reported as a KindInvalidParameter error
// with the raw developer-facing message.
func New(cfg Config, tokens session.TokenStore) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.ClientID) == "" {
		return nil, session.NewAuthError(session.KindInvalidParameter,
			"identity provider not configured: endpoint and client id are required")
	}
	if tokens == nil {
		tokens = session.NewMemoryTokenStore()
	}

	return &Client{
		config:     cfg,
		httpClient: cfg.httpClient(),
		tokens:     tokens,
		logger:     cfg.logger(),
	}, nil
}

// SignIn implements session.IdentityClient. On success the session token
// is persisted before the call returns.
func (c *Client) SignIn(ctx context.Context, email, password string) (session.Outcome, error) {
	req := authRequest{
		AuthFlow: authFlowUserPassword,
		ClientID: c.config.ClientID,
		AuthParameters: map[string]string{
			paramUsername: email,
			paramPassword: password,
		},
	}

	var resp authResponse
	if err := c.call(ctx, targetInitiateAuth, req, &resp); err != nil {
		return nil, err
	}

	if resp.ChallengeName == challengeNewPasswordRequired {
		return session.ChallengeRequired{Challenge: challengeFromResponse(email, &resp)}, nil
	}

	if resp.AuthenticationResult == nil {
		return nil, session.NewAuthError(session.KindUnknown, "provider response carried no credentials")
	}

	return session.Authenticated{User: c.persistAndBuildUser(resp.AuthenticationResult, email)}, nil
}

// CompleteChallenge implements session.IdentityClient. Attribute names
// are namespaced before submission; the provider-side username recorded
// on the challenge stands in when the returned claims carry no subject.
func (c *Client) CompleteChallenge(ctx context.Context, challenge *session.ChallengeState, newPassword string, attributes map[string]string) (*session.User, error) {
	if challenge == nil || challenge.Session == "" {
		return nil, session.NewAuthError(session.KindInvalidParameter, "challenge is no longer valid")
	}

	responses := map[string]string{
		paramUsername:    challenge.Username,
		paramNewPassword: newPassword,
	}
	for name, value := range attributes {
		if !strings.HasPrefix(name, session.AttributeNamespace) {
			name = session.AttributeNamespace + name
		}
		responses[name] = value
	}

	req := challengeRequest{
		ChallengeName:      challengeNewPasswordRequired,
		ClientID:           c.config.ClientID,
		Session:            challenge.Session,
		ChallengeResponses: responses,
	}

	var resp authResponse
	if err := c.call(ctx, targetRespondToChallenge, req, &resp); err != nil {
		return nil, err
	}

	if resp.AuthenticationResult == nil {
		return nil, session.NewAuthError(session.KindUnknown, "provider accepted the challenge but returned no credentials")
	}

	return c.persistAndBuildUser(resp.AuthenticationResult, challenge.Username), nil
}

// SignOut implements session.IdentityClient. The local token is cleared
// first; a provider-side failure is logged and never surfaced, so local
// session termination always succeeds. Safe to call repeatedly.
func (c *Client) SignOut(ctx context.Context) error {
	token, ok := c.tokens.Read()
	c.tokens.Clear()
	if !ok {
		return nil
	}

	if err := c.call(ctx, targetGlobalSignOut, signOutRequest{AccessToken: token}, nil); err != nil {
		c.logger.Debug("cognito: provider sign-out failed: %v", err)
	}
	return nil
}

// RestoreSession implements session.IdentityClient. Best effort: any
// failure, from a missing token to an expired provider session, reports
// ok=false and is only logged.
func (c *Client) RestoreSession(ctx context.Context) (*session.User, bool) {
	token, ok := c.tokens.Read()
	if !ok {
		return nil, false
	}

	var resp getUserResponse
	if err := c.call(ctx, targetGetUser, getUserRequest{AccessToken: token}, &resp); err != nil {
		c.logger.Debug("cognito: session restore failed: %v", err)
		return nil, false
	}

	// A restore counts as a fresh write, so an earlier failed persist
	// gets another chance.
	c.tokens.Save(token)

	claims, _ := session.DecodeClaims(token)
	user := session.UserFromClaims(claims, resp.Username)
	if user.ID == "" {
		user.ID = attributeValue(resp.UserAttributes, "sub")
	}
	if user.Email == "" {
		user.Email = attributeValue(resp.UserAttributes, "email")
	}

	return user, true
}

// persistAndBuildUser saves the issued token and derives the signed-in
// user from its claims. The ID token is preferred since it carries the
// display claims.
func (c *Client) persistAndBuildUser(result *authResult, fallback string) *session.User {
	token := result.IDToken
	if token == "" {
		token = result.AccessToken
	}
	if token != "" {
		c.tokens.Save(token)
	}

	claims, _ := session.DecodeClaims(token)
	return session.UserFromClaims(claims, fallback)
}

// challengeFromResponse lifts the provider challenge parameters into a
// session.ChallengeState. requiredAttributes and userAttributes arrive
// JSON-encoded inside strings; a malformed entry degrades to empty.
func challengeFromResponse(email string, resp *authResponse) *session.ChallengeState {
	params := resp.ChallengeParameters

	var required []string
	if raw := params[paramRequiredAttributes]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &required); err != nil {
			required = nil
		}
	}

	known := map[string]string{}
	if raw := params[paramUserAttributes]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &known)
	}
	// Not writable through the challenge; the provider rejects it.
	delete(known, "email_verified")

	username := params[paramUserIDForSRP]
	if username == "" {
		username = email
	}

	return &session.ChallengeState{
		Session:            resp.Session,
		Username:           username,
		RequiredAttributes: required,
		KnownAttributes:    known,
	}
}

// call posts a JSON operation to the provider endpoint. Transport
// failures map to KindNetworkError; non-2xx responses are translated
// through the category table.
func (c *Client) call(ctx context.Context, target string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return session.NewAuthError(session.KindUnknown, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return session.NewAuthError(session.KindInvalidParameter, "invalid provider endpoint: "+c.config.Endpoint)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(headerTarget, target)
	req.Header.Set(headerRequestID, uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("cognito: %s transport failure: %v", target, err)
		return session.NewAuthError(session.KindNetworkError, session.MsgNetworkError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.NewAuthError(session.KindNetworkError, session.MsgNetworkError)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return translateBody(data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return session.NewAuthError(session.KindUnknown, "")
		}
	}

	return nil
}
