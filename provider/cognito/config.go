package cognito

import (
	"net/http"
	"time"

	session "github.com/goliatone/go-idp-session"
)

// Config holds the user pool client configuration.
type Config struct {
	// Endpoint is the identity provider endpoint, e.g.
	// "https://cognito-idp.us-east-1.amazonaws.com/".
	Endpoint string

	// ClientID is the app client id issued by the provider.
	ClientID string

	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client

	// Logger overrides session.DefaultLogger.
	Logger session.Logger
}

// DefaultTimeout bounds a single provider call when no HTTPClient is
// injected. The flow itself imposes no timeout; a call that never
// resolves keeps the flow in its in-flight state.
const DefaultTimeout = 10 * time.Second

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c Config) logger() session.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return session.DefaultLogger
}
