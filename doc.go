// Package session implements the client side of a username/password
// sign-in flow against a hosted identity provider.
//
// Sign-in flow:
//   - Flow drives the interactive state machine: credentials go out, and
//     the result is either a signed-in user, a forced password change
//     challenge that must be completed before a session exists, or a
//     typed error attached to the form state.
//   - IdentityClient is the only component that talks to the remote
//     provider. The provider/cognito package ships the default
//     implementation for Cognito-style user pool endpoints.
//
// Session state:
//   - TokenStore holds the single persisted session token. The file
//     backed store survives process restarts; the in-memory store is for
//     tests and ephemeral sessions. Store writes never fail the caller.
//   - IdentityStore is the process-wide observable holding the current
//     user. It starts in a loading phase until a one-shot session restore
//     resolves, so consumers never flash the wrong signed-in state.
//
// Claims:
//   - DecodeClaims reads a token's payload segment without verifying the
//     signature. It exists purely to derive display data; nothing decoded
//     here may be used as a trust decision.
package session
