// Package cognito implements session.IdentityClient against a
// Cognito-style user pool endpoint.
//
// The provider is reached through four JSON operations selected by a
// target header: initiate auth, respond to an auth challenge, global
// sign-out, and get-user (used for session restore). Request and
// response shapes are dictated by the provider; this package only
// depends on a success response carrying tokens, a challenge response
// carrying a continuation handle plus attribute names, and a failure
// response carrying a category name and message.
//
// Provider failure categories are translated into the typed error kinds
// of the session package; see translate.go for the mapping.
package cognito
