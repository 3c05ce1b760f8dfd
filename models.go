package session

// AttributeNamespace prefixes required attribute names in provider
// challenge responses (e.g. "userAttributes.given_name"). The flow strips
// it before matching; the provider client adds it back on submission.
const AttributeNamespace = "userAttributes."

// User is the identity record derived from provider claims. ID is the
// provider subject and is stable once set; Name may be absent.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ChallengeState describes a pending forced password change. It lives
// only between a sign-in returning "challenge required" and that
// challenge being completed or cancelled; it is never persisted.
type ChallengeState struct {
	// Session is the opaque continuation handle returned by the provider.
	Session string

	// Username is the identifier the challenge was issued for.
	Username string

	// RequiredAttributes holds attribute names the provider still needs,
	// namespaced as delivered (see AttributeNamespace).
	RequiredAttributes []string

	// KnownAttributes holds attribute values the provider already has.
	KnownAttributes map[string]string
}

// Outcome is the result of a successful sign-in exchange: either a
// signed-in user or a challenge that must be completed first. Failures
// travel as a separate typed error, never as a third variant here.
type Outcome interface {
	isOutcome()
}

// Authenticated is the Outcome carrying the signed-in user.
type Authenticated struct {
	User *User
}

// ChallengeRequired is the Outcome carrying a pending challenge.
type ChallengeRequired struct {
	Challenge *ChallengeState
}

func (Authenticated) isOutcome()     {}
func (ChallengeRequired) isOutcome() {}
