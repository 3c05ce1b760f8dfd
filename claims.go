package session

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claim keys read from provider tokens.
const (
	ClaimSubject           = "sub"
	ClaimEmail             = "email"
	ClaimName              = "name"
	ClaimGivenName         = "given_name"
	ClaimPreferredUsername = "preferred_username"
	ClaimProviderUsername  = "cognito:username"
)

// Claims is the decoded, unverified payload of a session token. Values
// are display data only; nothing here may feed a trust decision.
type Claims map[string]any

// String returns the named claim when present and a string, else "".
func (c Claims) String(key string) string {
	if c == nil {
		return ""
	}
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

var segmentParser = jwt.NewParser()

// DecodeClaims extracts the payload segment of a token without any
// signature verification. It accepts arbitrary input and reports ok=false
// for anything malformed (wrong segment count, bad base64url, payload
// that is not a JSON object) instead of failing.
func DecodeClaims(token string) (Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}
	if claims == nil {
		return nil, false
	}

	return claims, true
}

// DisplayNameFromClaims returns the best-effort display name embedded in
// token claims: name, then given_name, then the provider username.
func DisplayNameFromClaims(c Claims) string {
	for _, key := range []string{ClaimName, ClaimGivenName, ClaimProviderUsername} {
		if v := c.String(key); v != "" {
			return v
		}
	}
	return ""
}

// UserFromClaims builds a User from ID token claims. The fallback
// argument stands in when the claims carry no usable email, typically the
// identifier the user signed in with or the provider-returned username.
//
// Resolution order:
//
//	id    <- sub
//	email <- email > provider username > fallback
//	name  <- name > given_name > preferred_username > email local part
func UserFromClaims(c Claims, fallback string) *User {
	email := c.String(ClaimEmail)
	if email == "" {
		email = c.String(ClaimProviderUsername)
	}
	if email == "" {
		email = fallback
	}

	name := c.String(ClaimName)
	if name == "" {
		name = c.String(ClaimGivenName)
	}
	if name == "" {
		name = c.String(ClaimPreferredUsername)
	}
	if name == "" && email != "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	return &User{
		ID:    c.String(ClaimSubject),
		Email: email,
		Name:  name,
	}
}
