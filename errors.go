package session

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Kind identifies a class of authentication failure. Kinds are stable
// machine-checkable tags; the message attached to an error is what the
// UI renders next to the form.
type Kind string

const (
	// KindNotAuthorized covers wrong credentials. The message is fixed so
	// we never reveal which field was wrong.
	KindNotAuthorized Kind = "NOT_AUTHORIZED"

	// KindUserNotFound means no account exists for the identifier.
	KindUserNotFound Kind = "USER_NOT_FOUND"

	// KindUserNotConfirmed means the account exists but is unverified.
	KindUserNotConfirmed Kind = "USER_NOT_CONFIRMED"

	// KindInvalidParameter covers malformed requests, including missing
	// provider configuration. The provider message passes through
	// verbatim since it is developer-facing.
	KindInvalidParameter Kind = "INVALID_PARAMETER"

	// KindNetworkError covers transport failures.
	KindNetworkError Kind = "NETWORK_ERROR"

	// KindValidation covers local field validation failures raised before
	// any provider call is made.
	KindValidation Kind = "VALIDATION"

	// KindUnknown covers anything uncategorized.
	KindUnknown Kind = "UNKNOWN"
)

// Fixed user-facing messages per kind. Kinds without an entry pass the
// provider message through.
const (
	MsgNotAuthorized    = "Incorrect email or password."
	MsgUserNotFound     = "No account found with this email."
	MsgUserNotConfirmed = "Please confirm your email before signing in."
	MsgNetworkError     = "Network error. Please try again."
	MsgFallback         = "Something went wrong. Please try again."
)

// NewAuthError builds a typed authentication error carrying the given
// kind and user-facing message.
func NewAuthError(kind Kind, message string) error {
	if message == "" {
		message = MsgFallback
	}
	return goerrors.New(message, categoryFor(kind)).WithTextCode(string(kind))
}

// NewFieldError builds a validation error scoped to a single form field.
func NewFieldError(field, message string) error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(string(KindValidation)).
		WithMetadata(map[string]any{"field": field})
}

// WrapValidationErrors converts field-level validation failures into a
// single typed error. The fields metadata entry names every failing field.
func WrapValidationErrors(err error, fields []string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "please fill in the required fields").
		WithTextCode(string(KindValidation)).
		WithMetadata(map[string]any{"fields": fields})
}

// KindOf extracts the Kind from an error produced by this package or a
// provider client. Errors without a kind report KindUnknown; a nil error
// reports an empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if errors.As(err, &richErr) && richErr.TextCode != "" {
		return Kind(richErr.TextCode)
	}

	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FailingFields returns the field names attached to a validation error,
// or nil when err carries none.
func FailingFields(err error) []string {
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return nil
	}

	switch v := richErr.Metadata["fields"].(type) {
	case []string:
		return v
	}

	if field, ok := richErr.Metadata["field"].(string); ok {
		return []string{field}
	}

	return nil
}

func categoryFor(kind Kind) goerrors.Category {
	switch kind {
	case KindNotAuthorized, KindUserNotConfirmed:
		return goerrors.CategoryAuth
	case KindUserNotFound:
		return goerrors.CategoryNotFound
	case KindInvalidParameter, KindValidation:
		return goerrors.CategoryValidation
	case KindNetworkError:
		return goerrors.CategoryOperation
	default:
		return goerrors.CategoryInternal
	}
}
