package cognito

import (
	"encoding/json"
	"strings"

	session "github.com/goliatone/go-idp-session"
)

// Provider failure categories this client recognizes. Anything else maps
// to session.KindUnknown with the provider message when available.
const (
	categoryNotAuthorized    = "NotAuthorizedException"
	categoryUserNotFound     = "UserNotFoundException"
	categoryUserNotConfirmed = "UserNotConfirmedException"
	categoryInvalidParameter = "InvalidParameterException"
	categoryNetworkError     = "NetworkError"
)

// translateBody parses a provider failure body and maps it to a typed
// error. An unparseable body yields KindUnknown with the fallback text.
func translateBody(body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return session.NewAuthError(session.KindUnknown, "")
	}
	return translateCategory(apiErr.Type, apiErr.Message)
}

// translateCategory maps a provider failure category and raw message to
// a typed error. Wrong-credential and unknown-account failures get fixed
// generic messages so the response never reveals which field was wrong.
func translateCategory(category, message string) error {
	// Some serializations prefix the category with a namespace marker.
	if i := strings.LastIndex(category, "#"); i >= 0 {
		category = category[i+1:]
	}

	switch category {
	case categoryNotAuthorized:
		return session.NewAuthError(session.KindNotAuthorized, session.MsgNotAuthorized)
	case categoryUserNotFound:
		return session.NewAuthError(session.KindUserNotFound, session.MsgUserNotFound)
	case categoryUserNotConfirmed:
		return session.NewAuthError(session.KindUserNotConfirmed, session.MsgUserNotConfirmed)
	case categoryInvalidParameter:
		// Developer-facing: pass the provider message through verbatim.
		return session.NewAuthError(session.KindInvalidParameter, message)
	case categoryNetworkError:
		return session.NewAuthError(session.KindNetworkError, session.MsgNetworkError)
	default:
		return session.NewAuthError(session.KindUnknown, message)
	}
}
