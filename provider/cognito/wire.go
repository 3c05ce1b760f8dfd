package cognito

// Operation targets, selected via the X-Amz-Target header.
const (
	targetInitiateAuth       = "AWSCognitoIdentityProviderService.InitiateAuth"
	targetRespondToChallenge = "AWSCognitoIdentityProviderService.RespondToAuthChallenge"
	targetGlobalSignOut      = "AWSCognitoIdentityProviderService.GlobalSignOut"
	targetGetUser            = "AWSCognitoIdentityProviderService.GetUser"
)

const (
	authFlowUserPassword         = "USER_PASSWORD_AUTH"
	challengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"

	paramUsername = "USERNAME"
	paramPassword = "PASSWORD"

	paramNewPassword = "NEW_PASSWORD"

	// Challenge parameter keys. requiredAttributes and userAttributes
	// arrive JSON-encoded inside string values.
	paramUserIDForSRP       = "USER_ID_FOR_SRP"
	paramRequiredAttributes = "requiredAttributes"
	paramUserAttributes     = "userAttributes"
)

type authRequest struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

type authResult struct {
	IDToken      string `json:"IdToken"`
	AccessToken  string `json:"AccessToken"`
	RefreshToken string `json:"RefreshToken,omitempty"`
	ExpiresIn    int    `json:"ExpiresIn,omitempty"`
	TokenType    string `json:"TokenType,omitempty"`
}

type authResponse struct {
	AuthenticationResult *authResult       `json:"AuthenticationResult,omitempty"`
	ChallengeName        string            `json:"ChallengeName,omitempty"`
	Session              string            `json:"Session,omitempty"`
	ChallengeParameters  map[string]string `json:"ChallengeParameters,omitempty"`
}

type challengeRequest struct {
	ChallengeName      string            `json:"ChallengeName"`
	ClientID           string            `json:"ClientId"`
	Session            string            `json:"Session"`
	ChallengeResponses map[string]string `json:"ChallengeResponses"`
}

type signOutRequest struct {
	AccessToken string `json:"AccessToken"`
}

type getUserRequest struct {
	AccessToken string `json:"AccessToken"`
}

type userAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type getUserResponse struct {
	Username       string          `json:"Username"`
	UserAttributes []userAttribute `json:"UserAttributes,omitempty"`
}

// apiError is the provider failure body: a category name plus message.
type apiError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func attributeValue(attrs []userAttribute, name string) string {
	for _, attr := range attrs {
		if attr.Name == name {
			return attr.Value
		}
	}
	return ""
}
