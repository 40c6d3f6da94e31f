// Package auth implements the authentication coordinator: backend login
// with an anonymous or GitHub OAuth method, including the mid-flow
// two-factor challenge.
package auth

import "context"

// Mode selects how a login attempt authenticates.
type Mode int

const (
	// ModeAnonymous logs in without user credentials.
	ModeAnonymous Mode = iota
	// ModeGithub exchanges GitHub credentials for an OAuth token first.
	ModeGithub
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeAnonymous:
		return "anonymous"
	case ModeGithub:
		return "github"
	default:
		return "unknown"
	}
}

// Credentials holds the inputs for a single login attempt. They are
// constructed per attempt and discarded once it resolves.
type Credentials struct {
	Mode     Mode
	Login    string
	Password string
}

// AuthMethod is the backend authentication method produced by the
// coordinator.
type AuthMethod struct {
	Mode       Mode
	OAuthToken string
}

// Anonymous returns the anonymous auth method.
func Anonymous() AuthMethod {
	return AuthMethod{Mode: ModeAnonymous}
}

// GitHub returns the GitHub auth method carrying an OAuth token.
func GitHub(token string) AuthMethod {
	return AuthMethod{Mode: ModeGithub, OAuthToken: token}
}

// LoginResponse is the backend's answer to a login call.
type LoginResponse struct {
	IsSuccess   bool
	AccessToken string
	Error       string
}

// BackendAuthService is the partner backend's authentication surface.
// Carrier id and backend URL are bound at construction.
type BackendAuthService interface {
	// Login authenticates a device with the given method.
	Login(ctx context.Context, method AuthMethod, deviceID string) (LoginResponse, error)
	// Logout invalidates an access token.
	Logout(ctx context.Context, accessToken string) error
}

// AuthorizeStatus classifies an OAuth exchange response.
type AuthorizeStatus int

const (
	// AuthorizeOK means a token was issued.
	AuthorizeOK AuthorizeStatus = iota
	// AuthorizeUnauthorized means the credentials were rejected.
	AuthorizeUnauthorized
	// AuthorizeFailed covers every other failure.
	AuthorizeFailed
)

// AuthorizeResult is the outcome of one OAuth exchange.
type AuthorizeResult struct {
	Status AuthorizeStatus
	// Token is set when Status is AuthorizeOK.
	Token string
	// OTPRequired is set when the provider advertised a one-time
	// password requirement alongside an unauthorized status.
	OTPRequired bool
}

// OAuthProvider exchanges user credentials for an OAuth token.
type OAuthProvider interface {
	// Authorize performs one exchange. otpCode is empty on the first
	// attempt and carries the user-supplied second factor on retry.
	Authorize(ctx context.Context, login, password, otpCode string) (AuthorizeResult, error)
}

// ChallengePrompter resolves a two-factor challenge by blocking until
// the user supplies a code or cancels.
type ChallengePrompter interface {
	// RequestCode returns the supplied code, or ok=false on cancel.
	RequestCode(ctx context.Context) (code string, ok bool)
}
