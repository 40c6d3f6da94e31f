package auth

import (
	"context"
	"fmt"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// Coordinator drives the login flow: best-effort logout of any prior
// session, optional OAuth exchange with a two-factor challenge, then
// the backend login that yields the access token.
type Coordinator struct {
	provider OAuthProvider
	backend  BackendAuthService
	prompter ChallengePrompter
	log      common.Logger
}

// NewCoordinator creates a coordinator over the given collaborators.
func NewCoordinator(provider OAuthProvider, backend BackendAuthService, prompter ChallengePrompter) *Coordinator {
	return &Coordinator{
		provider: provider,
		backend:  backend,
		prompter: prompter,
		log:      common.GetLogger(),
	}
}

// Login performs a full login attempt and returns the access token.
// priorToken, when non-empty, is logged out first on a best-effort
// basis so that at most one backend session exists per device; its
// failure is ignored. Backend-reported failures are returned without
// retry.
func (c *Coordinator) Login(ctx context.Context, creds Credentials, deviceID, priorToken string) (string, error) {
	if priorToken != "" {
		if err := c.backend.Logout(ctx, priorToken); err != nil {
			c.log.Trace("Best-effort logout failed: %v", err)
		}
	}

	method := Anonymous()
	if creds.Mode == ModeGithub {
		token := c.githubOAuthToken(ctx, creds.Login, creds.Password)
		if token == "" {
			return "", common.ErrOAuthFailed
		}
		method = GitHub(token)
	}

	resp, err := c.backend.Login(ctx, method, deviceID)
	if err != nil {
		return "", common.WrapError(err, common.ErrLoginFailed.Error())
	}
	if !resp.IsSuccess {
		if resp.Error != "" {
			return "", fmt.Errorf("%w: %s", common.ErrLoginFailed, resp.Error)
		}
		return "", common.ErrLoginFailed
	}

	c.log.Trace("Login successful for device %s", deviceID)
	return resp.AccessToken, nil
}

// githubOAuthToken exchanges GitHub credentials for an OAuth token,
// raising at most one two-factor challenge. Every failure collapses to
// an empty token; the coarse signal is deliberate.
func (c *Coordinator) githubOAuthToken(ctx context.Context, login, password string) string {
	c.log.Trace("Trying to get OAuth token from GitHub...")

	result, err := c.provider.Authorize(ctx, login, password, "")
	if err != nil {
		return ""
	}

	if result.Status != AuthorizeOK {
		if result.Status != AuthorizeUnauthorized || !result.OTPRequired {
			c.log.Trace("Unable to get OAuth token from GitHub!")
			return ""
		}

		c.log.Trace("Two-factor authentication enabled")
		code, ok := c.prompter.RequestCode(ctx)
		if !ok {
			c.log.Trace("Cancel authorization!")
			return ""
		}

		c.log.Trace("Sending authentication code...")
		result, err = c.provider.Authorize(ctx, login, password, code)
		if err != nil || result.Status != AuthorizeOK {
			c.log.Trace("Two-factor authentication failed!")
			return ""
		}
	}

	c.log.Trace("Got valid response from GitHub")
	return result.Token
}
