package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// GithubProvider exchanges GitHub credentials for an OAuth token via
// the authorizations endpoint, using basic auth plus the OTP header
// when a second factor is supplied.
type GithubProvider struct {
	apiURL       string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          common.Logger
}

// NewGithubProvider creates a provider for the given OAuth application.
func NewGithubProvider(apiURL, clientID, clientSecret string) *GithubProvider {
	return &GithubProvider{
		apiURL:       apiURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: common.BackendCallTimeout},
		log:          common.GetLogger(),
	}
}

type authorizeRequest struct {
	Scopes       []string `json:"scopes"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
}

type authorizeResponse struct {
	Token string `json:"token"`
}

// Authorize performs one credential exchange. A 401 carrying the OTP
// header maps to AuthorizeUnauthorized with OTPRequired set so the
// coordinator can raise the challenge.
func (p *GithubProvider) Authorize(ctx context.Context, login, password, otpCode string) (AuthorizeResult, error) {
	body, err := json.Marshal(authorizeRequest{
		Scopes:       []string{},
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
	})
	if err != nil {
		return AuthorizeResult{Status: AuthorizeFailed}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return AuthorizeResult{Status: AuthorizeFailed}, err
	}

	basic := base64.StdEncoding.EncodeToString([]byte(login + ":" + password))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", login)
	if otpCode != "" {
		req.Header.Set(common.GithubOTPHeader, otpCode)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return AuthorizeResult{Status: AuthorizeFailed}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			return AuthorizeResult{
				Status:      AuthorizeUnauthorized,
				OTPRequired: resp.Header.Get(common.GithubOTPHeader) != "",
			}, nil
		}
		return AuthorizeResult{Status: AuthorizeFailed}, fmt.Errorf("authorization endpoint returned %s", resp.Status)
	}

	var parsed authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return AuthorizeResult{Status: AuthorizeFailed}, err
	}

	return AuthorizeResult{Status: AuthorizeOK, Token: parsed.Token}, nil
}
