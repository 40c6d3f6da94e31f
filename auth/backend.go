package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// RestBackend talks to the partner backend's authentication endpoints.
// Carrier id and backend URL are bound at construction; one instance
// serves the whole process.
type RestBackend struct {
	baseURL    string
	carrierID  string
	httpClient *http.Client
	log        common.Logger
}

// NewRestBackend creates a backend auth service for the given carrier.
func NewRestBackend(baseURL, carrierID string) *RestBackend {
	return &RestBackend{
		baseURL:    baseURL,
		carrierID:  carrierID,
		httpClient: &http.Client{Timeout: common.BackendCallTimeout},
		log:        common.GetLogger(),
	}
}

type backendLoginRequest struct {
	CarrierID  string `json:"carrier_id"`
	DeviceID   string `json:"device_id"`
	AuthMethod string `json:"auth_method"`
	OAuthToken string `json:"oauth_token,omitempty"`
}

type backendLoginResponse struct {
	Result      string `json:"result"`
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

type backendLogoutRequest struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates a device with the backend and returns the session
// outcome. A non-OK result is a login failure, not a transport error.
func (b *RestBackend) Login(ctx context.Context, method AuthMethod, deviceID string) (LoginResponse, error) {
	body, err := json.Marshal(backendLoginRequest{
		CarrierID:  b.carrierID,
		DeviceID:   deviceID,
		AuthMethod: method.Mode.String(),
		OAuthToken: method.OAuthToken,
	})
	if err != nil {
		return LoginResponse{}, err
	}

	resp, err := b.post(ctx, "/user/login", body)
	if err != nil {
		return LoginResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LoginResponse{}, fmt.Errorf("backend login returned %s", resp.Status)
	}

	var parsed backendLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return LoginResponse{}, err
	}

	if parsed.Result != "OK" {
		reason := parsed.Error
		if reason == "" {
			reason = parsed.Result
		}
		return LoginResponse{IsSuccess: false, Error: reason}, nil
	}

	return LoginResponse{IsSuccess: true, AccessToken: parsed.AccessToken}, nil
}

// Logout invalidates an access token on the backend.
func (b *RestBackend) Logout(ctx context.Context, accessToken string) error {
	body, err := json.Marshal(backendLogoutRequest{AccessToken: accessToken})
	if err != nil {
		return err
	}

	resp, err := b.post(ctx, "/user/logout", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend logout returned %s", resp.Status)
	}
	return nil
}

func (b *RestBackend) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return b.httpClient.Do(req)
}
