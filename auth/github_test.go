package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

func TestGithubProvider_TokenIssued(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")

		var req authorizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.ClientID != "client-id" {
			t.Errorf("client_id = %q, want client-id", req.ClientID)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(authorizeResponse{Token: "gh_abc"})
	}))
	defer server.Close()

	p := NewGithubProvider(server.URL, "client-id", "client-secret")
	result, err := p.Authorize(context.Background(), "octocat", "secret", "")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	if result.Status != AuthorizeOK {
		t.Errorf("status = %v, want AuthorizeOK", result.Status)
	}
	if result.Token != "gh_abc" {
		t.Errorf("token = %q, want gh_abc", result.Token)
	}
	if gotAuth == "" {
		t.Error("request should carry basic authorization")
	}
	if gotAgent != "octocat" {
		t.Errorf("User-Agent = %q, want octocat", gotAgent)
	}
}

func TestGithubProvider_UnauthorizedWithOTPHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(common.GithubOTPHeader, "required; app")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewGithubProvider(server.URL, "id", "secret")
	result, err := p.Authorize(context.Background(), "octocat", "secret", "")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	if result.Status != AuthorizeUnauthorized {
		t.Errorf("status = %v, want AuthorizeUnauthorized", result.Status)
	}
	if !result.OTPRequired {
		t.Error("OTPRequired should be set when the header is present")
	}
}

func TestGithubProvider_UnauthorizedWithoutOTPHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewGithubProvider(server.URL, "id", "secret")
	result, err := p.Authorize(context.Background(), "octocat", "wrong", "")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	if result.Status != AuthorizeUnauthorized || result.OTPRequired {
		t.Errorf("result = %+v, want plain unauthorized", result)
	}
}

func TestGithubProvider_OTPCodeForwarded(t *testing.T) {
	var gotOTP string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOTP = r.Header.Get(common.GithubOTPHeader)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(authorizeResponse{Token: "gh_abc"})
	}))
	defer server.Close()

	p := NewGithubProvider(server.URL, "id", "secret")
	if _, err := p.Authorize(context.Background(), "octocat", "secret", "445566"); err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	if gotOTP != "445566" {
		t.Errorf("OTP header = %q, want 445566", gotOTP)
	}
}

func TestGithubProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewGithubProvider(server.URL, "id", "secret")
	result, err := p.Authorize(context.Background(), "octocat", "secret", "")
	if err == nil {
		t.Error("Authorize() should report non-auth HTTP failures")
	}
	if result.Status != AuthorizeFailed {
		t.Errorf("status = %v, want AuthorizeFailed", result.Status)
	}
}

func TestGithubProvider_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // deliberately closed

	p := NewGithubProvider(server.URL, "id", "secret")
	result, err := p.Authorize(context.Background(), "octocat", "secret", "")
	if err == nil {
		t.Error("Authorize() should surface transport errors")
	}
	if result.Status != AuthorizeFailed {
		t.Errorf("status = %v, want AuthorizeFailed", result.Status)
	}
}

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeAnonymous, "anonymous"},
		{ModeGithub, "github"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.expected {
				t.Errorf("Mode.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
