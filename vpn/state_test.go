package vpn

import "testing"

func TestAuthState_String(t *testing.T) {
	tests := []struct {
		state    AuthState
		expected string
	}{
		{LoggedOut, "Logged out"},
		{LoggingIn, "Logging in..."},
		{LoggedIn, "Logged in"},
		{LoggingOut, "Logging out..."},
		{AuthState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestConnState_String(t *testing.T) {
	tests := []struct {
		state    ConnState
		expected string
	}{
		{Disconnected, "Disconnected"},
		{Connecting, "Connecting..."},
		{Connected, "Connected"},
		{Disconnecting, "Disconnecting..."},
		{ConnState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestDeriveUIState(t *testing.T) {
	tests := []struct {
		name     string
		auth     AuthState
		conn     ConnState
		expected UIState
	}{
		{
			name: "logged out shows login only",
			auth: LoggedOut,
			conn: Disconnected,
			expected: UIState{
				ShowLoginButton:     true,
				CredentialsEditable: true,
			},
		},
		{
			name: "logging in shows nothing",
			auth: LoggingIn,
			conn: Disconnected,
			expected: UIState{},
		},
		{
			name: "logged in idle shows logout and connect",
			auth: LoggedIn,
			conn: Disconnected,
			expected: UIState{
				ShowLogoutButton:  true,
				ShowConnectButton: true,
			},
		},
		{
			name: "connecting shows disconnect only",
			auth: LoggedIn,
			conn: Connecting,
			expected: UIState{
				ShowDisconnectButton: true,
			},
		},
		{
			name: "connected shows disconnect only",
			auth: LoggedIn,
			conn: Connected,
			expected: UIState{
				ShowDisconnectButton: true,
			},
		},
		{
			name:     "logging out shows nothing",
			auth:     LoggingOut,
			conn:     Disconnected,
			expected: UIState{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveUIState(tt.auth, tt.conn); got != tt.expected {
				t.Errorf("DeriveUIState(%v, %v) = %+v, expected %+v", tt.auth, tt.conn, got, tt.expected)
			}
		})
	}
}
