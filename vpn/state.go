package vpn

// AuthState represents the authentication axis of the session.
type AuthState int

const (
	// LoggedOut indicates no authenticated session.
	LoggedOut AuthState = iota
	// LoggingIn indicates a login attempt is in flight.
	LoggingIn
	// LoggedIn indicates an authenticated session with a valid token.
	LoggedIn
	// LoggingOut indicates a logout attempt is in flight.
	LoggingOut
)

// String returns a human-readable representation of the auth state.
func (s AuthState) String() string {
	switch s {
	case LoggedOut:
		return "Logged out"
	case LoggingIn:
		return "Logging in..."
	case LoggedIn:
		return "Logged in"
	case LoggingOut:
		return "Logging out..."
	default:
		return "Unknown"
	}
}

// ConnState represents the connection axis of the session. Connection
// states other than Disconnected are only valid while LoggedIn.
type ConnState int

const (
	// Disconnected indicates no active tunnel.
	Disconnected ConnState = iota
	// Connecting indicates a tunnel is being established.
	Connecting
	// Connected indicates an active, established tunnel.
	Connected
	// Disconnecting indicates the tunnel is being torn down.
	Disconnecting
)

// String returns a human-readable representation of the connection state.
func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting..."
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting..."
	default:
		return "Unknown"
	}
}

// UIState is the set of affordance flags shown to the user. It is a
// pure projection of (AuthState, ConnState); nothing tracks these
// booleans independently.
type UIState struct {
	ShowLoginButton      bool
	ShowLogoutButton     bool
	ShowConnectButton    bool
	ShowDisconnectButton bool
	CredentialsEditable  bool
}

// DeriveUIState computes the affordance flags for a state pair.
func DeriveUIState(auth AuthState, conn ConnState) UIState {
	return UIState{
		ShowLoginButton:      auth == LoggedOut,
		ShowLogoutButton:     auth == LoggedIn && conn == Disconnected,
		ShowConnectButton:    auth == LoggedIn && conn == Disconnected,
		ShowDisconnectButton: auth == LoggedIn && (conn == Connecting || conn == Connected),
		CredentialsEditable:  auth == LoggedOut,
	}
}
