// Package vpn contains the session core: the client boundary types,
// the session controller state machine, and the telemetry poller.
package vpn

import "context"

// CountriesResult is the client's answer to a country list request.
type CountriesResult struct {
	IsSuccess bool
	Countries []string
	Error     string
}

// RemainingTraffic is the client's answer to a traffic quota request.
// IsSuccess false marks the quota as unavailable for this poll.
type RemainingTraffic struct {
	IsSuccess   bool
	IsUnlimited bool
	Used        uint64
	Remaining   uint64
}

// Client is the opaque VPN client handle. One instance is constructed
// per authenticated session and discarded on logout; instances are
// never reused across sessions.
type Client interface {
	// Logout invalidates the session on the backend.
	Logout(ctx context.Context) error
	// StartVpn requests a tunnel to the given country ("" means best
	// available). Reaching the connected state is reported through the
	// connected-changed event, not the call's return.
	StartVpn(ctx context.Context, country string) error
	// StopVpn tears the tunnel down.
	StopVpn(ctx context.Context) error
	// GetCountries lists the countries available to this session.
	GetCountries(ctx context.Context) (CountriesResult, error)
	// GetRemainingTraffic reports the session's traffic quota.
	GetRemainingTraffic(ctx context.Context) (RemainingTraffic, error)
	// SetOnConnectedChanged registers the tunnel state event handler.
	SetOnConnectedChanged(handler func(connected bool))
	// SetOnStatisticsChanged registers the statistics event handler.
	SetOnStatisticsChanged(handler func(bytesSent, bytesReceived uint64))
	// Close detaches all event handlers and releases the handle.
	Close() error
}

// ClientConfig carries the per-session bootstrap parameters.
type ClientConfig struct {
	CarrierID         string
	BackendURL        string
	DeviceID          string
	ServiceName       string
	AccessToken       string
	BypassDomains     []string
	ReconnectOnWakeUp bool
}

// ClientFactory constructs a fresh Client for one session.
type ClientFactory interface {
	New(cfg ClientConfig) (Client, error)
}
