// Package common provides shared constants, types, and utilities
// used across the VPN Demo application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.vpndemo.app"
	// AppName is the display name of the application.
	AppName = "VPN Demo"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "vpn-demo"
)

// File names used by the application.
const (
	ConfigFileName = "config.yaml"
	LogFileName    = "vpn-demo.log"
)

// Default backend parameters. These match the demo carrier the
// application ships with; all of them can be overridden via the
// configuration file.
const (
	// DefaultCarrierID identifies the partner carrier on the backend.
	DefaultCarrierID = "afdemo"
	// DefaultBackendURL is the partner backend endpoint.
	DefaultBackendURL = "https://backend.northghost.com"
	// DefaultServiceName is the background tunneling service name.
	DefaultServiceName = "hydrasvc"
)

// Default timeouts and intervals.
const (
	// TrafficPollInterval is how often remaining traffic is refreshed
	// while a session is authenticated.
	TrafficPollInterval = 10 * time.Second
	// BackendCallTimeout bounds individual backend requests.
	BackendCallTimeout = 30 * time.Second
	// InstallTimeout bounds a privileged dependency installation.
	InstallTimeout = 2 * time.Minute
	// ConnectionTimeout bounds waiting for the tunnel to come up.
	ConnectionTimeout = 60 * time.Second
)

// GitHub OAuth parameters.
const (
	// GithubAPIURL is the authorization exchange endpoint.
	GithubAPIURL = "https://api.github.com/authorizations"
	// GithubOTPHeader signals that a one-time password is required.
	GithubOTPHeader = "X-GitHub-OTP"
)
