// Package common provides shared constants, types, utilities, and interfaces
// used throughout the VPN Demo application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, backend defaults, and file names
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Logger: Leveled logging with file rotation and an observable entry stream
//   - Utils: Machine identity, byte formatting, and file helpers
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/stojanovic-vukas/vpn-demo/common"
//
//	// Use constants
//	interval := common.TrafficPollInterval
//
//	// Use logger
//	common.LogInfo("Login successful for device %s", deviceID)
//
//	// Check errors
//	if errors.Is(err, common.ErrLoginInProgress) {
//	    // Reject re-entrant login
//	}
package common
