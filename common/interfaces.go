// Package common provides shared constants, types, and utilities
// used across the VPN Demo application.
package common

// Logger defines the interface for leveled logging.
type Logger interface {
	// Trace logs a trace message.
	Trace(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// Notifier defines the interface for sending desktop notifications.
// Delivery is fire and forget; failures stay inside the implementation.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string)
}
