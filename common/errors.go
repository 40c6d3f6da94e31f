// Package common provides shared constants, types, and utilities
// used across the VPN Demo application.
package common

import "errors"

// Sentinel errors for session orchestration.
// These can be checked with errors.Is() for proper error handling.
var (
	// Session errors.
	ErrLoginInProgress      = errors.New("login already in progress")
	ErrLogoutInProgress     = errors.New("logout already in progress")
	ErrAlreadyLoggedIn      = errors.New("already logged in")
	ErrNotLoggedIn          = errors.New("not logged in")
	ErrConnectInProgress    = errors.New("connection attempt already in progress")
	ErrDisconnectInProgress = errors.New("disconnect already in progress")
	ErrAlreadyConnected     = errors.New("connection already active")

	// Authentication errors.
	ErrLoginFailed   = errors.New("backend login failed")
	ErrOAuthFailed   = errors.New("could not perform GitHub authorization")
	ErrAuthCancelled = errors.New("authorization cancelled")

	// Dependency errors.
	ErrDriverInstall  = errors.New("unable to install tunneling driver")
	ErrServiceInstall = errors.New("unable to install tunneling service")

	// Connection errors.
	ErrConnectionFailed = errors.New("connection failed")
	ErrTimeout          = errors.New("operation timed out")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
