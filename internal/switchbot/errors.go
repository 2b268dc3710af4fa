package switchbot

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned before any request is made when
	// the token or secret is empty.
	ErrMissingCredentials = errors.New("API token and secret not set.") //nolint:staticcheck // user-facing text

	// ErrTransport wraps failures below the envelope: connection errors,
	// non-2xx responses without an envelope, undecodable bodies.
	ErrTransport = errors.New("switchbot: transport failed")

	// ErrDeviceNotFound and ErrSceneNotFound are returned by MockBridge for
	// unknown ids.
	ErrDeviceNotFound = errors.New("Device not found") //nolint:staticcheck // user-facing text
	ErrSceneNotFound  = errors.New("Scene not found")  //nolint:staticcheck // user-facing text
)

// APIError is a response whose envelope statusCode was not StatusOK.
// Message is the cloud's text, unmodified.
type APIError struct {
	StatusCode int
	Message    string
	// Command marks errors returned for device commands.
	Command bool
}

func (e *APIError) Error() string {
	prefix := "API Error"
	if e.Command {
		prefix = "API Command Error"
	}
	return fmt.Sprintf("%s: %s (Status Code: %d)", prefix, e.Message, e.StatusCode)
}
