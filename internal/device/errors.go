package device

import (
	"errors"

	"github.com/0suu/SwitchBotController/internal/credential"
)

// MsgCheckSettings is the collection-level error shown when a device list
// fetch is attempted without validated credentials.
const MsgCheckSettings = "API credentials are not set or not validated. Please check settings."

var (
	// ErrUnauthenticated is returned without any network call when the
	// credentials are not validated. It is credential.ErrNotValidated.
	ErrUnauthenticated = credential.ErrNotValidated

	// ErrDeviceNotFound is returned for ids absent from the device list.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrNoDevices is returned by PollAll before the first device fetch.
	ErrNoDevices = errors.New("No devices to poll.") //nolint:staticcheck // user-facing text

	// ErrUnknownCommand is returned when a command label is not part of
	// the device's capability profile.
	ErrUnknownCommand = errors.New("device: command not supported")
)
