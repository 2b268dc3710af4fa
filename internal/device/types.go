package device

import (
	"time"

	"github.com/0suu/SwitchBotController/internal/capability"
	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Device is one entry of the merged device list. It is replaced, never
// modified, when the list is fetched again.
type Device struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	DeviceType         string `json:"device_type"`
	RemoteType         string `json:"remote_type,omitempty"`
	HubID              string `json:"hub_id,omitempty"`
	EnableCloudService bool   `json:"enable_cloud_service"`
	IsInfraredRemote   bool   `json:"is_infrared_remote"`
}

func fromBridge(d switchbot.Device) Device {
	return Device{
		ID:                 d.ID,
		Name:               d.Name,
		DeviceType:         d.DeviceType,
		RemoteType:         d.RemoteType,
		HubID:              d.HubDeviceID,
		EnableCloudService: d.EnableCloudService,
		IsInfraredRemote:   d.IsInfraredRemote,
	}
}

// Capability returns the fields classification needs.
func (d Device) Capability() capability.Device {
	return capability.Device{
		DeviceType:       d.DeviceType,
		RemoteType:       d.RemoteType,
		IsInfraredRemote: d.IsInfraredRemote,
	}
}

// Profile resolves the device's capability profile. ok is false for
// unclassified physical devices.
func (d Device) Profile() (capability.Profile, bool) {
	return capability.ProfileFor(d.Capability())
}

// Hidden reports whether the device belongs out of user-facing lists.
// Infrared remotes are never hidden.
func (d Device) Hidden() bool {
	if d.IsInfraredRemote {
		return false
	}
	return capability.ShouldHide(d.DeviceType)
}

// Pollable reports whether the device has queryable status.
func (d Device) Pollable() bool { return !d.IsInfraredRemote }

// Selected is the device currently being inspected.
type Selected struct {
	DeviceID    string           `json:"device_id,omitempty"`
	Status      switchbot.Status `json:"status,omitempty"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	LastFetched time.Time        `json:"last_fetched,omitempty"`
}

// PollResult is the outcome of one device's fetch in a poll cycle.
// Exactly one of Status and Err is set; Message repeats Err's text.
type PollResult struct {
	DeviceID string           `json:"device_id"`
	Status   switchbot.Status `json:"status,omitempty"`
	Err      error            `json:"-"`
	Message  string           `json:"error,omitempty"`
}

// CommandEvent describes one settled command.
type CommandEvent struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	Command     string    `json:"command"`
	Parameter   any       `json:"parameter"`
	CommandType string    `json:"command_type"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}

// View is a consistent copy of the registry state.
type View struct {
	Devices        []Device                    `json:"devices"`
	Loading        bool                        `json:"loading"`
	Error          string                      `json:"error,omitempty"`
	LastFetched    time.Time                   `json:"last_fetched,omitempty"`
	Statuses       map[string]switchbot.Status `json:"statuses"`
	Selected       Selected                    `json:"selected"`
	CommandSending bool                        `json:"command_sending"`
	CommandError   string                      `json:"command_error,omitempty"`
	DeviceErrors   map[string]string           `json:"device_errors"`
	InFlight       map[string]int              `json:"in_flight"`
	Polling        bool                        `json:"polling"`
}
