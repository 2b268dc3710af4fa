package switchbot

import (
	"context"
	"maps"
)

// StatusOK is the envelope statusCode the cloud returns on success.
const StatusOK = 100

// Device is one entry of the device list. Infrared remotes carry
// RemoteType and are tagged IsInfraredRemote after a merge.
type Device struct {
	ID                 string `json:"deviceId"`
	Name               string `json:"deviceName"`
	DeviceType         string `json:"deviceType,omitempty"`
	RemoteType         string `json:"remoteType,omitempty"`
	HubDeviceID        string `json:"hubDeviceId"`
	EnableCloudService bool   `json:"enableCloudService"`
	IsInfraredRemote   bool   `json:"isInfraredRemote,omitempty"`
}

// DeviceList is the body of GET /devices.
type DeviceList struct {
	Devices         []Device `json:"deviceList"`
	InfraredRemotes []Device `json:"infraredRemoteList"`
}

// Remotes returns the infrared remotes tagged for display: DeviceType falls
// back to RemoteType and cloud service is always reported enabled.
func (l DeviceList) Remotes() []Device {
	out := make([]Device, 0, len(l.InfraredRemotes))
	for _, r := range l.InfraredRemotes {
		if r.DeviceType == "" {
			r.DeviceType = r.RemoteType
		}
		r.EnableCloudService = true
		r.IsInfraredRemote = true
		out = append(out, r)
	}
	return out
}

// Merged returns physical devices followed by the tagged infrared remotes.
func (l DeviceList) Merged() []Device {
	out := make([]Device, 0, len(l.Devices)+len(l.InfraredRemotes))
	out = append(out, l.Devices...)
	return append(out, l.Remotes()...)
}

// Status is the body of GET /devices/{id}/status. Its fields depend on
// the device type.
type Status map[string]any

// Clone returns a shallow copy.
func (s Status) Clone() Status {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Scene is a manual scene configured in the SwitchBot app.
type Scene struct {
	ID   string `json:"sceneId"`
	Name string `json:"sceneName"`
}

// Command is the body of POST /devices/{id}/commands.
type Command struct {
	CommandType string `json:"commandType"`
	Command     string `json:"command"`
	Parameter   any    `json:"parameter"`
}

// withDefaults fills the command type and parameter the way the cloud
// expects when the caller leaves them empty.
func (c Command) withDefaults() Command {
	if c.CommandType == "" {
		c.CommandType = "command"
	}
	if c.Parameter == nil {
		c.Parameter = "default"
	}
	return c
}

// Bridge is the set of cloud operations the orchestration core depends on.
type Bridge interface {
	// SetCredentials replaces the token/secret pair used to sign requests.
	SetCredentials(token, secret string)
	GetDevices(ctx context.Context) (DeviceList, error)
	GetDeviceStatus(ctx context.Context, deviceID string) (Status, error)
	SendCommand(ctx context.Context, deviceID string, cmd Command) error
	GetScenes(ctx context.Context) ([]Scene, error)
	ExecuteScene(ctx context.Context, sceneID string) error
}
