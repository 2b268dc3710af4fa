package switchbot

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
)

// MockBridge is an in-memory Bridge with demo devices, infrared remotes
// and scenes. Commands mutate the stored statuses so a status refetch
// after a command observes the change.
type MockBridge struct {
	mu       sync.Mutex
	devices  []Device
	remotes  []Device
	statuses map[string]Status
	scenes   []Scene
	commands []MockCall
}

// MockCall records one SendCommand or ExecuteScene call.
type MockCall struct {
	ID      string
	Command Command
}

// NewMockBridge returns a MockBridge loaded with the demo data.
func NewMockBridge() *MockBridge {
	return &MockBridge{
		devices: []Device{
			{ID: "bot-entrance", Name: "Entrance Bot", DeviceType: "Bot", EnableCloudService: true, HubDeviceID: "hub-1"},
			{ID: "meter-living", Name: "Living Room Meter", DeviceType: "Meter", EnableCloudService: true, HubDeviceID: "hub-1"},
			{ID: "curtain-bedroom", Name: "Bedroom Curtain", DeviceType: "Curtain 3", EnableCloudService: true, HubDeviceID: "hub-2"},
			{ID: "plug-desk", Name: "Desk Light", DeviceType: "Plug Mini (US)", EnableCloudService: true, HubDeviceID: "hub-2"},
		},
		remotes: []Device{
			{ID: "ir-tv", Name: "TV", RemoteType: "TV", DeviceType: "TV", HubDeviceID: "hub-2", EnableCloudService: true, IsInfraredRemote: true},
			{ID: "ir-ac", Name: "Air Conditioner", RemoteType: "Air Conditioner", DeviceType: "Air Conditioner", HubDeviceID: "hub-2", EnableCloudService: true, IsInfraredRemote: true},
		},
		statuses: map[string]Status{
			"bot-entrance": {
				"deviceId": "bot-entrance", "deviceType": "Bot", "hubDeviceId": "hub-1",
				"battery": 88.0, "calibration": true,
			},
			"meter-living": {
				"deviceId": "meter-living", "deviceType": "Meter", "hubDeviceId": "hub-1",
				"temperature": 24.6, "humidity": 48.0, "battery": 90.0,
			},
			"curtain-bedroom": {
				"deviceId": "curtain-bedroom", "deviceType": "Curtain 3", "hubDeviceId": "hub-2",
				"slidePosition": 65.0, "moving": false, "battery": 86.0,
			},
			"plug-desk": {
				"deviceId": "plug-desk", "deviceType": "Plug Mini (US)", "hubDeviceId": "hub-2",
				"voltage": 100.0, "electricCurrent": 720.0, "power": "on",
			},
		},
		scenes: []Scene{
			{ID: "scene-relax", Name: "Relax"},
			{ID: "scene-good-morning", Name: "Good Morning"},
			{ID: "scene-quick-off", Name: "All Off"},
		},
	}
}

// SetCredentials implements Bridge. The mock accepts any pair.
func (m *MockBridge) SetCredentials(string, string) {}

// GetDevices implements Bridge.
func (m *MockBridge) GetDevices(ctx context.Context) (DeviceList, error) {
	if err := ctx.Err(); err != nil {
		return DeviceList{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return DeviceList{
		Devices:         append([]Device(nil), m.devices...),
		InfraredRemotes: append([]Device(nil), m.remotes...),
	}, nil
}

// GetDeviceStatus implements Bridge.
func (m *MockBridge) GetDeviceStatus(ctx context.Context, deviceID string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return status.Clone(), nil
}

// SendCommand implements Bridge. Commands to unknown ids succeed without
// effect, which is how the infrared remotes behave.
func (m *MockBridge) SendCommand(ctx context.Context, deviceID string, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd = cmd.withDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, MockCall{ID: deviceID, Command: cmd})

	status, ok := m.statuses[deviceID]
	if !ok {
		return nil
	}
	switch cmd.Command {
	case "turnOn":
		status["power"] = "on"
		status["moving"] = false
	case "turnOff":
		status["power"] = "off"
		status["moving"] = false
	case "setPosition":
		if pos, ok := parsePosition(cmd.Parameter); ok {
			status["slidePosition"] = math.Max(0, math.Min(100, math.Round(pos)))
		}
		status["moving"] = false
	case "press":
		status["lastAction"] = "pressed"
	}
	return nil
}

// GetScenes implements Bridge.
func (m *MockBridge) GetScenes(ctx context.Context) ([]Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Scene(nil), m.scenes...), nil
}

// ExecuteScene implements Bridge.
func (m *MockBridge) ExecuteScene(ctx context.Context, sceneID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scenes {
		if s.ID == sceneID {
			m.commands = append(m.commands, MockCall{ID: sceneID})
			return nil
		}
	}
	return ErrSceneNotFound
}

// Calls returns every command and scene execution received so far.
func (m *MockBridge) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.commands...)
}

// parsePosition reads a curtain position. String parameters use the last
// comma-separated segment, so "0,ff,40" yields 40.
func parsePosition(p any) (float64, bool) {
	switch v := p.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parts := strings.Split(v, ",")
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

var _ Bridge = (*MockBridge)(nil)
