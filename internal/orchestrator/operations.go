package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/0suu/SwitchBotController/internal/automation"
	"github.com/0suu/SwitchBotController/internal/capability"
	"github.com/0suu/SwitchBotController/internal/device"
	"github.com/0suu/SwitchBotController/internal/ordering"
	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// ErrInvalidCommand is returned for a command request naming neither a
// command nor a command label.
var ErrInvalidCommand = errors.New("command: command or command_label required")

// DeviceInfo is a device with everything a client needs to render it.
type DeviceInfo struct {
	device.Device
	ProfileKey string                 `json:"profile,omitempty"`
	Commands   []capability.Command   `json:"commands"`
	StatusRows []capability.StatusRow `json:"status_rows,omitempty"`
	Status     switchbot.Status       `json:"status,omitempty"`
	Hidden     bool                   `json:"hidden"`
	Busy       bool                   `json:"busy"`
	Error      string                 `json:"error,omitempty"`
	NightLight *automation.Resolution `json:"night_light,omitempty"`
}

// CommandRequest is a command as submitted by a client. Either Command
// or CommandLabel is set; a label is resolved through the device's
// capability profile with Value as the control value.
type CommandRequest struct {
	Command      string `json:"command"`
	Parameter    any    `json:"parameter"`
	CommandType  string `json:"command_type"`
	CommandLabel string `json:"command_label"`
	Value        any    `json:"value"`
}

// DeviceInfos returns the devices in stored order. Hidden devices are
// left out unless all is set.
func (o *Orchestrator) DeviceInfos(all bool) []DeviceInfo {
	devices := o.orderedDevices()
	out := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		if !all && d.Hidden() {
			continue
		}
		out = append(out, o.info(d))
	}
	return out
}

// DeviceInfo returns one device.
func (o *Orchestrator) DeviceInfo(id string) (DeviceInfo, error) {
	d, ok := o.Devices.Device(id)
	if !ok {
		return DeviceInfo{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, id)
	}
	return o.info(d), nil
}

func (o *Orchestrator) info(d device.Device) DeviceInfo {
	info := DeviceInfo{
		Device:   d,
		Commands: []capability.Command{},
		Hidden:   d.Hidden(),
		Busy:     o.Devices.Busy(d.ID),
		Error:    o.Devices.CommandError(d.ID),
	}
	status, hasStatus := o.Devices.Status(d.ID)
	if hasStatus {
		info.Status = status
	}
	if p, ok := d.Profile(); ok {
		info.ProfileKey = p.Key
		if len(p.Commands) > 0 {
			info.Commands = p.Commands
		}
		if hasStatus {
			info.StatusRows = capability.FormatStatus(p, status)
		}
	}
	if _, ok := o.NightLights.Lookup(d.ID); ok {
		res := o.NightLights.Resolve(d.ID, o.Scenes)
		info.NightLight = &res
	}
	return info
}

func (o *Orchestrator) orderedDevices() []device.Device {
	return ordering.Reconcile(o.DeviceOrder.Order(), o.Devices.Devices(), func(d device.Device) string { return d.ID })
}

// OrderedScenes returns the scene list in stored order.
func (o *Orchestrator) OrderedScenes() []automation.Scene {
	return ordering.Reconcile(o.SceneOrder.Order(), o.Scenes.List(), func(s automation.Scene) string { return s.ID })
}

// SendCommand resolves req for device id and dispatches it.
func (o *Orchestrator) SendCommand(ctx context.Context, id string, req CommandRequest) (device.CommandEvent, error) {
	var cmd switchbot.Command
	switch {
	case req.CommandLabel != "":
		resolved, err := o.Devices.ResolveCommand(id, req.CommandLabel, req.Value)
		if err != nil {
			return device.CommandEvent{}, err
		}
		cmd = resolved
	case req.Command != "":
		cmd = switchbot.Command{Command: req.Command, Parameter: req.Parameter, CommandType: req.CommandType}
	default:
		return device.CommandEvent{}, ErrInvalidCommand
	}
	return o.Devices.Send(ctx, id, cmd)
}

// ─── Ordering ───────────────────────────────────────────────────────

// StartDeviceReorder stages the visible device order for editing.
func (o *Orchestrator) StartDeviceReorder() []string {
	return o.DeviceOrder.Start(deviceIDs(o.DeviceInfos(false)))
}

// CommitDeviceReorder saves the staged device order, completed with any
// device it does not name.
func (o *Orchestrator) CommitDeviceReorder(ctx context.Context) ([]string, error) {
	return o.DeviceOrder.Commit(ctx, o.allDeviceIDs())
}

// SetDeviceOrder replaces the device order.
func (o *Orchestrator) SetDeviceOrder(ctx context.Context, ids []string) []string {
	o.DeviceOrder.Cancel()
	o.DeviceOrder.Set(ctx, ids)
	return o.allDeviceIDs()
}

// StartSceneReorder stages the scene order for editing.
func (o *Orchestrator) StartSceneReorder() []string {
	return o.SceneOrder.Start(sceneIDs(o.OrderedScenes()))
}

// CommitSceneReorder saves the staged scene order.
func (o *Orchestrator) CommitSceneReorder(ctx context.Context) ([]string, error) {
	return o.SceneOrder.Commit(ctx, sceneIDs(o.OrderedScenes()))
}

// SetSceneOrder replaces the scene order.
func (o *Orchestrator) SetSceneOrder(ctx context.Context, ids []string) []string {
	o.SceneOrder.Cancel()
	o.SceneOrder.Set(ctx, ids)
	return sceneIDs(o.OrderedScenes())
}

func (o *Orchestrator) allDeviceIDs() []string {
	return ordering.IDs(o.orderedDevices(), func(d device.Device) string { return d.ID })
}

func deviceIDs(infos []DeviceInfo) []string {
	return ordering.IDs(infos, func(i DeviceInfo) string { return i.ID })
}

func sceneIDs(scenes []automation.Scene) []string {
	return ordering.IDs(scenes, func(s automation.Scene) string { return s.ID })
}

// ─── Night lights ───────────────────────────────────────────────────

// NightLight resolves deviceID's night-light assignment.
func (o *Orchestrator) NightLight(deviceID string) automation.Resolution {
	return o.NightLights.Resolve(deviceID, o.Scenes)
}

// NightLightsResolved resolves every assignment.
func (o *Orchestrator) NightLightsResolved() []automation.Resolution {
	all := o.NightLights.All()
	out := make([]automation.Resolution, 0, len(all))
	for _, d := range o.orderedDevices() {
		if _, ok := all[d.ID]; ok {
			out = append(out, o.NightLights.Resolve(d.ID, o.Scenes))
			delete(all, d.ID)
		}
	}
	// Assignments for devices no longer listed keep their place at the end.
	for _, id := range slices.Sorted(maps.Keys(all)) {
		out = append(out, o.NightLights.Resolve(id, o.Scenes))
	}
	return out
}

// AssignNightLight assigns sceneID to deviceID, which must be listed. An
// empty sceneID removes the assignment of any device.
func (o *Orchestrator) AssignNightLight(ctx context.Context, deviceID, sceneID string) (automation.Resolution, error) {
	if _, ok := o.Devices.Device(deviceID); !ok && sceneID != "" {
		return automation.Resolution{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, deviceID)
	}
	o.NightLights.Assign(ctx, deviceID, sceneID)
	return o.NightLight(deviceID), nil
}

// RunNightLight executes deviceID's night-light scene.
func (o *Orchestrator) RunNightLight(ctx context.Context, deviceID string) (automation.Execution, error) {
	return o.NightLights.Run(ctx, deviceID, o.Scenes)
}
