package device

import (
	"fmt"

	"github.com/0suu/SwitchBotController/internal/capability"
	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// ResolveCommand turns a profile command label (or raw command name) and
// a control value into the command to send. A nil value selects the
// parameter's default.
func (r *Registry) ResolveCommand(deviceID, label string, value any) (switchbot.Command, error) {
	dev, ok := r.Device(deviceID)
	if !ok {
		return switchbot.Command{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	profile, ok := dev.Profile()
	if !ok {
		return switchbot.Command{}, fmt.Errorf("%w: %s has no capability profile", ErrUnknownCommand, dev.DeviceType)
	}
	cmd, ok := profile.FindCommand(label)
	if !ok {
		return switchbot.Command{}, fmt.Errorf("%w: %q for %s", ErrUnknownCommand, label, dev.DeviceType)
	}

	return switchbot.Command{
		CommandType: cmd.Type(),
		Command:     cmd.Command,
		Parameter:   capability.ResolveValue(cmd.Parameter, value),
	}, nil
}
