package device

import (
	"context"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Send issues cmd to deviceID and blocks until the cloud answers.
//
// The device's previous error is cleared and its in-flight counter
// incremented before the call; the counter is decremented on both paths.
// A failure is written to the device's error slot only if no newer
// command for the same device was issued meanwhile. On success a status
// fetch follows unless the device is an infrared remote; that fetch's own
// error does not fail Send.
func (r *Registry) Send(ctx context.Context, deviceID string, cmd switchbot.Command) (CommandEvent, error) {
	if !r.creds.Validated() {
		return CommandEvent{}, ErrUnauthenticated
	}
	if cmd.CommandType == "" {
		cmd.CommandType = "command"
	}
	if cmd.Parameter == nil {
		cmd.Parameter = "default"
	}

	r.mu.Lock()
	delete(r.deviceErrs, deviceID)
	r.commandError = ""
	r.inFlight[deviceID]++
	r.seq[deviceID]++
	mySeq := r.seq[deviceID]
	dev, known := r.deviceLocked(deviceID)
	r.mu.Unlock()
	r.recorder.CommandStarted()

	err := r.bridge.SendCommand(ctx, deviceID, cmd)

	r.mu.Lock()
	if r.inFlight[deviceID] > 1 {
		r.inFlight[deviceID]--
	} else {
		delete(r.inFlight, deviceID)
	}
	stale := mySeq != r.seq[deviceID]
	if err != nil && !stale {
		r.deviceErrs[deviceID] = err.Error()
		r.commandError = err.Error()
	}
	fns := slices.Clone(r.listeners.command)
	r.mu.Unlock()
	r.recorder.CommandFinished(err)

	ev := CommandEvent{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		Command:     cmd.Command,
		Parameter:   cmd.Parameter,
		CommandType: cmd.CommandType,
		Success:     err == nil,
		At:          r.now(),
	}
	if err != nil {
		ev.Error = err.Error()
		if stale {
			r.logger.Debug("discarding error of superseded command", "device_id", deviceID, "command", cmd.Command, "error", err)
		} else {
			r.logger.Warn("command failed", "device_id", deviceID, "command", cmd.Command, "error", err)
		}
	} else {
		r.logger.Debug("command sent", "device_id", deviceID, "command", cmd.Command)
	}

	for _, fn := range fns {
		fn(ev)
	}

	if err != nil {
		return ev, err
	}
	if !known || !dev.IsInfraredRemote {
		if _, fetchErr := r.FetchStatus(ctx, deviceID); fetchErr != nil {
			r.logger.Debug("status refresh after command failed", "device_id", deviceID, "error", fetchErr)
		}
	}
	return ev, nil
}

// Busy reports whether deviceID has commands in flight.
func (r *Registry) Busy(deviceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inFlight[deviceID] > 0
}

// AnyBusy reports whether any device has commands in flight.
func (r *Registry) AnyBusy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.inFlight) > 0
}

// InFlight returns the number of outstanding commands for deviceID.
func (r *Registry) InFlight(deviceID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inFlight[deviceID]
}

// CommandError returns the last recorded command error for deviceID.
func (r *Registry) CommandError(deviceID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deviceErrs[deviceID]
}

// LastCommandError returns the most recent command failure across devices.
func (r *Registry) LastCommandError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commandError
}

// ClearCommandError clears deviceID's error slot. The global error falls
// back to another device's error, if any remain.
func (r *Registry) ClearCommandError(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deviceErrs, deviceID)

	r.commandError = ""
	ids := make([]string, 0, len(r.deviceErrs))
	for id := range r.deviceErrs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if msg := r.deviceErrs[id]; msg != "" {
			r.commandError = msg
			break
		}
	}
}

// ClearAllCommandErrors clears every error slot and the global error.
func (r *Registry) ClearAllCommandErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deviceErrs = make(map[string]string)
	r.commandError = ""
}
