package device

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0suu/SwitchBotController/internal/switchbot"
)

const pollFailedPrefix = "Polling failed: "

// FetchStatus refreshes one device's snapshot. If the device is the
// selected one its loading flag and error follow the fetch. A failure
// leaves the previous snapshot in place.
func (r *Registry) FetchStatus(ctx context.Context, deviceID string) (switchbot.Status, error) {
	if !r.creds.Validated() {
		r.mu.Lock()
		if r.selected.DeviceID == deviceID || r.selected.DeviceID == "" {
			r.selected.Error = ErrUnauthenticated.Error()
			r.selected.Loading = false
		}
		r.mu.Unlock()
		return nil, ErrUnauthenticated
	}

	r.mu.Lock()
	if r.selected.DeviceID == deviceID {
		r.selected.Loading = true
		r.selected.Error = ""
	}
	r.mu.Unlock()

	status, err := r.bridge.GetDeviceStatus(ctx, deviceID)

	r.mu.Lock()
	if err != nil {
		if r.selected.DeviceID == deviceID {
			r.selected.Loading = false
			r.selected.Error = err.Error()
		}
		r.mu.Unlock()
		return nil, err
	}
	r.statuses[deviceID] = status.Clone()
	if r.selected.DeviceID == deviceID {
		r.selected.Status = status.Clone()
		r.selected.Loading = false
		r.selected.LastFetched = r.now()
		r.selected.Error = ""
	}
	dev, _ := r.deviceLocked(deviceID)
	fns := slices.Clone(r.listeners.status)
	r.mu.Unlock()

	if dev.ID == "" {
		dev.ID = deviceID
	}
	for _, fn := range fns {
		fn(dev, status.Clone())
	}
	return status, nil
}

// PollAll fetches every pollable device's status in parallel. Each fetch
// is isolated: the result has one entry per pollable device, carrying
// either a status or an error, and a failed fetch never cancels the
// others nor clears a snapshot. The returned error is non-nil only when
// the cycle could not start.
func (r *Registry) PollAll(ctx context.Context) ([]PollResult, error) {
	if !r.creds.Validated() {
		return nil, ErrUnauthenticated
	}

	r.mu.Lock()
	if len(r.devices) == 0 {
		r.mu.Unlock()
		return nil, ErrNoDevices
	}
	targets := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		if d.Pollable() {
			targets = append(targets, d)
		}
	}
	r.polling = true
	r.mu.Unlock()

	start := r.now()
	results := make([]PollResult, len(targets))

	var g errgroup.Group
	if r.pollLimit > 0 {
		g.SetLimit(r.pollLimit)
	}
	for i, d := range targets {
		g.Go(func() error {
			status, err := r.bridge.GetDeviceStatus(ctx, d.ID)
			if err != nil {
				results[i] = PollResult{DeviceID: d.ID, Err: err, Message: err.Error()}
				return nil
			}
			results[i] = PollResult{DeviceID: d.ID, Status: status}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return an error

	failures := 0
	fetchedAt := r.now()

	r.mu.Lock()
	for _, res := range results {
		if res.Err != nil {
			failures++
			if r.selected.DeviceID == res.DeviceID {
				r.selected.Error = pollFailedPrefix + res.Err.Error()
			}
			continue
		}
		r.statuses[res.DeviceID] = res.Status.Clone()
		if r.selected.DeviceID == res.DeviceID {
			r.selected.Status = res.Status.Clone()
			r.selected.LastFetched = fetchedAt
			r.selected.Error = ""
		}
	}
	r.polling = false
	fns := slices.Clone(r.listeners.status)
	r.mu.Unlock()

	elapsed := r.now().Sub(start)
	r.recorder.PollCompleted(elapsed, failures)
	if failures > 0 {
		r.logger.Warn("poll cycle had failures", "devices", len(targets), "failures", failures)
	} else {
		r.logger.Debug("poll cycle complete", "devices", len(targets), "elapsed", elapsed.Round(time.Millisecond))
	}

	for i, res := range results {
		if res.Err != nil {
			continue
		}
		for _, fn := range fns {
			fn(targets[i], res.Status.Clone())
		}
	}
	return results, nil
}

// Polling reports whether a poll cycle is running.
func (r *Registry) Polling() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.polling
}
