package device

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Credentials reports whether cloud calls are allowed.
// *credential.Manager satisfies it.
type Credentials interface {
	Validated() bool
}

// Recorder receives command and poll measurements.
// *metrics.Metrics satisfies it.
type Recorder interface {
	CommandStarted()
	CommandFinished(err error)
	PollCompleted(elapsed time.Duration, failures int)
}

type noopRecorder struct{}

func (noopRecorder) CommandStarted()                  {}
func (noopRecorder) CommandFinished(error)            {}
func (noopRecorder) PollCompleted(time.Duration, int) {}

// Registry owns the device list and everything keyed by device id.
type Registry struct {
	bridge   switchbot.Bridge
	creds    Credentials
	logger   Logger
	recorder Recorder
	now      func() time.Time

	// pollLimit caps concurrent status fetches in one cycle; 0 means no cap.
	pollLimit int

	mu          sync.RWMutex
	devices     []Device
	byID        map[string]int
	loading     bool
	listErr     string
	lastFetched time.Time
	statuses    map[string]switchbot.Status
	selected    Selected
	polling     bool

	inFlight     map[string]int
	seq          map[string]uint64
	deviceErrs   map[string]string
	commandError string

	listeners listeners
}

type listeners struct {
	devices []func([]Device)
	status  []func(Device, switchbot.Status)
	command []func(CommandEvent)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l Logger) Option { return func(r *Registry) { r.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option { return func(r *Registry) { r.recorder = rec } }

// WithPollLimit caps concurrent status fetches per poll cycle.
func WithPollLimit(n int) Option { return func(r *Registry) { r.pollLimit = n } }

// NewRegistry creates an empty Registry.
func NewRegistry(bridge switchbot.Bridge, creds Credentials, opts ...Option) *Registry {
	r := &Registry{
		bridge:     bridge,
		creds:      creds,
		logger:     noopLogger{},
		recorder:   noopRecorder{},
		now:        time.Now,
		byID:       make(map[string]int),
		statuses:   make(map[string]switchbot.Status),
		inFlight:   make(map[string]int),
		seq:        make(map[string]uint64),
		deviceErrs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnDevicesChanged registers fn to run after each successful list fetch
// and after Clear.
func (r *Registry) OnDevicesChanged(fn func([]Device)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners.devices = append(r.listeners.devices, fn)
}

// OnStatus registers fn to run for every stored snapshot.
func (r *Registry) OnStatus(fn func(Device, switchbot.Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners.status = append(r.listeners.status, fn)
}

// OnCommand registers fn to run for every settled command.
func (r *Registry) OnCommand(fn func(CommandEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners.command = append(r.listeners.command, fn)
}

// FetchDevices replaces the device list with a fresh one from the cloud:
// physical devices first, then infrared remotes. On failure the previous
// list is kept and the error is stored as the collection error.
func (r *Registry) FetchDevices(ctx context.Context) ([]Device, error) {
	if !r.creds.Validated() {
		r.mu.Lock()
		r.listErr = MsgCheckSettings
		r.loading = false
		r.mu.Unlock()
		return nil, ErrUnauthenticated
	}

	r.mu.Lock()
	r.loading = true
	r.listErr = ""
	r.mu.Unlock()

	list, err := r.bridge.GetDevices(ctx)
	if err != nil {
		r.mu.Lock()
		r.loading = false
		r.listErr = err.Error()
		r.mu.Unlock()
		r.logger.Warn("fetching devices failed", "error", err)
		return nil, err
	}

	merged := list.Merged()
	devices := make([]Device, len(merged))
	byID := make(map[string]int, len(merged))
	for i, d := range merged {
		devices[i] = fromBridge(d)
		byID[d.ID] = i
	}

	r.mu.Lock()
	r.devices = devices
	r.byID = byID
	r.loading = false
	r.lastFetched = r.now()
	for id := range r.statuses {
		if _, ok := byID[id]; !ok {
			delete(r.statuses, id)
		}
	}
	fns := slices.Clone(r.listeners.devices)
	r.mu.Unlock()

	r.logger.Info("device list refreshed", "devices", len(list.Devices), "remotes", len(list.InfraredRemotes))
	out := slices.Clone(devices)
	for _, fn := range fns {
		fn(slices.Clone(out))
	}
	return out, nil
}

// Clear drops the device list, snapshots and collection error. Command
// counters are left alone so in-flight commands still settle cleanly.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.devices = nil
	r.byID = make(map[string]int)
	r.lastFetched = time.Time{}
	r.listErr = ""
	r.statuses = make(map[string]switchbot.Status)
	fns := slices.Clone(r.listeners.devices)
	r.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
}

// Devices returns the device list in fetch order.
func (r *Registry) Devices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.devices)
}

// Device returns one device.
func (r *Registry) Device(id string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deviceLocked(id)
}

func (r *Registry) deviceLocked(id string) (Device, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Device{}, false
	}
	return r.devices[i], true
}

// PollableCount is the number of devices with queryable status.
func (r *Registry) PollableCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, d := range r.devices {
		if d.Pollable() {
			n++
		}
	}
	return n
}

// Status returns the last good snapshot for id.
func (r *Registry) Status(id string) (switchbot.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.statuses[id]
	return s.Clone(), ok
}

// Select makes id the inspected device and fetches its status.
func (r *Registry) Select(ctx context.Context, id string) (Selected, error) {
	r.mu.Lock()
	if r.selected.DeviceID != id {
		r.selected = Selected{DeviceID: id}
	}
	r.mu.Unlock()

	_, err := r.FetchStatus(ctx, id)
	return r.Selected(), err
}

// ClearSelection forgets the inspected device.
func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = Selected{}
}

// Selected returns the inspected device state.
func (r *Registry) Selected() Selected {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.selected
	s.Status = s.Status.Clone()
	return s
}

// View returns a consistent copy of the whole registry state.
func (r *Registry) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make(map[string]switchbot.Status, len(r.statuses))
	for id, s := range r.statuses {
		statuses[id] = s.Clone()
	}
	sel := r.selected
	sel.Status = sel.Status.Clone()

	return View{
		Devices:        slices.Clone(r.devices),
		Loading:        r.loading,
		Error:          r.listErr,
		LastFetched:    r.lastFetched,
		Statuses:       statuses,
		Selected:       sel,
		CommandSending: len(r.inFlight) > 0,
		CommandError:   r.commandError,
		DeviceErrors:   maps.Clone(r.deviceErrs),
		InFlight:       maps.Clone(r.inFlight),
		Polling:        r.polling,
	}
}

// Error returns the collection-level error of the last list fetch.
func (r *Registry) Error() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listErr
}
