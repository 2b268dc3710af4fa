package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0suu/SwitchBotController/internal/automation"
	"github.com/0suu/SwitchBotController/internal/credential"
	"github.com/0suu/SwitchBotController/internal/device"
	"github.com/0suu/SwitchBotController/internal/ordering"
	"github.com/0suu/SwitchBotController/internal/poller"
	"github.com/0suu/SwitchBotController/internal/settings"
	"github.com/0suu/SwitchBotController/internal/store"
	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Broadcast channels.
const (
	ChannelDeviceStatus  = "device.status"
	ChannelDeviceCommand = "device.command"
	ChannelDevices       = "devices"
	ChannelSceneExecuted = "scene.executed"
	ChannelCredentials   = "credentials"
	ChannelSettings      = "settings"
)

// Logger defines the logging interface used by the Orchestrator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder receives every component's measurements.
// *metrics.Metrics satisfies it.
type Recorder interface {
	device.Recorder
	credential.Recorder
	automation.Recorder
}

// Publisher fans events out to a message bus. *mqtt.Client satisfies it.
type Publisher interface {
	PublishDeviceStatus(deviceID string, status any) error
	PublishCommandResult(deviceID string, event any) error
	PublishSceneExecuted(sceneID string, execution any) error
}

// History stores events for later analysis. *influxdb.Client satisfies it.
type History interface {
	WriteDeviceStatus(deviceID, deviceType string, status map[string]any, at time.Time)
	WriteCommandResult(deviceID, command string, success bool, at time.Time)
	WriteSceneExecution(sceneID string, success bool, at time.Time)
}

// Broadcaster pushes events to connected UI clients. *api.Hub satisfies it.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Config holds the Orchestrator's dependencies.
type Config struct {
	Store  store.Store
	Bridge switchbot.Bridge

	// DefaultIntervalSeconds is the polling interval until one is stored.
	// Zero disables polling; a negative value selects
	// settings.DefaultPollingIntervalSeconds.
	DefaultIntervalSeconds int
	// PollLimit caps concurrent status fetches; 0 means no cap.
	PollLimit int

	Logger   Logger
	Recorder Recorder
}

// Seed is a credential pair used when the store holds none.
type Seed struct {
	Token  string
	Secret string
}

// StatusEvent is published for every stored status snapshot.
type StatusEvent struct {
	DeviceID   string           `json:"device_id"`
	DeviceType string           `json:"device_type"`
	Status     switchbot.Status `json:"status"`
	At         time.Time        `json:"at"`
}

// Orchestrator owns the core components. The exported components may be
// used directly; the Orchestrator only adds the cross-component reactions.
type Orchestrator struct {
	Credentials *credential.Manager
	Settings    *settings.Service
	Devices     *device.Registry
	Scenes      *automation.Scenes
	NightLights *automation.NightLights
	DeviceOrder *ordering.List
	SceneOrder  *ordering.List
	Poller      *poller.Poller

	logger Logger
	now    func() time.Time

	sinkMu      sync.RWMutex
	publisher   Publisher
	history     History
	broadcaster Broadcaster

	mu            sync.Mutex
	ctx           context.Context
	lastValidated bool
	lastToken     string

	bg sync.WaitGroup
}

// New builds the components and registers the reactions between them.
func New(cfg Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = noopLogger{}
	}

	credOpts := []credential.Option{credential.WithLogger(log)}
	devOpts := []device.Option{device.WithLogger(log), device.WithPollLimit(cfg.PollLimit)}
	sceneOpts := []automation.Option{automation.WithLogger(log)}
	if cfg.Recorder != nil {
		credOpts = append(credOpts, credential.WithRecorder(cfg.Recorder))
		devOpts = append(devOpts, device.WithRecorder(cfg.Recorder))
		sceneOpts = append(sceneOpts, automation.WithRecorder(cfg.Recorder))
	}

	o := &Orchestrator{
		logger: log,
		now:    time.Now,
		ctx:    context.Background(),
	}
	o.Credentials = credential.NewManager(cfg.Store, cfg.Bridge, credOpts...)
	o.Settings = settings.NewService(cfg.Store, cfg.DefaultIntervalSeconds, log)
	o.Devices = device.NewRegistry(cfg.Bridge, o.Credentials, devOpts...)
	o.Scenes = automation.NewScenes(cfg.Bridge, o.Credentials, sceneOpts...)
	o.NightLights = automation.NewNightLights(cfg.Store, log)
	o.DeviceOrder = ordering.NewList(cfg.Store, store.KeyDeviceOrder, log)
	o.SceneOrder = ordering.NewList(cfg.Store, store.KeySceneOrder, log)
	o.Poller = poller.New(o.poll, poller.WithLogger(log))

	o.Credentials.OnChange(o.onCredentials)
	o.Settings.OnChange(o.onSettings)
	o.Devices.OnDevicesChanged(o.onDevices)
	o.Devices.OnStatus(o.onStatus)
	o.Devices.OnCommand(o.onCommand)
	o.Scenes.OnExecuted(o.onScene)

	return o
}

// SetPublisher attaches a message bus sink.
func (o *Orchestrator) SetPublisher(p Publisher) {
	o.sinkMu.Lock()
	defer o.sinkMu.Unlock()
	o.publisher = p
}

// SetHistory attaches a time-series sink.
func (o *Orchestrator) SetHistory(h History) {
	o.sinkMu.Lock()
	defer o.sinkMu.Unlock()
	o.history = h
}

// SetBroadcaster attaches a UI push sink.
func (o *Orchestrator) SetBroadcaster(b Broadcaster) {
	o.sinkMu.Lock()
	defer o.sinkMu.Unlock()
	o.broadcaster = b
}

// Start loads persisted state, validates credentials (stored ones, or
// seed when none are stored), loads the device and scene lists and
// starts polling. ctx bounds background work; cancel it, then call Stop.
func (o *Orchestrator) Start(ctx context.Context, seed Seed) error {
	o.mu.Lock()
	o.ctx = ctx
	o.mu.Unlock()

	if _, err := o.Settings.Load(ctx); err != nil {
		o.logger.Warn("loading preferences failed, using defaults", "error", err)
	}
	o.DeviceOrder.Load(ctx)
	o.SceneOrder.Load(ctx)
	o.NightLights.Load(ctx)

	st, err := o.Credentials.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	switch {
	case st.HasPair():
		if _, err := o.Credentials.TestStored(ctx); err != nil {
			o.logger.Warn("stored credentials are not valid", "error", err)
		}
	case seed.Token != "" && seed.Secret != "":
		if _, err := o.Credentials.ValidateAndCommit(ctx, seed.Token, seed.Secret); err != nil {
			o.logger.Warn("seed credentials are not valid", "error", err)
		}
	default:
		o.logger.Info("no credentials stored; set them via the settings API")
	}

	// Validation kicks off the list refresh in the background.
	o.bg.Wait()
	o.reconfigure()
	return nil
}

// Stop stops polling and waits for background refreshes.
func (o *Orchestrator) Stop() {
	o.Poller.Stop()
	o.bg.Wait()
}

// Refresh fetches the device and scene lists concurrently.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		if _, err := o.Devices.FetchDevices(ctx); err != nil {
			return fmt.Errorf("fetching devices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := o.Scenes.Fetch(ctx); err != nil {
			return fmt.Errorf("fetching scenes: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (o *Orchestrator) poll(ctx context.Context) error {
	_, err := o.Devices.PollAll(ctx)
	return err
}

// reconfigure feeds the current enable inputs to the poller.
func (o *Orchestrator) reconfigure() {
	o.mu.Lock()
	ctx := o.ctx
	o.mu.Unlock()

	o.Poller.Reconfigure(ctx, poller.Condition{
		Validated:       o.Credentials.Validated(),
		IntervalSeconds: o.Settings.Get().PollingIntervalSeconds,
		DeviceCount:     o.Devices.PollableCount(),
	})
}

// ─── Reactions ──────────────────────────────────────────────────────

func (o *Orchestrator) onCredentials(st credential.State) {
	o.broadcast(ChannelCredentials, st)
	if st.Testing {
		return
	}

	o.mu.Lock()
	wasValidated, prevToken := o.lastValidated, o.lastToken
	o.lastValidated, o.lastToken = st.Validated, st.Token
	ctx := o.ctx
	o.mu.Unlock()

	switch {
	case st.Validated && (!wasValidated || prevToken != st.Token):
		o.bg.Add(1)
		go func() {
			defer o.bg.Done()
			if err := o.Refresh(ctx); err != nil {
				o.logger.Warn("refresh after validation failed", "error", err)
			}
			o.reconfigure()
		}()
	case !st.Validated && wasValidated:
		o.logger.Info("credentials invalidated, clearing device and scene state")
		// An in-flight refresh must land before the clear, not after it.
		o.bg.Wait()
		o.Devices.ClearSelection()
		o.Devices.ClearAllCommandErrors()
		o.Devices.Clear()
		o.Scenes.Clear()
	}
	o.reconfigure()
}

func (o *Orchestrator) onSettings(p settings.Preferences) {
	o.broadcast(ChannelSettings, p)
	o.reconfigure()
}

func (o *Orchestrator) onDevices(devices []device.Device) {
	o.broadcast(ChannelDevices, map[string]int{"count": len(devices)})
	o.reconfigure()
}

func (o *Orchestrator) onStatus(d device.Device, status switchbot.Status) {
	ev := StatusEvent{DeviceID: d.ID, DeviceType: d.DeviceType, Status: status, At: o.now()}

	pub, hist := o.sinks()
	if pub != nil {
		if err := pub.PublishDeviceStatus(d.ID, ev); err != nil {
			o.logger.Debug("publishing status failed", "device_id", d.ID, "error", err)
		}
	}
	if hist != nil {
		hist.WriteDeviceStatus(d.ID, d.DeviceType, status, ev.At)
	}
	o.broadcast(ChannelDeviceStatus, ev)
}

func (o *Orchestrator) onCommand(ev device.CommandEvent) {
	pub, hist := o.sinks()
	if pub != nil {
		if err := pub.PublishCommandResult(ev.DeviceID, ev); err != nil {
			o.logger.Debug("publishing command result failed", "device_id", ev.DeviceID, "error", err)
		}
	}
	if hist != nil {
		hist.WriteCommandResult(ev.DeviceID, ev.Command, ev.Success, ev.At)
	}
	o.broadcast(ChannelDeviceCommand, ev)
}

func (o *Orchestrator) onScene(ex automation.Execution) {
	pub, hist := o.sinks()
	if pub != nil {
		if err := pub.PublishSceneExecuted(ex.SceneID, ex); err != nil {
			o.logger.Debug("publishing scene execution failed", "scene_id", ex.SceneID, "error", err)
		}
	}
	if hist != nil {
		hist.WriteSceneExecution(ex.SceneID, ex.Success, ex.At)
	}
	o.broadcast(ChannelSceneExecuted, ex)
}

func (o *Orchestrator) sinks() (Publisher, History) {
	o.sinkMu.RLock()
	defer o.sinkMu.RUnlock()
	return o.publisher, o.history
}

func (o *Orchestrator) broadcast(channel string, payload any) {
	o.sinkMu.RLock()
	b := o.broadcaster
	o.sinkMu.RUnlock()
	if b != nil {
		b.Broadcast(channel, payload)
	}
}
