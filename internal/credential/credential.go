package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/0suu/SwitchBotController/internal/store"
	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Status messages reported through State.Message.
const (
	MsgNoneStored        = "No API credentials found in store."
	MsgTesting           = "Testing credentials..."
	MsgValidatedAndSaved = "Credentials validated and saved successfully."
	MsgValidated         = "Credentials validated successfully!"
	MsgNotSet            = "API Token and Secret are not set."
	MsgEmpty             = "Token and Secret cannot be empty."
	msgFailedPrefix      = "Validation failed: "
	msgSaveFailedPrefix  = "Error saving credentials: "
)

var (
	// ErrNotValidated is returned by operations that need a validated pair.
	ErrNotValidated = errors.New("API credentials are not set or not validated.") //nolint:staticcheck // user-facing text

	// ErrEmpty rejects a blank token or secret.
	ErrEmpty = errors.New(MsgEmpty)

	// ErrNotSet is returned by TestStored when nothing is stored.
	ErrNotSet = errors.New(MsgNotSet)

	// ErrValidationFailed wraps the upstream error of a failed probe.
	ErrValidationFailed = errors.New("credential: validation failed")
)

// State is a snapshot of the credential pair and its validation status.
type State struct {
	Token     string `json:"-"`
	Secret    string `json:"-"`
	Validated bool   `json:"validated"`
	Testing   bool   `json:"testing"`
	Message   string `json:"message,omitempty"`
}

// HasPair reports whether both halves are set.
func (s State) HasPair() bool { return s.Token != "" && s.Secret != "" }

// Logger is the logging interface used by Manager.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder receives one call per probe against the cloud.
type Recorder interface {
	CredentialValidated(err error)
}

type noopRecorder struct{}

func (noopRecorder) CredentialValidated(error) {}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l Logger) Option { return func(m *Manager) { m.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option { return func(m *Manager) { m.recorder = r } }

// Manager is the credential state machine.
type Manager struct {
	store    store.Store
	bridge   switchbot.Bridge
	logger   Logger
	recorder Recorder

	op sync.Mutex // serializes ValidateAndCommit, TestStored and Clear

	mu        sync.RWMutex
	state     State
	listeners []func(State)
}

// NewManager creates a Manager in the Unset state. Call Load to pick up a
// stored pair.
func NewManager(st store.Store, bridge switchbot.Bridge, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		bridge:   bridge,
		logger:   noopLogger{},
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers fn to be called after every state transition. fn runs
// on the caller's goroutine and must not call back into ValidateAndCommit,
// TestStored or Clear.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Validated reports whether the current pair has been proven.
func (m *Manager) Validated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Validated
}

// Require returns ErrNotValidated unless the current pair is validated.
func (m *Manager) Require() error {
	if !m.Validated() {
		return ErrNotValidated
	}
	return nil
}

// Load reads the stored pair. It does not probe it; the pair stays
// unvalidated until TestStored succeeds.
func (m *Manager) Load(ctx context.Context) (State, error) {
	m.op.Lock()
	defer m.op.Unlock()

	token, _, err := store.GetString(ctx, m.store, store.KeyAPIToken)
	if err != nil {
		return m.State(), fmt.Errorf("loading token: %w", err)
	}
	secret, _, err := store.GetString(ctx, m.store, store.KeyAPISecret)
	if err != nil {
		return m.State(), fmt.Errorf("loading secret: %w", err)
	}

	next := State{}
	if token != "" && secret != "" {
		next.Token, next.Secret = token, secret
	} else {
		next.Message = MsgNoneStored
	}
	m.bridge.SetCredentials(next.Token, next.Secret)
	return m.set(next), nil
}

// ValidateAndCommit stores token and secret, probes them with a device
// list fetch and keeps them only if the probe succeeds.
//
// Blank input is rejected without touching the state. A failed probe
// restores the previous snapshot and returns an error wrapping both
// ErrValidationFailed and the upstream error. A failed credential write
// is returned as a store.ErrPersistence error.
func (m *Manager) ValidateAndCommit(ctx context.Context, token, secret string) (State, error) {
	token = strings.TrimSpace(token)
	secret = strings.TrimSpace(secret)
	if token == "" || secret == "" {
		return m.State(), ErrEmpty
	}

	m.op.Lock()
	defer m.op.Unlock()

	prev := m.State()
	prev.Testing = false

	m.set(State{Token: prev.Token, Secret: prev.Secret, Testing: true, Message: MsgTesting})

	if err := m.persist(ctx, token, secret); err != nil {
		m.logger.Error("persisting credentials failed", "error", err)
		rollbackErr := m.restore(ctx, prev)
		failed := prev
		failed.Message = msgSaveFailedPrefix + err.Error()
		return m.set(failed), errors.Join(err, rollbackErr)
	}

	m.bridge.SetCredentials(token, secret)
	m.set(State{Token: token, Secret: secret, Testing: true, Message: MsgTesting})

	_, probeErr := m.bridge.GetDevices(ctx)
	m.recorder.CredentialValidated(probeErr)
	if probeErr == nil {
		m.logger.Info("credentials validated and saved")
		return m.set(State{Token: token, Secret: secret, Validated: true, Message: MsgValidatedAndSaved}), nil
	}

	m.logger.Warn("credential validation failed, restoring previous pair",
		"had_previous", prev.HasPair(), "error", probeErr)
	rollbackErr := m.restore(ctx, prev)
	if rollbackErr != nil {
		m.logger.Error("restoring previous credentials failed", "error", rollbackErr)
	}

	failed := prev
	failed.Message = msgFailedPrefix + probeErr.Error()
	return m.set(failed), errors.Join(fmt.Errorf("%w: %w", ErrValidationFailed, probeErr), rollbackErr)
}

// TestStored probes the current pair without changing it.
func (m *Manager) TestStored(ctx context.Context) (State, error) {
	m.op.Lock()
	defer m.op.Unlock()

	cur := m.State()
	if !cur.HasPair() {
		return m.set(State{Message: MsgNotSet}), ErrNotSet
	}

	m.set(State{Token: cur.Token, Secret: cur.Secret, Testing: true, Message: MsgTesting})
	m.bridge.SetCredentials(cur.Token, cur.Secret)

	_, err := m.bridge.GetDevices(ctx)
	m.recorder.CredentialValidated(err)
	if err != nil {
		m.logger.Warn("stored credentials failed validation", "error", err)
		next := State{Token: cur.Token, Secret: cur.Secret, Message: msgFailedPrefix + err.Error()}
		return m.set(next), fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return m.set(State{Token: cur.Token, Secret: cur.Secret, Validated: true, Message: MsgValidated}), nil
}

// Clear deletes the stored pair and resets to Unset. The in-memory state
// is reset even if the delete fails.
func (m *Manager) Clear(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	err := m.erase(ctx)
	m.bridge.SetCredentials("", "")
	m.set(State{})
	return err
}

// restore puts prev back in the store, the bridge and memory.
func (m *Manager) restore(ctx context.Context, prev State) error {
	var err error
	if prev.HasPair() {
		err = m.persist(ctx, prev.Token, prev.Secret)
	} else {
		err = m.erase(ctx)
	}
	m.bridge.SetCredentials(prev.Token, prev.Secret)
	return err
}

func (m *Manager) persist(ctx context.Context, token, secret string) error {
	if err := store.SetJSON(ctx, m.store, store.KeyAPIToken, token); err != nil {
		return err
	}
	return store.SetJSON(ctx, m.store, store.KeyAPISecret, secret)
}

func (m *Manager) erase(ctx context.Context) error {
	return errors.Join(
		m.store.Delete(ctx, store.KeyAPIToken),
		m.store.Delete(ctx, store.KeyAPISecret),
	)
}

// set replaces the state and notifies listeners outside the lock.
func (m *Manager) set(next State) State {
	m.mu.Lock()
	m.state = next
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}
