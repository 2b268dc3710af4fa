// Package settings holds the user preferences that live next to the
// credentials in the key/value store: polling interval, theme, language
// and the last opened view.
//
// Preference writes are best effort. A failed store write is logged and
// the in-memory value still changes.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/0suu/SwitchBotController/internal/store"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Language is the UI language.
type Language string

const (
	LanguageEN Language = "en"
	LanguageJA Language = "ja"
)

// View is the screen the UI reopens on.
type View string

const (
	ViewList     View = "list"
	ViewSettings View = "settings"
	ViewScenes   View = "scenes"
	// ViewDetail is accepted but persisted as ViewList; a detail view
	// without its device is meaningless after a restart.
	ViewDetail View = "detail"
)

// DefaultPollingIntervalSeconds applies when nothing is stored and no
// other default is configured.
const DefaultPollingIntervalSeconds = 60

var (
	// ErrInvalidInterval rejects negative polling intervals.
	ErrInvalidInterval = errors.New("settings: polling interval must be >= 0")
	// ErrInvalidValue rejects unknown enum values.
	ErrInvalidValue = errors.New("settings: invalid value")
)

// Preferences is a snapshot of all preferences.
type Preferences struct {
	PollingIntervalSeconds int      `json:"polling_interval_seconds"`
	Theme                  Theme    `json:"theme"`
	Language               Language `json:"language"`
	LastView               View     `json:"last_view"`
}

// Patch carries optional updates; nil fields are left unchanged.
type Patch struct {
	PollingIntervalSeconds *int      `json:"polling_interval_seconds,omitempty"`
	Theme                  *Theme    `json:"theme,omitempty"`
	Language               *Language `json:"language,omitempty"`
	LastView               *View     `json:"last_view,omitempty"`
}

// Logger is the logging interface used by Service.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Service owns the preferences.
type Service struct {
	store  store.Store
	logger Logger

	mu        sync.RWMutex
	prefs     Preferences
	listeners []func(Preferences)
}

// NewService creates a Service holding the defaults. defaultInterval
// replaces DefaultPollingIntervalSeconds when it is >= 0.
func NewService(st store.Store, defaultInterval int, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	if defaultInterval < 0 {
		defaultInterval = DefaultPollingIntervalSeconds
	}
	return &Service{
		store:  st,
		logger: logger,
		prefs: Preferences{
			PollingIntervalSeconds: defaultInterval,
			Theme:                  ThemeSystem,
			Language:               LanguageEN,
			LastView:               ViewList,
		},
	}
}

// OnChange registers fn to run after every successful update.
func (s *Service) OnChange(fn func(Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get returns the current preferences.
func (s *Service) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Load reads stored preferences. Stored values of the wrong type or
// outside the allowed set are ignored and the default kept.
func (s *Service) Load(ctx context.Context) (Preferences, error) {
	var interval float64
	found, err := store.GetJSON(ctx, s.store, store.KeyPollingInterval, &interval)
	if err != nil {
		s.logger.Warn("ignoring stored polling interval", "error", err)
		found = false
	}

	theme, _, err := store.GetString(ctx, s.store, store.KeyTheme)
	if err != nil {
		return s.Get(), fmt.Errorf("loading theme: %w", err)
	}
	lang, _, err := store.GetString(ctx, s.store, store.KeyLanguage)
	if err != nil {
		return s.Get(), fmt.Errorf("loading language: %w", err)
	}
	view, _, err := store.GetString(ctx, s.store, store.KeyLastView)
	if err != nil {
		return s.Get(), fmt.Errorf("loading last view: %w", err)
	}

	s.mu.Lock()
	if found && interval >= 0 {
		s.prefs.PollingIntervalSeconds = int(interval)
	}
	if validTheme(Theme(theme)) {
		s.prefs.Theme = Theme(theme)
	}
	if validLanguage(Language(lang)) {
		s.prefs.Language = Language(lang)
	}
	if v := View(view); validView(v) && v != ViewDetail {
		s.prefs.LastView = v
	}
	prefs := s.prefs
	s.mu.Unlock()
	return prefs, nil
}

// Update validates and applies p. Nothing changes if any field is invalid.
func (s *Service) Update(ctx context.Context, p Patch) (Preferences, error) {
	if p.PollingIntervalSeconds != nil && *p.PollingIntervalSeconds < 0 {
		return s.Get(), ErrInvalidInterval
	}
	if p.Theme != nil && !validTheme(*p.Theme) {
		return s.Get(), fmt.Errorf("%w: theme %q", ErrInvalidValue, *p.Theme)
	}
	if p.Language != nil && !validLanguage(*p.Language) {
		return s.Get(), fmt.Errorf("%w: language %q", ErrInvalidValue, *p.Language)
	}
	if p.LastView != nil && !validView(*p.LastView) {
		return s.Get(), fmt.Errorf("%w: view %q", ErrInvalidValue, *p.LastView)
	}

	s.mu.Lock()
	if p.PollingIntervalSeconds != nil {
		s.prefs.PollingIntervalSeconds = *p.PollingIntervalSeconds
	}
	if p.Theme != nil {
		s.prefs.Theme = *p.Theme
	}
	if p.Language != nil {
		s.prefs.Language = *p.Language
	}
	if p.LastView != nil {
		v := *p.LastView
		if v == ViewDetail {
			v = ViewList
		}
		s.prefs.LastView = v
	}
	prefs := s.prefs
	listeners := append([]func(Preferences){}, s.listeners...)
	s.mu.Unlock()

	if p.PollingIntervalSeconds != nil {
		s.save(ctx, store.KeyPollingInterval, prefs.PollingIntervalSeconds)
	}
	if p.Theme != nil {
		s.save(ctx, store.KeyTheme, prefs.Theme)
	}
	if p.Language != nil {
		s.save(ctx, store.KeyLanguage, prefs.Language)
	}
	if p.LastView != nil {
		s.save(ctx, store.KeyLastView, prefs.LastView)
	}

	for _, fn := range listeners {
		fn(prefs)
	}
	return prefs, nil
}

// SetPollingInterval is Update with only the interval set.
func (s *Service) SetPollingInterval(ctx context.Context, seconds int) error {
	_, err := s.Update(ctx, Patch{PollingIntervalSeconds: &seconds})
	return err
}

func (s *Service) save(ctx context.Context, key string, v any) {
	if err := store.SetJSON(ctx, s.store, key, v); err != nil {
		s.logger.Warn("persisting preference failed", "key", key, "error", err)
	}
}

func validTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

func validLanguage(l Language) bool {
	return l == LanguageEN || l == LanguageJA
}

func validView(v View) bool {
	switch v {
	case ViewList, ViewSettings, ViewScenes, ViewDetail:
		return true
	}
	return false
}
