package automation

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Logger defines the logging interface used by Scenes and NightLights.
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
type Credentials interface {
	Validated() bool
}

// Recorder receives scene execution outcomes.
type Recorder interface {
	SceneExecuted(err error)
}

type noopRecorder struct{}

func (noopRecorder) SceneExecuted(error) {}

// Scenes caches the cloud scene list and tracks executions.
type Scenes struct {
	bridge   switchbot.Bridge
	creds    Credentials
	logger   Logger
	recorder Recorder
	now      func() time.Time

	mu           sync.RWMutex
	scenes       []Scene
	loaded       bool
	loading      bool
	listErr      string
	lastFetched  time.Time
	executing    map[string]bool
	execErrs     map[string]string
	lastExecuted string
	listeners    []func(Execution)
}

// Option configures Scenes.
type Option func(*Scenes)

// WithLogger sets the logger.
func WithLogger(l Logger) Option { return func(s *Scenes) { s.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option { return func(s *Scenes) { s.recorder = r } }

// NewScenes creates an empty scene cache.
func NewScenes(bridge switchbot.Bridge, creds Credentials, opts ...Option) *Scenes {
	s := &Scenes{
		bridge:    bridge,
		creds:     creds,
		logger:    noopLogger{},
		recorder:  noopRecorder{},
		now:       time.Now,
		executing: make(map[string]bool),
		execErrs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnExecuted registers fn to run after every settled execution.
func (s *Scenes) OnExecuted(fn func(Execution)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Fetch replaces the scene list. On failure the previous list is kept
// and the error is stored as the list-level error.
func (s *Scenes) Fetch(ctx context.Context) ([]Scene, error) {
	if !s.creds.Validated() {
		s.mu.Lock()
		s.listErr = MsgCheckSettings
		s.loading = false
		s.mu.Unlock()
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	s.loading = true
	s.listErr = ""
	s.mu.Unlock()

	raw, err := s.bridge.GetScenes(ctx)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.listErr = err.Error()
		s.mu.Unlock()
		s.logger.Warn("fetching scenes failed", "error", err)
		return nil, err
	}

	scenes := make([]Scene, len(raw))
	for i, sc := range raw {
		scenes[i] = fromBridge(sc)
	}

	s.mu.Lock()
	s.scenes = scenes
	s.loaded = true
	s.loading = false
	s.lastFetched = s.now()
	s.mu.Unlock()

	s.logger.Info("scene list refreshed", "count", len(scenes))
	return slices.Clone(scenes), nil
}

// Execute runs a scene and blocks until the cloud answers. While it runs
// the scene is marked executing and its previous error is cleared.
func (s *Scenes) Execute(ctx context.Context, sceneID string) (Execution, error) {
	if !s.creds.Validated() {
		s.mu.Lock()
		s.executing[sceneID] = false
		s.execErrs[sceneID] = ErrUnauthenticated.Error()
		s.mu.Unlock()
		return Execution{}, ErrUnauthenticated
	}

	s.mu.Lock()
	s.executing[sceneID] = true
	delete(s.execErrs, sceneID)
	s.lastExecuted = ""
	s.mu.Unlock()

	err := s.bridge.ExecuteScene(ctx, sceneID)

	s.mu.Lock()
	s.executing[sceneID] = false
	if err != nil {
		s.execErrs[sceneID] = err.Error()
	} else {
		s.lastExecuted = sceneID
	}
	name := s.nameLocked(sceneID)
	fns := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.recorder.SceneExecuted(err)

	ex := Execution{
		ID:        uuid.NewString(),
		SceneID:   sceneID,
		SceneName: name,
		Success:   err == nil,
		At:        s.now(),
	}
	if err != nil {
		ex.Error = err.Error()
		s.logger.Warn("scene execution failed", "scene_id", sceneID, "error", err)
	} else {
		s.logger.Info("scene executed", "scene_id", sceneID, "scene_name", name)
	}

	for _, fn := range fns {
		fn(ex)
	}
	return ex, err
}

// ClearExecutionError forgets the last error of one scene.
func (s *Scenes) ClearExecutionError(sceneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.execErrs, sceneID)
}

// Clear resets the list and all execution state. Night-light
// assignments and the scene order are kept elsewhere and not touched.
func (s *Scenes) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes = nil
	s.loaded = false
	s.loading = false
	s.listErr = ""
	s.lastFetched = time.Time{}
	s.executing = make(map[string]bool)
	s.execErrs = make(map[string]string)
	s.lastExecuted = ""
}

// List returns the scenes in fetch order.
func (s *Scenes) List() []Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.scenes)
}

// Scene looks up one loaded scene.
func (s *Scenes) Scene(id string) (Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.scenes {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scene{}, false
}

// Loaded reports whether a fetch has succeeded since the last Clear.
func (s *Scenes) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Executing reports whether sceneID is running.
func (s *Scenes) Executing(sceneID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executing[sceneID]
}

// View returns a consistent copy of the scene state.
func (s *Scenes) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Scenes:              slices.Clone(s.scenes),
		Loading:             s.loading,
		Error:               s.listErr,
		LastFetched:         s.lastFetched,
		Executing:           maps.Clone(s.executing),
		ExecutionErrors:     maps.Clone(s.execErrs),
		LastExecutedSceneID: s.lastExecuted,
	}
}

func (s *Scenes) nameLocked(id string) string {
	for _, sc := range s.scenes {
		if sc.ID == id {
			return sc.Name
		}
	}
	return ""
}
