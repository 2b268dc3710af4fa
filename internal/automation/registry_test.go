package automation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/0suu/SwitchBotController/internal/switchbot"
)

type staticCreds bool

func (c staticCreds) Validated() bool { return bool(c) }

// fakeBridge serves a scene list and fails executions listed in execErrs.
type fakeBridge struct {
	mu        sync.Mutex
	scenes    []switchbot.Scene
	scenesErr error
	execErrs  map[string]error
	executed  []string
	gate      chan struct{}
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		scenes: []switchbot.Scene{
			{ID: "s-relax", Name: "Relax"},
			{ID: "s-night", Name: "Night Light"},
		},
		execErrs: make(map[string]error),
	}
}

func (b *fakeBridge) SetCredentials(string, string) {}

func (b *fakeBridge) GetDevices(context.Context) (switchbot.DeviceList, error) {
	return switchbot.DeviceList{}, nil
}

func (b *fakeBridge) GetDeviceStatus(context.Context, string) (switchbot.Status, error) {
	return nil, nil
}

func (b *fakeBridge) SendCommand(context.Context, string, switchbot.Command) error { return nil }

func (b *fakeBridge) GetScenes(context.Context) ([]switchbot.Scene, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scenes, b.scenesErr
}

func (b *fakeBridge) ExecuteScene(_ context.Context, id string) error {
	b.mu.Lock()
	b.executed = append(b.executed, id)
	gate := b.gate
	err := b.execErrs[id]
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

type sceneRecorder struct {
	mu       sync.Mutex
	ok, fail int
}

func (r *sceneRecorder) SceneExecuted(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.fail++
	} else {
		r.ok++
	}
}

func loadedScenes(t *testing.T, b *fakeBridge, opts ...Option) *Scenes {
	t.Helper()
	s := NewScenes(b, staticCreds(true), opts...)
	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	return s
}

// ─── Fetch ──────────────────────────────────────────────────────────

func TestFetch_Unauthenticated(t *testing.T) {
	s := NewScenes(newFakeBridge(), staticCreds(false))

	_, err := s.Fetch(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v", err)
	}
	if got := s.View().Error; got != MsgCheckSettings {
		t.Errorf("Error = %q", got)
	}
	if s.Loaded() {
		t.Error("Loaded() = true")
	}
}

func TestFetch_Success(t *testing.T) {
	s := loadedScenes(t, newFakeBridge())

	if !s.Loaded() {
		t.Error("Loaded() = false")
	}
	v := s.View()
	if len(v.Scenes) != 2 || v.Scenes[0].Name != "Relax" || v.LastFetched.IsZero() || v.Loading {
		t.Errorf("view = %+v", v)
	}
	if sc, ok := s.Scene("s-night"); !ok || sc.Name != "Night Light" {
		t.Errorf("Scene() = %+v, %v", sc, ok)
	}
}

func TestFetch_FailureKeepsList(t *testing.T) {
	b := newFakeBridge()
	s := loadedScenes(t, b)

	b.mu.Lock()
	b.scenesErr = &switchbot.APIError{StatusCode: 190, Message: "busy"}
	b.mu.Unlock()

	if _, err := s.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	v := s.View()
	if len(v.Scenes) != 2 {
		t.Error("list dropped on failure")
	}
	if v.Error != "API Error: busy (Status Code: 190)" {
		t.Errorf("Error = %q", v.Error)
	}
}

// ─── Execute ────────────────────────────────────────────────────────

func TestExecute_Success(t *testing.T) {
	b := newFakeBridge()
	rec := &sceneRecorder{}
	s := loadedScenes(t, b, WithRecorder(rec))

	var got []Execution
	s.OnExecuted(func(ex Execution) { got = append(got, ex) })

	ex, err := s.Execute(context.Background(), "s-relax")
	if err != nil {
		t.Fatal(err)
	}
	if !ex.Success || ex.SceneName != "Relax" || ex.ID == "" {
		t.Errorf("execution = %+v", ex)
	}
	v := s.View()
	if v.LastExecutedSceneID != "s-relax" || v.Executing["s-relax"] {
		t.Errorf("view = %+v", v)
	}
	if len(got) != 1 || rec.ok != 1 {
		t.Errorf("listener calls = %d, recorder ok = %d", len(got), rec.ok)
	}
}

func TestExecute_Failure(t *testing.T) {
	b := newFakeBridge()
	b.execErrs["s-relax"] = &switchbot.APIError{StatusCode: 190, Message: "scene failed", Command: true}
	rec := &sceneRecorder{}
	s := loadedScenes(t, b, WithRecorder(rec))

	if _, err := s.Execute(context.Background(), "s-night"); err != nil {
		t.Fatal(err)
	}
	_, err := s.Execute(context.Background(), "s-relax")
	if err == nil {
		t.Fatal("expected error")
	}
	v := s.View()
	if v.ExecutionErrors["s-relax"] != "API Command Error: scene failed (Status Code: 190)" {
		t.Errorf("ExecutionErrors = %v", v.ExecutionErrors)
	}
	if v.LastExecutedSceneID != "" {
		t.Errorf("LastExecutedSceneID = %q, want cleared", v.LastExecutedSceneID)
	}
	if rec.fail != 1 {
		t.Errorf("recorder fail = %d", rec.fail)
	}

	s.ClearExecutionError("s-relax")
	if len(s.View().ExecutionErrors) != 0 {
		t.Error("error not cleared")
	}
}

func TestExecute_Unauthenticated(t *testing.T) {
	b := newFakeBridge()
	s := NewScenes(b, staticCreds(false))

	_, err := s.Execute(context.Background(), "s-relax")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v", err)
	}
	if len(b.executed) != 0 {
		t.Error("bridge called")
	}
	if got := s.View().ExecutionErrors["s-relax"]; got != "API credentials are not set or not validated." {
		t.Errorf("execution error = %q", got)
	}
}

func TestExecute_ExecutingWhileOutstanding(t *testing.T) {
	b := newFakeBridge()
	b.gate = make(chan struct{})
	s := loadedScenes(t, b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Execute(context.Background(), "s-relax")
	}()

	for !s.Executing("s-relax") {
		select {
		case <-done:
			t.Fatal("execute returned before gate opened")
		default:
		}
	}
	close(b.gate)
	<-done
	if s.Executing("s-relax") {
		t.Error("still executing")
	}
}

func TestClear(t *testing.T) {
	b := newFakeBridge()
	b.execErrs["s-night"] = errors.New("x")
	s := loadedScenes(t, b)
	_, _ = s.Execute(context.Background(), "s-night")

	s.Clear()
	v := s.View()
	if len(v.Scenes) != 0 || len(v.ExecutionErrors) != 0 || len(v.Executing) != 0 || s.Loaded() {
		t.Errorf("view after Clear = %+v", v)
	}
}
