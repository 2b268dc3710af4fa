package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/0suu/SwitchBotController/internal/store"
)

func TestNightLights_AssignLookup(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	n := NewNightLights(st, nil)

	n.Assign(ctx, "d1", "s1")
	n.Assign(ctx, "d2", "s2")
	if id, ok := n.Lookup("d1"); !ok || id != "s1" {
		t.Errorf("Lookup(d1) = %q, %v", id, ok)
	}

	n.Assign(ctx, "d2", "")
	if _, ok := n.Lookup("d2"); ok {
		t.Error("empty scene id did not remove assignment")
	}
	n.Remove(ctx, "d1")
	if len(n.All()) != 0 {
		t.Errorf("All() = %v", n.All())
	}

	// Persisted: a fresh instance sees the last write.
	n.Assign(ctx, "d3", "s3")
	again := NewNightLights(st, nil)
	if got := again.Load(ctx); got["d3"] != "s3" || len(got) != 1 {
		t.Errorf("reloaded = %v", got)
	}
}

func TestNightLights_Load(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		stored any
		want   map[string]string
	}{
		{"strings kept", map[string]any{"d1": "s1"}, map[string]string{"d1": "s1"}},
		{"non-strings dropped", map[string]any{"d1": 4, "d2": "s2", "d3": nil, "d4": ""}, map[string]string{"d2": "s2"}},
		{"wrong shape", []string{"a"}, map[string]string{}},
		{"nothing stored", nil, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			if tt.stored != nil {
				if err := store.SetJSON(ctx, st, store.KeyNightLightScenes, tt.stored); err != nil {
					t.Fatal(err)
				}
			}
			n := NewNightLights(st, nil)
			got := n.Load(ctx)
			if len(got) != len(tt.want) {
				t.Fatalf("Load() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Load()[%s] = %q, want %q", k, got[k], v)
				}
			}
			if !n.Loaded() {
				t.Error("Loaded() = false")
			}
		})
	}
}

func TestNightLights_SurvivesSceneClear(t *testing.T) {
	ctx := context.Background()
	n := NewNightLights(store.NewMemoryStore(), nil)
	n.Load(ctx)
	n.Assign(ctx, "d1", "s1")

	scenes := loadedScenes(t, newFakeBridge())
	scenes.Clear()

	if id, ok := n.Lookup("d1"); !ok || id != "s1" {
		t.Errorf("Lookup(d1) = %q, %v after scene clear", id, ok)
	}
	if !n.Loaded() {
		t.Error("Loaded() reset by scene clear")
	}
}

func TestNightLights_PersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	st.FailWrites(store.KeyNightLightScenes, errors.New("disk full"))
	n := NewNightLights(st, nil)

	n.Assign(ctx, "d1", "s1")
	if id, _ := n.Lookup("d1"); id != "s1" {
		t.Errorf("Lookup(d1) = %q", id)
	}
}

func TestNightLights_Resolve(t *testing.T) {
	ctx := context.Background()
	n := NewNightLights(store.NewMemoryStore(), nil)
	n.Assign(ctx, "d1", "s-night")
	n.Assign(ctx, "d2", "s-gone")

	unloaded := NewScenes(newFakeBridge(), staticCreds(true))
	if res := n.Resolve("d2", unloaded); res.Missing || res.SceneID != "s-gone" {
		t.Errorf("before load = %+v, want trusted", res)
	}

	scenes := loadedScenes(t, newFakeBridge())
	tests := []struct {
		device string
		want   Resolution
	}{
		{"d1", Resolution{DeviceID: "d1", SceneID: "s-night", SceneName: "Night Light"}},
		{"d2", Resolution{DeviceID: "d2", SceneID: "s-gone", Missing: true}},
		{"d3", Resolution{DeviceID: "d3"}},
	}
	for _, tt := range tests {
		if got := n.Resolve(tt.device, scenes); got != tt.want {
			t.Errorf("Resolve(%s) = %+v, want %+v", tt.device, got, tt.want)
		}
	}
}

func TestNightLights_Run(t *testing.T) {
	ctx := context.Background()
	b := newFakeBridge()
	scenes := loadedScenes(t, b)
	n := NewNightLights(store.NewMemoryStore(), nil)

	if _, err := n.Run(ctx, "d1", scenes); !errors.Is(err, ErrNoNightLight) {
		t.Errorf("Run() unassigned error = %v", err)
	}

	n.Assign(ctx, "d1", "s-night")
	ex, err := n.Run(ctx, "d1", scenes)
	if err != nil {
		t.Fatal(err)
	}
	if ex.SceneID != "s-night" || len(b.executed) != 1 {
		t.Errorf("execution = %+v, executed = %v", ex, b.executed)
	}
}
