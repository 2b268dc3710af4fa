package automation

import (
	"context"
	"maps"
	"sync"

	"github.com/0suu/SwitchBotController/internal/store"
)

// SceneLookup is what NightLights needs to resolve an assignment.
// *Scenes satisfies it.
type SceneLookup interface {
	Scene(id string) (Scene, bool)
	Loaded() bool
}

// NightLights is the persisted device → scene assignment map.
type NightLights struct {
	store  store.Store
	logger Logger

	mu     sync.RWMutex
	byID   map[string]string
	loaded bool
}

// NewNightLights creates an empty, unloaded map.
func NewNightLights(st store.Store, logger Logger) *NightLights {
	if logger == nil {
		logger = noopLogger{}
	}
	return &NightLights{store: st, logger: logger, byID: make(map[string]string)}
}

// Load reads the stored map. Entries whose value is not a non-empty
// string are dropped. The map counts as loaded even when the read fails.
func (n *NightLights) Load(ctx context.Context) map[string]string {
	var raw map[string]any
	found, err := store.GetJSON(ctx, n.store, store.KeyNightLightScenes, &raw)
	if err != nil {
		n.logger.Warn("ignoring stored night-light scenes", "error", err)
	}

	m := make(map[string]string, len(raw))
	if found && err == nil {
		for deviceID, v := range raw {
			if sceneID, ok := v.(string); ok && sceneID != "" {
				m[deviceID] = sceneID
			}
		}
	}

	n.mu.Lock()
	n.byID = m
	n.loaded = true
	n.mu.Unlock()
	return maps.Clone(m)
}

// Loaded reports whether Load has run.
func (n *NightLights) Loaded() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loaded
}

// Assign sets deviceID's night-light scene. An empty sceneID removes the
// assignment. The scene is not checked against the scene list.
func (n *NightLights) Assign(ctx context.Context, deviceID, sceneID string) {
	n.mu.Lock()
	if sceneID == "" {
		delete(n.byID, deviceID)
	} else {
		n.byID[deviceID] = sceneID
	}
	snapshot := maps.Clone(n.byID)
	n.mu.Unlock()

	if err := store.SetJSON(ctx, n.store, store.KeyNightLightScenes, snapshot); err != nil {
		n.logger.Warn("persisting night-light scenes failed", "device_id", deviceID, "error", err)
	}
}

// Remove drops deviceID's assignment.
func (n *NightLights) Remove(ctx context.Context, deviceID string) {
	n.Assign(ctx, deviceID, "")
}

// Lookup returns deviceID's assigned scene.
func (n *NightLights) Lookup(deviceID string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	id, ok := n.byID[deviceID]
	return id, ok
}

// All returns a copy of the whole map.
func (n *NightLights) All() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.byID)
}

// Resolve checks deviceID's assignment against the scene list. Missing
// is only reported once scenes are loaded; before that an assignment is
// taken on trust.
func (n *NightLights) Resolve(deviceID string, scenes SceneLookup) Resolution {
	res := Resolution{DeviceID: deviceID}
	sceneID, ok := n.Lookup(deviceID)
	if !ok {
		return res
	}
	res.SceneID = sceneID
	if sc, found := scenes.Scene(sceneID); found {
		res.SceneName = sc.Name
	} else if scenes.Loaded() {
		res.Missing = true
	}
	return res
}

// Run executes deviceID's night-light scene.
func (n *NightLights) Run(ctx context.Context, deviceID string, scenes *Scenes) (Execution, error) {
	sceneID, ok := n.Lookup(deviceID)
	if !ok {
		return Execution{}, ErrNoNightLight
	}
	return scenes.Execute(ctx, sceneID)
}
