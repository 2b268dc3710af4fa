package automation

import (
	"time"

	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Scene is one manual scene defined in the SwitchBot app.
type Scene struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func fromBridge(s switchbot.Scene) Scene {
	return Scene{ID: s.ID, Name: s.Name}
}

// Execution describes one settled scene execution.
type Execution struct {
	ID        string    `json:"id"`
	SceneID   string    `json:"scene_id"`
	SceneName string    `json:"scene_name,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// View is a consistent copy of the scene state.
type View struct {
	Scenes              []Scene           `json:"scenes"`
	Loading             bool              `json:"loading"`
	Error               string            `json:"error,omitempty"`
	LastFetched         time.Time         `json:"last_fetched,omitempty"`
	Executing           map[string]bool   `json:"executing"`
	ExecutionErrors     map[string]string `json:"execution_errors"`
	LastExecutedSceneID string            `json:"last_executed_scene_id,omitempty"`
}

// Resolution is a night-light assignment checked against the scene list.
type Resolution struct {
	DeviceID  string `json:"device_id"`
	SceneID   string `json:"scene_id,omitempty"`
	SceneName string `json:"scene_name,omitempty"`
	// Missing is set when scenes are loaded but the assigned one is not
	// among them.
	Missing bool `json:"missing"`
}
