// Package automation holds the cloud scene list and the night-light
// assignments that point devices at scenes.
//
// Scenes are defined in the SwitchBot app; this package only lists and
// executes them. Execution state is tracked per scene:
//
//	┌────────────┐  Execute(id)  ┌────────────┐
//	│    idle    │──────────────▶│ executing  │
//	└────────────┘               └─────┬──────┘
//	      ▲           success          │  failure
//	      ├────────────────────────────┤
//	 lastExecuted = id           error[id] = msg
//
// NightLights maps a device id to the scene that acts as its night light.
// The map is persisted and independent of the scene list: clearing the
// scene list (for example when credentials are invalidated) leaves it
// intact, and an assignment may name a scene that is not loaded yet.
// Whether the scene exists is checked only when the assignment is
// resolved for display.
//
// Scenes and NightLights are safe for concurrent use.
package automation
