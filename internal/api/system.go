package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemStatus is the response of GET /api/v1/system.
type SystemStatus struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	WebSocket     WSMetrics       `json:"websocket"`
	MQTT          MQTTMetrics     `json:"mqtt"`
	Devices       DeviceMetrics   `json:"devices"`
	Scenes        SceneMetrics    `json:"scenes"`
	Polling       pollingView     `json:"polling"`
	Credentials   CredentialsView `json:"credentials"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// DeviceMetrics summarises the device registry.
type DeviceMetrics struct {
	Total            int  `json:"total"`
	Pollable         int  `json:"pollable"`
	CommandsInFlight int  `json:"commands_in_flight"`
	Errors           int  `json:"errors"`
	Polling          bool `json:"polling"`
}

// SceneMetrics summarises the scene list.
type SceneMetrics struct {
	Total     int  `json:"total"`
	Loaded    bool `json:"loaded"`
	Executing int  `json:"executing"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleSystem(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	devView := s.core.Devices.View()
	inFlight := 0
	for _, n := range devView.InFlight {
		inFlight += n
	}
	sceneView := s.core.Scenes.View()
	executing := 0
	for _, busy := range sceneView.Executing {
		if busy {
			executing++
		}
	}

	var mqttMetrics MQTTMetrics
	if s.mqtt != nil {
		mqttMetrics = MQTTMetrics{Enabled: true, Connected: s.mqtt.IsConnected()}
	}

	writeJSON(w, http.StatusOK, SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(mem.Alloc) / 1024 / 1024,
			NumGC:         mem.NumGC,
		},
		WebSocket: WSMetrics{ConnectedClients: s.hub.ClientCount()},
		MQTT:      mqttMetrics,
		Devices: DeviceMetrics{
			Total:            len(devView.Devices),
			Pollable:         s.core.Devices.PollableCount(),
			CommandsInFlight: inFlight,
			Errors:           len(devView.DeviceErrors),
			Polling:          devView.Polling,
		},
		Scenes: SceneMetrics{
			Total:     len(sceneView.Scenes),
			Loaded:    s.core.Scenes.Loaded(),
			Executing: executing,
		},
		Polling: pollingView{
			Running:         s.core.Poller.Running(),
			IntervalSeconds: int(s.core.Poller.Interval().Seconds()),
		},
		Credentials: credentialsView(s.core.Credentials.State()),
	})
}
