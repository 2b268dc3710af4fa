package influxdb

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	measurementDeviceStatus  = "device_status"
	measurementDeviceCommand = "device_command"
	measurementScene         = "scene_execution"
)

// WriteDeviceStatus records the numeric and boolean fields of one status
// snapshot. Text fields (power "on"/"off" is mapped to power_on) and
// nested values are skipped. Nothing is written if no field qualifies.
//
//	client.WriteDeviceStatus("C271111EC0AB", "Meter", status, time.Now())
func (c *Client) WriteDeviceStatus(deviceID, deviceType string, status map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	fields := StatusFields(status)
	if len(fields) == 0 {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(
		measurementDeviceStatus,
		map[string]string{"device_id": deviceID, "device_type": deviceType},
		fields,
		at,
	))
}

// WriteCommandResult records the outcome of one device command.
func (c *Client) WriteCommandResult(deviceID, command string, success bool, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(
		measurementDeviceCommand,
		map[string]string{"device_id": deviceID, "command": command},
		map[string]any{"success": success},
		at,
	))
}

// WriteSceneExecution records the outcome of one scene execution.
func (c *Client) WriteSceneExecution(sceneID string, success bool, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(
		measurementScene,
		map[string]string{"scene_id": sceneID},
		map[string]any{"success": success},
		at,
	))
}

// WritePoint writes a custom point stamped now.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, maps.Clone(tags), maps.Clone(fields), time.Now()))
}

// StatusFields extracts the fields of status that InfluxDB can store.
func StatusFields(status map[string]any) map[string]any {
	fields := make(map[string]any, len(status))
	for k, v := range status {
		switch val := v.(type) {
		case float64, float32, int, int64, int32, uint, uint64, uint32, bool:
			fields[k] = val
		case json.Number:
			if f, err := val.Float64(); err == nil {
				fields[k] = f
			}
		case string:
			if k == "power" && (val == "on" || val == "off") {
				fields["power_on"] = val == "on"
			}
		}
	}
	return fields
}
