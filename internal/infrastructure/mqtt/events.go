package mqtt

import (
	"encoding/json"
	"fmt"
)

// SetRequest is the payload accepted on a device's set topic. Either
// Command or CommandLabel names the command.
type SetRequest struct {
	Command      string `json:"command,omitempty"`
	Parameter    any    `json:"parameter,omitempty"`
	CommandType  string `json:"command_type,omitempty"`
	CommandLabel string `json:"command_label,omitempty"`
	Value        any    `json:"value,omitempty"`
}

// SetHandler handles one inbound command request.
type SetHandler func(deviceID string, req SetRequest) error

// PublishDeviceStatus publishes a retained status snapshot.
func (c *Client) PublishDeviceStatus(deviceID string, status any) error {
	return c.PublishJSON(c.topics.DeviceStatus(deviceID), status, true)
}

// PublishCommandResult publishes a settled command event.
func (c *Client) PublishCommandResult(deviceID string, event any) error {
	return c.PublishJSON(c.topics.DeviceCommand(deviceID), event, false)
}

// PublishSceneExecuted publishes a settled scene execution.
func (c *Client) PublishSceneExecuted(sceneID string, execution any) error {
	return c.PublishJSON(c.topics.SceneExecuted(sceneID), execution, false)
}

// SubscribeDeviceSets routes every device's set topic to handler.
func (c *Client) SubscribeDeviceSets(handler SetHandler) error {
	return c.Subscribe(c.topics.AllDeviceSets(), byte(c.cfg.QoS), c.setHandler(handler))
}

func (c *Client) setHandler(handler SetHandler) MessageHandler {
	return func(topic string, payload []byte) error {
		deviceID := c.topics.DeviceIDFromTopic(topic)
		if deviceID == "" {
			return fmt.Errorf("%w: unexpected topic %q", ErrInvalidPayload, topic)
		}
		var req SetRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if req.Command == "" && req.CommandLabel == "" {
			return fmt.Errorf("%w: command or command_label required", ErrInvalidPayload)
		}
		return handler(deviceID, req)
	}
}
