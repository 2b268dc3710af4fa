package mqtt

import (
	"fmt"
	"strings"
)

// Topics builds the topic hierarchy for one site:
//
//	{prefix}/{site}/device/{id}/status     retained status snapshot
//	{prefix}/{site}/device/{id}/command    command result events
//	{prefix}/{site}/device/{id}/set        inbound command requests
//	{prefix}/{site}/scene/{id}/executed    scene execution events
//	{prefix}/{site}/system/status          online/offline (LWT)
type Topics struct {
	Prefix string
	Site   string
}

func (t Topics) base() string {
	return t.Prefix + "/" + t.Site
}

// DeviceStatus returns the retained status topic for a device.
//
// Example: switchbot/home/device/C271111EC0AB/status
func (t Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/status", t.base(), deviceID)
}

// DeviceCommand returns the topic command results are published on.
func (t Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/command", t.base(), deviceID)
}

// DeviceSet returns the topic inbound command requests arrive on.
func (t Topics) DeviceSet(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/set", t.base(), deviceID)
}

// AllDeviceSets returns the wildcard matching every DeviceSet topic.
func (t Topics) AllDeviceSets() string {
	return t.DeviceSet("+")
}

// SceneExecuted returns the topic scene executions are published on.
func (t Topics) SceneExecuted(sceneID string) string {
	return fmt.Sprintf("%s/scene/%s/executed", t.base(), sceneID)
}

// SystemStatus returns the retained online/offline topic.
func (t Topics) SystemStatus() string {
	return t.base() + "/system/status"
}

// DeviceIDFromTopic extracts the device id from a device topic, or ""
// when topic is not one.
func (t Topics) DeviceIDFromTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, t.base()+"/device/")
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}
