// Package orchestrator wires the core components together and reacts to
// their state changes.
//
//	credential.Manager ──OnChange──▶ clear lists on invalidation,
//	                                 refetch on (re)validation,
//	                                 reconfigure poller
//	settings.Service   ──OnChange──▶ reconfigure poller
//	device.Registry    ──OnDevicesChanged──▶ reconfigure poller
//	                   ──OnStatus / OnCommand──▶ MQTT, InfluxDB, WebSocket
//	automation.Scenes  ──OnExecuted──▶ MQTT, InfluxDB, WebSocket
//
// The outer sinks (Publisher, History, Broadcaster) are optional and may
// be attached after construction.
package orchestrator
