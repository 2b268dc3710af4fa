// Package mqtt publishes the daemon's state changes to an MQTT broker and
// accepts command requests from it.
//
// Topic hierarchy (see Topics):
//
//	switchbot/{site}/device/{id}/status     retained snapshot after each fetch
//	switchbot/{site}/device/{id}/command    settled command results
//	switchbot/{site}/device/{id}/set        inbound command requests
//	switchbot/{site}/scene/{id}/executed    scene executions
//	switchbot/{site}/system/status          retained online/offline, LWT
//
// The client reconnects automatically and restores subscriptions. TLS is
// used when cfg.Broker.TLS is set. MQTT is optional; the daemon runs
// without it.
package mqtt
