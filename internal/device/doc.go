// Package device holds the live device list, per-device status snapshots
// and the command dispatcher for switchbotd.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────────────┐
//	│                           Registry                                │
//	│                                                                   │
//	│  ┌────────────────┐   ┌────────────────┐   ┌──────────────────┐   │
//	│  │  device list   │   │   snapshots    │   │ command counters │   │
//	│  │ (registry.go)  │   │   (poll.go)    │   │  (dispatch.go)   │   │
//	│  │                │   │                │   │                  │   │
//	│  │ • FetchDevices │   │ • FetchStatus  │   │ • Send           │   │
//	│  │ • Select       │   │ • PollAll      │   │ • per-device err │   │
//	│  └────────────────┘   └────────────────┘   └──────────────────┘   │
//	│           │                   │                     │             │
//	└───────────│───────────────────│─────────────────────│─────────────┘
//	            ▼                   ▼                     ▼
//	                     switchbot.Bridge (cloud)
//
// # Rules
//
//   - Every operation that reaches the cloud requires validated
//     credentials and fails with ErrUnauthenticated otherwise, before any
//     network call.
//   - A snapshot is replaced wholesale by a successful fetch and is never
//     cleared by a failed one.
//   - Infrared remotes are listed but never polled, and a command sent to
//     one is never followed by a status fetch.
//   - Each Send increments the device's in-flight counter exactly once and
//     decrements it exactly once. Only the most recently issued command
//     for a device may write that device's error slot.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Accessors return copies.
package device
