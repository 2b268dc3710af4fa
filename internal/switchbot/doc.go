// Package switchbot talks to the SwitchBot cloud API (v1.1).
//
// Bridge is the contract the orchestration core consumes. Client is the
// real implementation: every request is signed with HMAC-SHA256 over
// token, timestamp and nonce, and the response envelope is checked for the
// cloud's own status code. A transport-level success with a statusCode
// other than 100 is still an error.
//
// MockBridge serves a fixed set of demo devices, infrared remotes and
// scenes from memory. It is used when switchbot.mock is enabled and in
// tests.
package switchbot
