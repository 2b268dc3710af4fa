// Package api implements the HTTP REST API and WebSocket server of the
// SwitchBot controller.
//
// This package provides:
//   - REST endpoints for credentials, preferences, devices, commands,
//     scenes, ordering and night-light assignments
//   - WebSocket hub pushing device status, command results, scene
//     executions and credential changes
//   - Optional JWT authentication: an API key is exchanged for a bearer
//     token; WebSocket connections use single-use tickets
//   - Middleware stack (request ID, logging, recovery, metrics, CORS)
//
// Errors are returned as {"error": {"code", "message"}}. Cloud failures
// keep the SwitchBot message text and map to 502 upstream_error;
// operations needing validated credentials answer 412 credentials_required.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
