// Package auth issues and checks the credentials of API clients.
//
// switchbotd has a single client identity: whoever holds the configured
// API key. The key is exchanged for a short-lived HS256 access token,
// validated by signature only. WebSocket connections cannot carry an
// Authorization header from browsers, so clients trade their token for a
// single-use ticket and pass it in the query string instead.
package auth
