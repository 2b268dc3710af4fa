// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Each Metrics value owns its own registry, so tests can create as many as
// they like without colliding on the default registerer. The core packages
// never import this package; they declare narrow recorder interfaces that
// *Metrics satisfies.
package metrics
