// Package store persists small JSON values under string keys.
//
// Three backends implement Store: SQLiteStore (default, on the kv_store
// table), RedisStore, and MemoryStore for tests and ephemeral runs. Write
// failures are reported wrapped in ErrPersistence so callers can decide
// whether a failed write is fatal (credentials) or best effort (display
// orders, preferences).
package store
