// Package ordering applies a user-defined display order to entity lists.
//
// The same code orders devices and scenes. An order is a list of ids; it
// may name entities that no longer exist and may miss new ones. Reconcile
// drops the former and appends the latter in fetch order, so the result is
// always a permutation of the live list.
//
// Buffer stages an interactive reorder without touching the saved order.
// List persists one order under a store key; its writes are best effort.
package ordering
