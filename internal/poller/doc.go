// Package poller runs the periodic status poll.
//
// A Poller is enabled only while the credentials are validated, the
// interval is positive and at least one pollable device is known. Each
// time that condition changes the poller restarts: it fires one poll at
// once and then one per interval on a cron schedule.
//
// Stop guarantees no new poll starts after it returns. A poll already in
// flight is not aborted and its results are still applied.
package poller
