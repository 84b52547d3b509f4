// Package settings implements persistence for the watchdog's key-value state.
//
// A single SQLite table maps setting keys to integer values: the
// authoritative armed state for crash recovery, the Telegram recipient,
// the disarm pin, and the runtime-togglable notification switches. The
// Repository interface is what the monitor service depends on.
package settings
