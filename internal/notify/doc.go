// Package notify delivers chat notifications about alarm state changes.
//
// The Telegram implementation is strictly best-effort: a missing recipient
// makes Notify a no-op and transport errors are logged, never returned.
package notify
