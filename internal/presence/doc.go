// Package presence tracks whether anyone is believed to be home.
//
// The Model combines three inputs: the caller's current belief, the user
// registry of confirmed home/away users, and an optional Home Assistant
// input_boolean oracle. When the oracle is enabled and reachable it wins
// unconditionally; when its backing instance is absent it disables itself
// for the process lifetime after logging once.
package presence
