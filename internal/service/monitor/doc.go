// Package monitor is the state-monitor service of the watchdog.
//
// It owns the alarm actuator (idempotent arm/disarm with a persisted
// authoritative state for crash recovery) and the poll loop that drives the
// per-tick pipeline: sensor read, presence recompute, trigger edge
// detection, auto-arming policy, actuation, notification, status publish.
// Voice intents enter through HandleIntent; departure confirmations and the
// welcome-home reminder run on timers reconciled with the tick state by an
// episode counter and a lazily checked latch.
package monitor
