// Package watchdog contains the pure decision core of the alarm watchdog.
//
// It defines the sensor snapshot, presence and override state, the closed
// Intent union, the trigger-edge state machine, and the auto-arming policy.
// Everything here is a deterministic function from current state to next
// state plus a requested action; no I/O, no clocks, no globals. The monitor
// service owns the state across ticks and performs the requested effects.
package watchdog
