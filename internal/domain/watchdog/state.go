package watchdog

// Snapshot is one normalized reading of the four sensor lines, taken at the
// start of every poll tick. A snapshot is either fully populated or the tick
// is considered failed and skipped.
type Snapshot struct {
	// Armed reports whether the alarm output circuit is engaged.
	Armed bool
	// Triggered reports whether the siren circuit is active.
	Triggered bool
	// IgnitionOn reports whether vehicle ignition is detected.
	IgnitionOn bool
	// VehiclePaired reports whether the vehicle pairing link is present.
	// The underlying signal is active-low; the sensor adapter normalizes it
	// so true always means connected.
	VehiclePaired bool
}

// PresenceState is the current belief about occupancy. It is recomputed as a
// whole record on every relevant event and never partially updated.
type PresenceState struct {
	// CheckingForUser is true while a confirmation dialog is outstanding.
	CheckingForUser bool
	// SomeoneHome is the best current belief about occupancy.
	SomeoneHome bool
	// UsersConfirmedHome is true when the user registry confirms at least
	// one tracked person home.
	UsersConfirmedHome bool
	// UsersConfirmedOut is true when the user registry confirms every
	// tracked person away.
	UsersConfirmedOut bool
}

// OverrideFlags are the latches the policy reads and advances across ticks.
type OverrideFlags struct {
	// VoiceControlled is set once a human has intervened by voice. It
	// suppresses automatic arming and disarming until the vehicle
	// reconnects while the alarm is disarmed.
	VoiceControlled bool
	// AutoArmingEpisodeActive is true between an automatic arm and the
	// corresponding disarm, and decides whether a welcome-home reminder
	// is still owed.
	AutoArmingEpisodeActive bool
	// AlreadyTriggeredNotified is true after the trigger notification for
	// the current triggering episode has been sent.
	AlreadyTriggeredNotified bool
}
