package watchdog

// PolicyInput gathers everything one auto-arming evaluation depends on.
type PolicyInput struct {
	// Snapshot is the sensor reading taken this tick.
	Snapshot Snapshot
	// Presence is the occupancy belief recomputed this tick.
	Presence PresenceState
	// Flags are the current override latches.
	Flags OverrideFlags
	// AutoArmingEnabled reflects the turnOnAutoArming setting.
	AutoArmingEnabled bool
}

// PolicyAction is the single action the policy requests for a tick.
// Rules are mutually exclusive: at most one action per evaluation.
type PolicyAction int

const (
	// ActionNone requests nothing.
	ActionNone PolicyAction = iota
	// ActionAskToArm requests a departure confirmation: mark
	// checking-for-user, prompt, and arm on timeout.
	ActionAskToArm
	// ActionWelcomeHome requests marking presence confirmed home and
	// scheduling the one-shot disarm reminder.
	ActionWelcomeHome
)

// Decision is the outcome of one policy evaluation: the requested action and
// the next override flags. The policy never mutates presence directly; the
// caller asks the presence model to recompute when applying the action.
type Decision struct {
	Action PolicyAction
	Flags  OverrideFlags
}

// Evaluate applies the auto-arming decision rules in order; the first
// applicable rule wins.
//
// Manual voice control is authoritative: while the VoiceControlled latch is
// set no automatic action is taken, and the latch clears only when the
// vehicle reconnects while the alarm is disarmed. Arming is suppressed
// whenever ignition is on (the vehicle may be in transit under tow) and
// whenever someone is believed home.
func Evaluate(in PolicyInput) Decision {
	next := in.Flags

	if in.Flags.VoiceControlled {
		if in.Snapshot.VehiclePaired && !in.Snapshot.Armed {
			next.VoiceControlled = false
		}

		return Decision{Action: ActionNone, Flags: next}
	}

	if !in.AutoArmingEnabled {
		return Decision{Action: ActionNone, Flags: next}
	}

	if shouldAskToArm(in) {
		return Decision{Action: ActionAskToArm, Flags: next}
	}

	if shouldWelcomeHome(in) {
		return Decision{Action: ActionWelcomeHome, Flags: next}
	}

	return Decision{Action: ActionNone, Flags: next}
}

// shouldAskToArm reports whether the vehicle has left while the alarm is
// disarmed and nobody is confirmed present, with no confirmation already
// outstanding.
func shouldAskToArm(in PolicyInput) bool {
	if in.Snapshot.IgnitionOn {
		// Ignition while the link is (or was just) present means the
		// vehicle may be moving under tow. Never arm in that window.
		return false
	}

	if in.Presence.SomeoneHome || in.Presence.UsersConfirmedHome {
		return false
	}

	return !in.Snapshot.VehiclePaired &&
		!in.Presence.CheckingForUser &&
		!in.Snapshot.Armed
}

// shouldWelcomeHome reports whether the vehicle has returned while an
// auto-arming episode is still open and nobody is confirmed home yet.
func shouldWelcomeHome(in PolicyInput) bool {
	return in.Snapshot.VehiclePaired &&
		in.Snapshot.Armed &&
		in.Flags.AutoArmingEpisodeActive &&
		!in.Presence.SomeoneHome
}
