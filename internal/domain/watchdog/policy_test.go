package watchdog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// departed is the baseline input for an ask-to-arm decision: auto-arming on,
// vehicle gone, alarm disarmed, nobody home, no dialog outstanding.
func departed() PolicyInput {
	return PolicyInput{
		Snapshot:          Snapshot{},
		Presence:          PresenceState{},
		Flags:             OverrideFlags{},
		AutoArmingEnabled: true,
	}
}

// TestEvaluate_Departure asks for confirmation when the vehicle leaves.
func TestEvaluate_Departure(t *testing.T) {
	t.Parallel()

	d := Evaluate(departed())
	require.Equal(t, ActionAskToArm, d.Action)
}

// TestEvaluate_VoiceOverrideSuppressesEverything ensures manual control wins
// over any sensor combination.
func TestEvaluate_VoiceOverrideSuppressesEverything(t *testing.T) {
	t.Parallel()

	in := departed()
	in.Flags.VoiceControlled = true

	d := Evaluate(in)
	require.Equal(t, ActionNone, d.Action)
	require.True(t, d.Flags.VoiceControlled)

	// Returning vehicle with the alarm armed does not clear the latch.
	in.Snapshot = Snapshot{Armed: true, VehiclePaired: true}
	in.Flags.AutoArmingEpisodeActive = true

	d = Evaluate(in)
	require.Equal(t, ActionNone, d.Action)
	require.True(t, d.Flags.VoiceControlled)
}

// TestEvaluate_VoiceOverrideResetsOnReconnect clears the latch only when the
// vehicle is paired while the alarm is disarmed.
func TestEvaluate_VoiceOverrideResetsOnReconnect(t *testing.T) {
	t.Parallel()

	in := departed()
	in.Flags.VoiceControlled = true
	in.Snapshot = Snapshot{VehiclePaired: true}

	d := Evaluate(in)
	require.Equal(t, ActionNone, d.Action)
	require.False(t, d.Flags.VoiceControlled)
}

// TestEvaluate_FeatureDisabled does nothing when auto-arming is off.
func TestEvaluate_FeatureDisabled(t *testing.T) {
	t.Parallel()

	in := departed()
	in.AutoArmingEnabled = false

	d := Evaluate(in)
	require.Equal(t, ActionNone, d.Action)
}

// TestEvaluate_TowingSafety never arms while ignition is detected.
func TestEvaluate_TowingSafety(t *testing.T) {
	t.Parallel()

	in := departed()
	in.Snapshot.IgnitionOn = true
	in.Snapshot.VehiclePaired = true

	require.Equal(t, ActionNone, Evaluate(in).Action)

	// Still suppressed when the link drops within the same ignition window.
	in.Snapshot.VehiclePaired = false
	require.Equal(t, ActionNone, Evaluate(in).Action)
}

// TestEvaluate_SomeoneHomeSuppressesArming never arms over a present person.
func TestEvaluate_SomeoneHomeSuppressesArming(t *testing.T) {
	t.Parallel()

	in := departed()
	in.Presence.SomeoneHome = true
	require.Equal(t, ActionNone, Evaluate(in).Action)

	in = departed()
	in.Presence.UsersConfirmedHome = true
	require.Equal(t, ActionNone, Evaluate(in).Action)
}

// TestEvaluate_NoRepromptWhileChecking keeps quiet while a confirmation
// dialog is already outstanding.
func TestEvaluate_NoRepromptWhileChecking(t *testing.T) {
	t.Parallel()

	in := departed()
	in.Presence.CheckingForUser = true

	require.Equal(t, ActionNone, Evaluate(in).Action)
}

// TestEvaluate_NoAskWhileArmed does not prompt when the alarm is already on.
func TestEvaluate_NoAskWhileArmed(t *testing.T) {
	t.Parallel()

	in := departed()
	in.Snapshot.Armed = true

	require.Equal(t, ActionNone, Evaluate(in).Action)
}

// TestEvaluate_WelcomeHome marks presence home when the vehicle returns
// during an open auto-arming episode.
func TestEvaluate_WelcomeHome(t *testing.T) {
	t.Parallel()

	in := PolicyInput{
		Snapshot:          Snapshot{Armed: true, VehiclePaired: true},
		Flags:             OverrideFlags{AutoArmingEpisodeActive: true},
		AutoArmingEnabled: true,
	}

	require.Equal(t, ActionWelcomeHome, Evaluate(in).Action)

	// No open episode, no reminder owed.
	in.Flags.AutoArmingEpisodeActive = false
	require.Equal(t, ActionNone, Evaluate(in).Action)

	// Already confirmed home.
	in.Flags.AutoArmingEpisodeActive = true
	in.Presence.SomeoneHome = true
	require.Equal(t, ActionNone, Evaluate(in).Action)
}

// TestBuildStatus_Labels maps sensor booleans to human labels.
func TestBuildStatus_Labels(t *testing.T) {
	t.Parallel()

	payload := BuildStatus(Snapshot{}, PresenceState{}, OverrideFlags{})
	require.Equal(t, LabelDisarmed, payload.Alarm)
	require.Equal(t, LabelQuiet, payload.Siren)
	require.Equal(t, LabelIgnitionOff, payload.Ignition)
	require.Equal(t, LabelDisconnected, payload.Vehicle)

	payload = BuildStatus(
		Snapshot{Armed: true, Triggered: true, IgnitionOn: true, VehiclePaired: true},
		PresenceState{SomeoneHome: true},
		OverrideFlags{VoiceControlled: true, AutoArmingEpisodeActive: true},
	)
	require.Equal(t, LabelArmed, payload.Alarm)
	require.Equal(t, LabelTriggered, payload.Siren)
	require.Equal(t, LabelIgnitionOn, payload.Ignition)
	require.Equal(t, LabelConnected, payload.Vehicle)
	require.True(t, payload.SomeoneHome)
	require.True(t, payload.VoiceControlled)
	require.True(t, payload.AutoArmingEpisode)
}
