package watchdog

// StatusPayload is the telemetry record published on the WitiAlarm topic.
// Sensor states are mapped to human labels; presence and override state is
// carried as booleans. Payloads are only published when they differ from
// the previously published one.
type StatusPayload struct {
	Alarm             string `json:"alarm"`
	Siren             string `json:"siren"`
	Ignition          string `json:"ignition"`
	Vehicle           string `json:"vehicle"`
	SomeoneHome       bool   `json:"someoneHome"`
	CheckingForUser   bool   `json:"checkingForUser"`
	VoiceControlled   bool   `json:"voiceControlled"`
	AutoArmingEpisode bool   `json:"autoArmingEpisode"`
}

// Human labels for the status payload.
const (
	LabelArmed        = "Armed"
	LabelDisarmed     = "Disarmed"
	LabelTriggered    = "Triggered"
	LabelQuiet        = "Quiet"
	LabelIgnitionOn   = "On"
	LabelIgnitionOff  = "Off"
	LabelConnected    = "Connected"
	LabelDisconnected = "Disconnected"
)

// BuildStatus maps the current state into the published payload.
func BuildStatus(snap Snapshot, presence PresenceState, flags OverrideFlags) StatusPayload {
	payload := StatusPayload{
		Alarm:             LabelDisarmed,
		Siren:             LabelQuiet,
		Ignition:          LabelIgnitionOff,
		Vehicle:           LabelDisconnected,
		SomeoneHome:       presence.SomeoneHome,
		CheckingForUser:   presence.CheckingForUser,
		VoiceControlled:   flags.VoiceControlled,
		AutoArmingEpisode: flags.AutoArmingEpisodeActive,
	}

	if snap.Armed {
		payload.Alarm = LabelArmed
	}

	if snap.Triggered {
		payload.Siren = LabelTriggered
	}

	if snap.IgnitionOn {
		payload.Ignition = LabelIgnitionOn
	}

	if snap.VehiclePaired {
		payload.Vehicle = LabelConnected
	}

	return payload
}
