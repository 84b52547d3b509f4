package watchdog

// TriggerEvent is the outcome of one trigger-edge evaluation.
type TriggerEvent int

const (
	// TriggerNone means no notification is due this tick.
	TriggerNone TriggerEvent = iota
	// TriggerStarted means the siren just began a triggering episode.
	TriggerStarted
	// TriggerStopped means the siren stopped sounding while the alarm
	// stayed armed.
	TriggerStopped
)

// WatchTrigger edge-detects the siren signal. It returns the event due this
// tick and the next value of the notified latch.
//
// The latch guarantees exactly one TriggerStarted per continuous triggering
// episode and exactly one TriggerStopped at its end, regardless of how many
// polls observe the same signal. Disarming always clears the latch.
func WatchTrigger(snap Snapshot, notified bool) (TriggerEvent, bool) {
	switch {
	case !snap.Armed:
		return TriggerNone, false
	case snap.Triggered && !notified:
		return TriggerStarted, true
	case !snap.Triggered && notified:
		return TriggerStopped, false
	default:
		return TriggerNone, notified
	}
}
