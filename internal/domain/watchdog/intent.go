package watchdog

// Intent is the closed set of voice commands the watchdog understands.
// The dialogue transport converts its loosely-typed payloads into exactly
// one of the types below; the monitor consumes them through a single
// dispatch function.
type Intent interface {
	isIntent()
}

// ArmRequest asks to engage the alarm. Forced requests arm regardless of
// the presence model ("on" intent); plain requests come from the state
// toggle.
type ArmRequest struct {
	Forced bool
}

// DisarmRequest asks to disengage the alarm. Subject to pin enforcement.
type DisarmRequest struct{}

// PinDigits carries captured pin-code digits, unvalidated.
type PinDigits struct {
	Digits string
}

// YesNo carries the answer to an outstanding confirmation prompt.
type YesNo struct {
	Yes bool
}

// SettingToggle flips a recognized boolean option by name.
type SettingToggle struct {
	Name  string
	Value bool
}

// NotificationTextChange replaces one of the notification texts.
type NotificationTextChange struct {
	Key  string
	Text string
}

func (ArmRequest) isIntent()             {}
func (DisarmRequest) isIntent()          {}
func (PinDigits) isIntent()              {}
func (YesNo) isIntent()                  {}
func (SettingToggle) isIntent()          {}
func (NotificationTextChange) isIntent() {}
