package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
)

// Voice intent topics. The assistant publishes one message per recognized
// intent; slot values carry the captured details.
const (
	TopicSwitchAlarmState       = "hermes/intent/SwitchAlarmState"
	TopicTurnAlarmOn            = "hermes/intent/TurnAlarmOn"
	TopicSpellPinCode           = "hermes/intent/SpellPinCode"
	TopicAnswerYesOrNo          = "hermes/intent/AnswerYesOrNo"
	TopicToggleSetting          = "hermes/intent/ToggleWitiSetting"
	TopicChangeNotificationText = "hermes/intent/ChangeNotificationText"
)

// Slot names used by the intents above.
const (
	slotDigits  = "Digits"
	slotAnswer  = "Answer"
	slotSetting = "Setting"
	slotValue   = "Value"
	slotText    = "Text"
)

var (
	// errUnknownTopic is returned for messages on unhandled topics.
	errUnknownTopic = errors.New("unknown intent topic")
	// errMissingSlot is returned when a required slot is absent.
	errMissingSlot = errors.New("missing intent slot")
)

// intentMessage is the loosely-typed wire payload of a voice intent.
type intentMessage struct {
	SessionID string `json:"sessionId"`
	Slots     []struct {
		SlotName string `json:"slotName"`
		RawValue string `json:"rawValue"`
	} `json:"slots"`
}

// slot returns the raw value of the named slot, if present.
func (m *intentMessage) slot(name string) (string, bool) {
	for _, s := range m.Slots {
		if s.SlotName == name {
			return s.RawValue, true
		}
	}

	return "", false
}

// decodeIntent converts a wire message into a member of the closed Intent
// union. armed is the current alarm state, used to resolve the state
// toggle into an arm or disarm request.
func decodeIntent(topic string, payload []byte, armed bool) (watchdog.Intent, error) {
	var msg intentMessage
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, fmt.Errorf("decode intent payload: %w", err)
		}
	}

	switch topic {
	case TopicSwitchAlarmState:
		if armed {
			return watchdog.DisarmRequest{}, nil
		}

		return watchdog.ArmRequest{}, nil

	case TopicTurnAlarmOn:
		return watchdog.ArmRequest{Forced: true}, nil

	case TopicSpellPinCode:
		digits, ok := msg.slot(slotDigits)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSlot, slotDigits)
		}

		return watchdog.PinDigits{Digits: strings.TrimSpace(digits)}, nil

	case TopicAnswerYesOrNo:
		answer, ok := msg.slot(slotAnswer)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSlot, slotAnswer)
		}

		return watchdog.YesNo{Yes: strings.EqualFold(strings.TrimSpace(answer), "yes")}, nil

	case TopicToggleSetting:
		name, ok := msg.slot(slotSetting)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSlot, slotSetting)
		}

		value, _ := msg.slot(slotValue)

		return watchdog.SettingToggle{
			Name:  strings.TrimSpace(name),
			Value: strings.EqualFold(strings.TrimSpace(value), "on"),
		}, nil

	case TopicChangeNotificationText:
		key, ok := msg.slot(slotSetting)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSlot, slotSetting)
		}

		text, ok := msg.slot(slotText)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSlot, slotText)
		}

		return watchdog.NotificationTextChange{
			Key:  strings.TrimSpace(key),
			Text: strings.TrimSpace(text),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTopic, topic)
	}
}
