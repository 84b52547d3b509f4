package monitor

import (
	"context"

	"github.com/lazzaau/witi-watchdog/internal/config"
	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
	"github.com/lazzaau/witi-watchdog/internal/logger"
	"github.com/lazzaau/witi-watchdog/internal/presence"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
)

// HandleIntent is the single dispatch point for the closed Intent union.
// It is called by the dialogue transport for every recognized voice
// command.
func (s *Service) HandleIntent(ctx context.Context, intent watchdog.Intent) {
	switch in := intent.(type) {
	case watchdog.ArmRequest:
		s.handleArm(ctx, in)
	case watchdog.DisarmRequest:
		s.handleDisarm(ctx)
	case watchdog.PinDigits:
		s.handlePin(ctx, in)
	case watchdog.YesNo:
		s.handleAnswer(ctx, in)
	case watchdog.SettingToggle:
		s.handleToggle(ctx, in)
	case watchdog.NotificationTextChange:
		s.handleTextChange(ctx, in)
	default:
		logger.WarnKV(ctx, "Unhandled intent", "intent", intent)
	}
}

// handleArm engages the alarm on a voice command. Manual control sets the
// voice override latch; forced requests behave identically at this level
// since a spoken command already outranks the presence model.
func (s *Service) handleArm(ctx context.Context, in watchdog.ArmRequest) {
	s.mu.Lock()
	s.flags.VoiceControlled = true
	s.mu.Unlock()

	changed, err := s.actuator.Arm(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Voice arming failed", "forced", in.Forced, "error", err)
		s.say(ctx, "Something went wrong, the alarm state is unchanged.")

		return
	}

	if !changed {
		s.say(ctx, "The alarm is already armed.")

		return
	}

	s.mu.Lock()
	text := s.texts.enabled
	s.mu.Unlock()

	s.say(ctx, text)
	s.notifier.Notify(ctx, text)
}

// handleDisarm disengages the alarm, subject to pin enforcement.
func (s *Service) handleDisarm(ctx context.Context) {
	s.mu.Lock()
	needPin := s.opts.forcePin

	if needPin {
		s.awaitingPin = true
	}

	s.mu.Unlock()

	if needPin {
		s.say(ctx, "Please say your pin code to disarm.")

		return
	}

	s.disarmNow(ctx)
}

// disarmNow performs the actual disarm and closes any open auto-arming
// episode so a pending reminder cancels itself.
func (s *Service) disarmNow(ctx context.Context) {
	s.mu.Lock()
	s.flags.VoiceControlled = true
	s.mu.Unlock()

	changed, err := s.actuator.Disarm(ctx, "voice command")
	if err != nil {
		logger.ErrorKV(ctx, "Voice disarming failed", "error", err)
		s.say(ctx, "Something went wrong, the alarm state is unchanged.")

		return
	}

	if !changed {
		s.say(ctx, "The alarm is already disarmed.")

		return
	}

	s.mu.Lock()
	s.flags.AutoArmingEpisodeActive = false
	text := s.texts.disabled
	s.mu.Unlock()

	s.say(ctx, text)
	s.notifier.Notify(ctx, text)
}

// handlePin resolves captured digits: either the authorization for a
// pending disarm, or a request to change the stored pin.
func (s *Service) handlePin(ctx context.Context, in watchdog.PinDigits) {
	if !config.ValidPinCode(in.Digits) {
		s.say(ctx, "A pin code is exactly four digits. Please try again.")

		return
	}

	s.mu.Lock()
	awaiting := s.awaitingPin
	s.awaitingPin = false
	s.mu.Unlock()

	if !awaiting {
		// Not authorizing anything: this is a pin change.
		if err := s.persistPin(ctx, in.Digits); err != nil {
			logger.ErrorKV(ctx, "Pin update failed", "error", err)
			s.say(ctx, "I could not store the new pin code.")

			return
		}

		s.say(ctx, "Your new pin code is stored.")

		return
	}

	if in.Digits != s.storedPin() {
		logger.Warn(ctx, "Disarm rejected: wrong pin")
		s.say(ctx, "That pin code is not correct.")
		s.notifier.Notify(ctx, "Rejected a disarm attempt with a wrong pin code.")

		return
	}

	s.disarmNow(ctx)
}

// handleAnswer resolves an outstanding departure confirmation. The episode
// counter advances so the pending timeout becomes a no-op; whichever of
// answer and timeout runs first is the only one that acts.
func (s *Service) handleAnswer(ctx context.Context, in watchdog.YesNo) {
	s.mu.Lock()

	if !s.state.CheckingForUser {
		s.mu.Unlock()
		logger.Debug(ctx, "Ignoring answer, no confirmation outstanding")

		return
	}

	s.confirmEpisode++

	if in.Yes {
		// Someone is staying home: cancel arming for this episode. An
		// answer to the automatic prompt counts as human intervention,
		// so the override latch is set just like for a spoken command.
		s.presence.Registry().SetHome(presence.DefaultUser, true)
		s.state = s.presence.Recompute(ctx, false, true)
		s.flags.VoiceControlled = true
		s.mu.Unlock()

		logger.Info(ctx, "Arming cancelled, someone is home")
		s.say(ctx, "Okay, I will not arm the alarm.")
		s.notifier.Notify(ctx, "Auto-arming cancelled: someone is home.")

		return
	}

	s.state = s.presence.Recompute(ctx, false, false)
	s.mu.Unlock()

	logger.Info(ctx, "Nobody home confirmed, arming")
	s.autoArm(ctx)
}

// handleToggle flips a recognized boolean option. The runtime-persisted
// switches are written through to the settings table.
func (s *Service) handleToggle(ctx context.Context, in watchdog.SettingToggle) {
	persistKey := ""

	s.mu.Lock()

	switch in.Name {
	case "turnOnAutoArming":
		s.opts.autoArming = in.Value
	case "forcePinCode":
		s.opts.forcePin = in.Value
	case "activateSoundOnTrigger":
		s.opts.soundOnTrigger = in.Value
	case "enableMQTTmessages":
		s.opts.mqttMessages = in.Value
		persistKey = settings.KeyMQTTMessage
	case settings.KeyWelcomeMessage:
		s.opts.welcomeEnabled = in.Value
		persistKey = settings.KeyWelcomeMessage
	case settings.KeyTelegramReminder:
		s.opts.chatReminder = in.Value
		persistKey = settings.KeyTelegramReminder
	default:
		s.mu.Unlock()
		logger.WarnKV(ctx, "Unknown setting", "name", in.Name)
		s.say(ctx, "I do not know that setting.")

		return
	}

	s.mu.Unlock()

	if persistKey != "" {
		value := int64(0)
		if in.Value {
			value = 1
		}

		if err := s.repo.Set(ctx, persistKey, value); err != nil {
			logger.ErrorKV(ctx, "Setting not persisted", "name", in.Name, "error", err)
			s.say(ctx, "I could not store that setting.")

			return
		}
	}

	state := "off"
	if in.Value {
		state = "on"
	}

	logger.InfoKV(ctx, "Setting changed", "name", in.Name, "value", state)
	s.say(ctx, "The setting is now "+state+".")
}

// handleTextChange replaces one of the notification texts.
func (s *Service) handleTextChange(ctx context.Context, in watchdog.NotificationTextChange) {
	if in.Text == "" {
		s.say(ctx, "I did not catch the new text.")

		return
	}

	s.mu.Lock()

	switch in.Key {
	case "enabledNotification":
		s.texts.enabled = in.Text
	case "disabledNotification":
		s.texts.disabled = in.Text
	case "triggeredMessage":
		s.texts.triggered = in.Text
	case settings.KeyWelcomeMessage:
		s.texts.welcome = in.Text
	default:
		s.mu.Unlock()
		logger.WarnKV(ctx, "Unknown notification text", "key", in.Key)
		s.say(ctx, "I do not know that notification.")

		return
	}

	s.mu.Unlock()

	logger.InfoKV(ctx, "Notification text changed", "key", in.Key)
	s.say(ctx, "The notification text is updated.")
}
