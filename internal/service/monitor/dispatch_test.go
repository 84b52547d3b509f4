package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
)

// TestDispatch_ArmByVoice arms, announces, and notifies; a repeated
// request only gets the already-armed reply.
func TestDispatch_ArmByVoice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.ArmRequest{})

	require.True(t, h.svc.Armed())
	require.True(t, h.output.state())
	require.Equal(t, []string{"armed-text"}, h.dialogue.spoken())
	require.Equal(t, []string{"armed-text"}, h.notifier.all())

	h.svc.HandleIntent(ctx, watchdog.ArmRequest{Forced: true})

	require.Equal(t, []string{"armed-text", "The alarm is already armed."}, h.dialogue.spoken())
	require.Len(t, h.notifier.all(), 1)
}

// TestDispatch_DisarmWithoutPin disarms directly when pin enforcement is
// off and closes any open auto-arming episode.
func TestDispatch_DisarmWithoutPin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.ArmRequest{})
	h.svc.HandleIntent(ctx, watchdog.DisarmRequest{})

	require.False(t, h.svc.Armed())
	require.False(t, h.output.state())
	require.Equal(t, []string{"armed-text", "disarmed-text"}, h.notifier.all())

	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	require.True(t, h.svc.flags.VoiceControlled)
	require.False(t, h.svc.flags.AutoArmingEpisodeActive)
}

// TestDispatch_PinProtectedDisarm covers the full pin dance: prompt,
// wrong pin rejected with an operator notification, correct pin on a
// fresh request disarms.
func TestDispatch_PinProtectedDisarm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := autoArmingConfig()
	cfg.ForcePinCode = true
	cfg.PinCode = "4821"
	h := newHarness(t, cfg)

	h.svc.HandleIntent(ctx, watchdog.ArmRequest{})
	h.svc.HandleIntent(ctx, watchdog.DisarmRequest{})

	require.True(t, h.svc.Armed())
	require.Contains(t, h.dialogue.spoken(), "Please say your pin code to disarm.")

	h.svc.HandleIntent(ctx, watchdog.PinDigits{Digits: "1111"})

	require.True(t, h.svc.Armed())
	require.Contains(t, h.dialogue.spoken(), "That pin code is not correct.")
	require.Contains(t, h.notifier.all(), "Rejected a disarm attempt with a wrong pin code.")

	h.svc.HandleIntent(ctx, watchdog.DisarmRequest{})
	h.svc.HandleIntent(ctx, watchdog.PinDigits{Digits: "4821"})

	require.False(t, h.svc.Armed())
	require.Contains(t, h.notifier.all(), "disarmed-text")
}

// TestDispatch_PinChange stores a valid new pin and rejects malformed
// ones without touching the repository.
func TestDispatch_PinChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	for _, digits := range []string{"123", "12a3", "48211"} {
		h.svc.HandleIntent(ctx, watchdog.PinDigits{Digits: digits})
	}

	require.Equal(t, 0, h.repo.sets)

	for _, text := range h.dialogue.spoken() {
		require.Equal(t, "A pin code is exactly four digits. Please try again.", text)
	}

	h.svc.HandleIntent(ctx, watchdog.PinDigits{Digits: "4821"})

	stored, ok := h.repo.get(settings.KeyPinCode)
	require.True(t, ok)
	require.EqualValues(t, 4821, stored)
	require.Equal(t, "4821", h.svc.storedPin())
	require.Contains(t, h.dialogue.spoken(), "Your new pin code is stored.")
}

// TestDispatch_PinChangeKeepsLeadingZeros stores "0042" as the integer 42
// and still matches the spoken form afterwards.
func TestDispatch_PinChangeKeepsLeadingZeros(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.PinDigits{Digits: "0042"})

	stored, ok := h.repo.get(settings.KeyPinCode)
	require.True(t, ok)
	require.EqualValues(t, 42, stored)
	require.Equal(t, "0042", h.svc.storedPin())
}

// TestDispatch_ToggleSettings flips each runtime option and persists the
// database-backed ones.
func TestDispatch_ToggleSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.SettingToggle{Name: "turnOnAutoArming", Value: false})

	h.svc.mu.Lock()
	require.False(t, h.svc.opts.autoArming)
	h.svc.mu.Unlock()
	require.Equal(t, 0, h.repo.sets)

	h.svc.HandleIntent(ctx, watchdog.SettingToggle{Name: "welcomeMessage", Value: false})
	h.svc.HandleIntent(ctx, watchdog.SettingToggle{Name: "telegramReminder", Value: false})
	h.svc.HandleIntent(ctx, watchdog.SettingToggle{Name: "enableMQTTmessages", Value: true})

	for key, want := range map[string]int64{
		settings.KeyWelcomeMessage:   0,
		settings.KeyTelegramReminder: 0,
		settings.KeyMQTTMessage:      1,
	} {
		stored, ok := h.repo.get(key)
		require.True(t, ok, key)
		require.Equal(t, want, stored, key)
	}

	require.Contains(t, h.dialogue.spoken(), "The setting is now off.")
	require.Contains(t, h.dialogue.spoken(), "The setting is now on.")
}

// TestDispatch_ToggleUnknownSetting answers without changing anything.
func TestDispatch_ToggleUnknownSetting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.SettingToggle{Name: "selfDestruct", Value: true})

	require.Equal(t, 0, h.repo.sets)
	require.Equal(t, []string{"I do not know that setting."}, h.dialogue.spoken())
}

// TestDispatch_TogglePersistFailure reports the storage error instead of
// confirming.
func TestDispatch_TogglePersistFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())
	h.repo.setErr = errTestWrite

	h.svc.HandleIntent(ctx, watchdog.SettingToggle{Name: "welcomeMessage", Value: false})

	require.Equal(t, []string{"I could not store that setting."}, h.dialogue.spoken())
}

// TestDispatch_ChangeNotificationText swaps a text and uses it on the
// next matching event.
func TestDispatch_ChangeNotificationText(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.NotificationTextChange{
		Key:  "enabledNotification",
		Text: "shields up",
	})
	require.Contains(t, h.dialogue.spoken(), "The notification text is updated.")

	h.svc.HandleIntent(ctx, watchdog.ArmRequest{})

	require.Contains(t, h.dialogue.spoken(), "shields up")
	require.Equal(t, []string{"shields up"}, h.notifier.all())
}

// TestDispatch_ChangeNotificationTextUnknownKey leaves the texts alone.
func TestDispatch_ChangeNotificationTextUnknownKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.NotificationTextChange{
		Key:  "sirenVolume",
		Text: "loud",
	})

	require.Equal(t, []string{"I do not know that notification."}, h.dialogue.spoken())
}

// TestDispatch_ChangeNotificationTextEmpty rejects an empty capture.
func TestDispatch_ChangeNotificationTextEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, autoArmingConfig())

	h.svc.HandleIntent(ctx, watchdog.NotificationTextChange{Key: "triggeredMessage"})

	require.Equal(t, []string{"I did not catch the new text."}, h.dialogue.spoken())
}
