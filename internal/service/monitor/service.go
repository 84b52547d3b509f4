package monitor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/lazzaau/witi-watchdog/internal/config"
	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
	"github.com/lazzaau/witi-watchdog/internal/logger"
	"github.com/lazzaau/witi-watchdog/internal/presence"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
)

// SensorSource reads one snapshot of the sensor lines.
type SensorSource interface {
	Poll() (watchdog.Snapshot, error)
}

// Notifier sends a fire-and-forget chat notification.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Dialogue is the outbound voice/telemetry surface the service talks to.
type Dialogue interface {
	Say(ctx context.Context, text string)
	PublishStatus(ctx context.Context, status watchdog.StatusPayload)
}

// DefaultConfirmationWait is how long a departure confirmation stays open
// before the alarm arms anyway.
const DefaultConfirmationWait = 30 * time.Second

// texts are the runtime-editable notification strings.
type texts struct {
	enabled   string
	disabled  string
	triggered string
	welcome   string
}

// toggles are the runtime-togglable behavior switches. They start from the
// config file; the persisted settings table overrides the ones it stores.
type toggles struct {
	autoArming     bool
	forcePin       bool
	soundOnTrigger bool
	mqttMessages   bool
	welcomeEnabled bool
	chatReminder   bool
}

// Service is the state monitor: it owns the presence belief and override
// latches, runs the per-tick pipeline, and dispatches voice intents.
//
// A single ticker drives Tick; ticks never overlap. Confirmation prompts
// and the welcome-home reminder run on their own timers and reconcile with
// the tick state under the same mutex, using an episode counter so that
// whichever of answer and timeout resolves first is the sole source of
// truth.
type Service struct {
	sensors  SensorSource
	actuator *Actuator
	presence *presence.Model
	notifier Notifier
	dialogue Dialogue
	repo     settings.Repository

	confirmationWait time.Duration
	reminderDelay    time.Duration

	mu    sync.Mutex
	flags watchdog.OverrideFlags
	state watchdog.PresenceState
	texts texts
	opts  toggles
	pin   string
	// confirmEpisode advances whenever a confirmation is opened or
	// resolved; a timer whose episode is stale does nothing.
	confirmEpisode uint64
	// awaitingPin is set between a pin-protected disarm request and the
	// matching pin capture.
	awaitingPin bool
	// lastStatus is the previously published payload; identical payloads
	// are not republished.
	lastStatus      watchdog.StatusPayload
	statusPublished bool
	// lastPaired holds the previous pairing reading; a paired-to-unpaired
	// transition starts a fresh occupancy episode.
	lastPaired bool
	pairedSeen bool
}

// Deps are the collaborators the service needs. Dialogue is attached
// separately because the MQTT client needs the service as its intent
// handler.
type Deps struct {
	Sensors  SensorSource
	Actuator *Actuator
	Presence *presence.Model
	Notifier Notifier
	Repo     settings.Repository
}

// NewService builds the service from configuration, persisted settings,
// and collaborators. When the actuator restored an armed state, presence
// starts as away: an armed house has nobody confirmed in it.
func NewService(ctx context.Context, cfg *config.Config, deps Deps) (*Service, error) {
	s := &Service{
		sensors:          deps.Sensors,
		actuator:         deps.Actuator,
		presence:         deps.Presence,
		notifier:         deps.Notifier,
		repo:             deps.Repo,
		confirmationWait: DefaultConfirmationWait,
		reminderDelay:    cfg.ReturnHomeDelay(),
		texts: texts{
			enabled:   cfg.EnabledNotification,
			disabled:  cfg.DisabledNotification,
			triggered: cfg.TriggeredMessage,
			welcome:   "Welcome home. Remember to disarm the alarm.",
		},
		opts: toggles{
			autoArming:     cfg.TurnOnAutoArming,
			forcePin:       cfg.ForcePinCode,
			soundOnTrigger: cfg.ActivateSoundOnTrigger,
			mqttMessages:   cfg.EnableMQTTMessages,
			welcomeEnabled: true,
			chatReminder:   true,
		},
		pin: cfg.PinCode,
	}

	stored, err := deps.Repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if v, ok := stored[settings.KeyMQTTMessage]; ok {
		s.opts.mqttMessages = v != 0
	}

	if v, ok := stored[settings.KeyWelcomeMessage]; ok {
		s.opts.welcomeEnabled = v != 0
	}

	if v, ok := stored[settings.KeyTelegramReminder]; ok {
		s.opts.chatReminder = v != 0
	}

	if v, ok := stored[settings.KeyPinCode]; ok {
		s.pin = formatPin(v)
	}

	believedHome := !deps.Actuator.Armed()
	s.state = deps.Presence.Recompute(ctx, false, believedHome)

	return s, nil
}

// AttachDialogue wires the outbound voice/telemetry surface. Must be
// called before the first tick or intent.
func (s *Service) AttachDialogue(d Dialogue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dialogue = d
}

// Armed reports the current alarm state for the dialogue transport.
func (s *Service) Armed() bool {
	return s.actuator.Armed()
}

// Tick runs one poll cycle: read sensors, recompute presence, edge-detect
// the trigger, evaluate the arming policy, and publish status. A sensor
// read failure skips the whole tick.
func (s *Service) Tick(ctx context.Context) {
	snap, err := s.sensors.Poll()
	if err != nil {
		logger.WarnKV(ctx, "Sensor read failed, skipping tick", "error", err)

		return
	}

	s.mu.Lock()

	var effects []func()

	believedHome := s.state.SomeoneHome

	// The vehicle unpairing means whoever was around drove off: forget the
	// previous episode's confirmations and let the policy ask again.
	if s.pairedSeen && s.lastPaired && !snap.VehiclePaired {
		s.presence.Registry().Clear()
		believedHome = false

		logger.Info(ctx, "Vehicle departed, presence reset")
	}

	s.pairedSeen = true
	s.lastPaired = snap.VehiclePaired

	s.state = s.presence.Recompute(ctx, s.state.CheckingForUser, believedHome)

	effects = append(effects, s.watchTriggerLocked(ctx, snap)...)
	effects = append(effects, s.applyPolicyLocked(ctx, snap)...)

	if s.opts.mqttMessages && s.dialogue != nil {
		status := watchdog.BuildStatus(snap, s.state, s.flags)
		if !s.statusPublished || status != s.lastStatus {
			s.lastStatus = status
			s.statusPublished = true
			dialogue := s.dialogue
			effects = append(effects, func() { dialogue.PublishStatus(ctx, status) })
		}
	}

	s.mu.Unlock()

	for _, effect := range effects {
		effect()
	}
}

// watchTriggerLocked advances the trigger latch and returns the
// notification effects due this tick. Caller holds s.mu.
func (s *Service) watchTriggerLocked(ctx context.Context, snap watchdog.Snapshot) []func() {
	event, notified := watchdog.WatchTrigger(snap, s.flags.AlreadyTriggeredNotified)
	s.flags.AlreadyTriggeredNotified = notified

	switch event {
	case watchdog.TriggerStarted:
		text := s.texts.triggered
		sound := s.opts.soundOnTrigger

		return []func(){func() {
			s.notifier.Notify(ctx, text)

			if sound {
				s.say(ctx, text)
			}
		}}
	case watchdog.TriggerStopped:
		return []func(){func() {
			s.notifier.Notify(ctx, "The siren stopped sounding. The alarm is still active.")
		}}
	case watchdog.TriggerNone:
	}

	return nil
}

// applyPolicyLocked evaluates the auto-arming policy and starts the
// requested action. Caller holds s.mu.
func (s *Service) applyPolicyLocked(ctx context.Context, snap watchdog.Snapshot) []func() {
	decision := watchdog.Evaluate(watchdog.PolicyInput{
		Snapshot:          snap,
		Presence:          s.state,
		Flags:             s.flags,
		AutoArmingEnabled: s.opts.autoArming,
	})

	if s.flags.VoiceControlled && !decision.Flags.VoiceControlled {
		logger.Info(ctx, "Vehicle reconnected while disarmed, voice override cleared")
	}

	s.flags = decision.Flags

	switch decision.Action {
	case watchdog.ActionAskToArm:
		return s.openConfirmationLocked(ctx)
	case watchdog.ActionWelcomeHome:
		return s.welcomeHomeLocked(ctx)
	case watchdog.ActionNone:
	}

	return nil
}

// openConfirmationLocked starts a departure confirmation: mark
// checking-for-user, prompt, and arm when the wait expires unanswered.
func (s *Service) openConfirmationLocked(ctx context.Context) []func() {
	s.state = s.presence.Recompute(ctx, true, false)
	s.confirmEpisode++
	episode := s.confirmEpisode

	time.AfterFunc(s.confirmationWait, func() {
		s.confirmationExpired(ctx, episode)
	})

	logger.InfoKV(ctx, "Vehicle left, asking for confirmation before arming", "episode", episode)

	return []func(){func() {
		s.say(ctx, "The vehicle has left. Reply yes to cancel arming the alarm.")
	}}
}

// confirmationExpired arms the alarm when the confirmation window closed
// without an answer. A stale episode means an answer won the race; the
// timer then does nothing.
func (s *Service) confirmationExpired(ctx context.Context, episode uint64) {
	s.mu.Lock()

	if episode != s.confirmEpisode || !s.state.CheckingForUser {
		s.mu.Unlock()

		return
	}

	s.state = s.presence.Recompute(ctx, false, false)

	// The oracle may have flipped to home while the window was open;
	// never arm over a present person.
	if s.state.SomeoneHome || s.state.UsersConfirmedHome {
		s.mu.Unlock()

		logger.Info(ctx, "No answer before timeout, but someone is home, not arming")

		return
	}

	s.mu.Unlock()

	logger.Info(ctx, "No answer before timeout, arming")
	s.autoArm(ctx)
}

// autoArm engages the alarm as part of an auto-arming episode.
func (s *Service) autoArm(ctx context.Context) {
	changed, err := s.actuator.Arm(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Automatic arming failed", "error", err)

		return
	}

	if !changed {
		return
	}

	s.mu.Lock()
	s.flags.AutoArmingEpisodeActive = true
	text := s.texts.enabled
	s.mu.Unlock()

	s.notifier.Notify(ctx, text)
}

// welcomeHomeLocked marks presence confirmed home on vehicle return and
// schedules the one-shot disarm reminder.
func (s *Service) welcomeHomeLocked(ctx context.Context) []func() {
	s.presence.Registry().SetHome(presence.DefaultUser, true)
	s.state = s.presence.Recompute(ctx, s.state.CheckingForUser, true)

	time.AfterFunc(s.reminderDelay, func() {
		s.reminderExpired(ctx)
	})

	logger.InfoKV(ctx, "Vehicle returned, reminder scheduled", "delay", s.reminderDelay.String())

	return nil
}

// reminderExpired fires the welcome-home reminder unless the episode was
// closed in the meantime (a manual disarm cancels it lazily).
func (s *Service) reminderExpired(ctx context.Context) {
	s.mu.Lock()

	if !s.flags.AutoArmingEpisodeActive {
		s.mu.Unlock()

		return
	}

	s.flags.AutoArmingEpisodeActive = false

	var (
		welcome  = s.opts.welcomeEnabled
		reminder = s.opts.chatReminder
		text     = s.texts.welcome
	)

	s.mu.Unlock()

	if welcome {
		s.say(ctx, text)
	}

	if reminder {
		s.notifier.Notify(ctx, text)
	}
}

// say announces locally through the dialogue surface, if attached.
func (s *Service) say(ctx context.Context, text string) {
	s.mu.Lock()
	dialogue := s.dialogue
	s.mu.Unlock()

	if dialogue != nil {
		dialogue.Say(ctx, text)
	}
}

// storedPin returns the pin currently in force.
func (s *Service) storedPin() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pin
}

// persistPin stores a new pin in the settings table and in memory.
func (s *Service) persistPin(ctx context.Context, pin string) error {
	value, err := strconv.ParseInt(pin, 10, 64)
	if err != nil {
		return errors.New("pin is not numeric")
	}

	if err := s.repo.Set(ctx, settings.KeyPinCode, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.pin = pin
	s.mu.Unlock()

	return nil
}

// formatPin renders a persisted pin value back to four digits, restoring
// leading zeros lost in integer storage.
func formatPin(value int64) string {
	pin := strconv.FormatInt(value, 10)
	for len(pin) < config.PinCodeLength {
		pin = "0" + pin
	}

	return pin
}
