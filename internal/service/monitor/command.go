package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/lazzaau/witi-watchdog/internal/config"
	"github.com/lazzaau/witi-watchdog/internal/dialogue"
	"github.com/lazzaau/witi-watchdog/internal/logger"
	"github.com/lazzaau/witi-watchdog/internal/notify"
	"github.com/lazzaau/witi-watchdog/internal/presence"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
	"github.com/lazzaau/witi-watchdog/internal/sensor"
)

// Options controls the watchdog daemon.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DatabaseFile overrides the settings database path from config.
	DatabaseFile string
	// PollInterval overrides the poll interval from config.
	PollInterval time.Duration
}

// noopNotifier is used when no Telegram token is configured.
type noopNotifier struct{}

// Notify does nothing.
func (noopNotifier) Notify(context.Context, string) {}

// Run starts the watchdog daemon and blocks until ctx is canceled.
//
//nolint:funlen,cyclop // Linear wiring of adapters; splitting would spread setup across helpers.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "witi-watchdog")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	databaseFile := cfg.DatabaseFile
	if opts.DatabaseFile != "" {
		databaseFile = opts.DatabaseFile
	}

	repo, err := settings.Open(databaseFile)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}

	defer func() {
		_ = repo.Close()
	}()

	lines, err := sensor.Open(cfg.GPIOChip, cfg.Lines)
	if err != nil {
		return fmt.Errorf("open sensor lines: %w", err)
	}

	defer func() {
		_ = lines.Close()
	}()

	actuator, err := NewActuator(ctx, lines, repo)
	if err != nil {
		return fmt.Errorf("initialise actuator: %w", err)
	}

	var oracle presence.Oracle
	if cfg.UseHomeAssistantPersonDetection {
		oracle = presence.NewHomeAssistant(
			cfg.HomeAssistantURL,
			cfg.HomeAssistantToken,
			cfg.HomeAssistantBooleanName,
		)
	}

	model := presence.NewModel(presence.NewRegistry(), oracle)

	var notifier Notifier = noopNotifier{}

	if cfg.TelegramToken != "" {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, repo)
		if err != nil {
			return fmt.Errorf("initialise telegram: %w", err)
		}

		notifier = telegram
	} else {
		logger.Info(ctx, "No Telegram token configured, chat notifications disabled")
	}

	svc, err := NewService(ctx, cfg, Deps{
		Sensors:  lines,
		Actuator: actuator,
		Presence: model,
		Notifier: notifier,
		Repo:     repo,
	})
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	client := dialogue.New(cfg.MQTTBroker, cfg.MQTTClientID, svc, svc)
	svc.AttachDialogue(client)

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect dialogue transport: %w", err)
	}

	defer client.Close()

	interval := cfg.UpdateInterval()
	if opts.PollInterval > 0 {
		interval = opts.PollInterval
	}

	logger.InfoKV(ctx, "Watchdog running",
		"interval", interval.String(),
		"chip", cfg.GPIOChip,
		"broker", cfg.MQTTBroker,
		"armed", actuator.Armed(),
	)

	// First reading before the ticker starts so state is published promptly.
	svc.Tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
			svc.Tick(ctx)
		}
	}
}
