package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// LineOffsets maps the logical sensor and relay lines to GPIO line offsets
// on the configured chip.
type LineOffsets struct {
	// AlarmState is the input reporting whether the alarm circuit is engaged.
	AlarmState int `yaml:"alarmState"`
	// TriggeredState is the input reporting whether the siren circuit is active.
	TriggeredState int `yaml:"triggeredState"`
	// IgnitionActive is the input reporting vehicle ignition.
	IgnitionActive int `yaml:"ignitionActive"`
	// PairedToVehicle is the input reporting the vehicle pairing link.
	// The physical signal is active-low: electrical low means connected.
	PairedToVehicle int `yaml:"pairedToVehicle"`
	// SwitchAlarm is the output driving the arm/disarm relay.
	SwitchAlarm int `yaml:"switchAlarm"`
}

// Config holds all settings for the witi-watchdog daemon.
type Config struct {
	// TurnOnAutoArming enables the automatic arming policy.
	TurnOnAutoArming bool `yaml:"turnOnAutoArming"`
	// ForcePinCode requires a valid pin before a voice disarm is honored.
	ForcePinCode bool `yaml:"forcePinCode"`
	// ActivateSoundOnTrigger announces locally when the alarm fires.
	ActivateSoundOnTrigger bool `yaml:"activateSoundOnTrigger"`
	// EnableMQTTMessages enables publishing the status payload.
	EnableMQTTMessages bool `yaml:"enableMQTTmessages"`
	// UseHomeAssistantPersonDetection defers occupancy to Home Assistant.
	UseHomeAssistantPersonDetection bool `yaml:"useHomeAssistantPersonDetection"`
	// HomeAssistantBooleanName is the input_boolean entity consulted for occupancy.
	HomeAssistantBooleanName string `yaml:"homeAssistantBooleanName"`
	// SecondsBetweenUpdates is the monitor poll interval.
	SecondsBetweenUpdates int `yaml:"secondsBetweenUpdates"`
	// SecondsAfterReturningHome is the delay before the welcome-home reminder.
	SecondsAfterReturningHome int `yaml:"secondsAfterReturningHome"`
	// PinCode is the initial disarm pin; the persisted settings value wins
	// once one has been stored.
	PinCode string `yaml:"pinCode"`
	// TriggeredMessage is the notification text sent when the alarm fires.
	TriggeredMessage string `yaml:"triggeredMessage"`
	// EnabledNotification is the notification text sent when the alarm arms.
	EnabledNotification string `yaml:"enabledNotification"`
	// DisabledNotification is the notification text sent when the alarm disarms.
	DisabledNotification string `yaml:"disabledNotification"`

	// MQTTBroker is the broker URL the dialogue and telemetry adapters use.
	MQTTBroker string `yaml:"mqttBroker"`
	// MQTTClientID identifies this daemon on the broker.
	MQTTClientID string `yaml:"mqttClientId"`
	// TelegramToken is the bot token for chat notifications. Empty disables them.
	TelegramToken string `yaml:"telegramToken"`
	// TelegramChatID is the default recipient chat. The persisted
	// telegramID setting overrides it once registered.
	TelegramChatID int64 `yaml:"telegramChatId"`
	// HomeAssistantURL is the base URL of the Home Assistant instance.
	HomeAssistantURL string `yaml:"homeAssistantUrl"`
	// HomeAssistantToken is the long-lived access token for the REST API.
	HomeAssistantToken string `yaml:"homeAssistantToken"`
	// GPIOChip is the character device the sensor lines live on.
	GPIOChip string `yaml:"gpioChip"`
	// Lines maps logical lines to offsets on GPIOChip.
	Lines LineOffsets `yaml:"gpioLines"`
	// DatabaseFile is the path to the SQLite settings database.
	DatabaseFile string `yaml:"databaseFile"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"logLevel"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "witi-watchdog-settings.yaml"

	// DefaultDatabaseFilename is the default filename for the settings database.
	DefaultDatabaseFilename = "witi-watchdog-state.db"

	// DefaultGPIOChip is the character device used when none is configured.
	DefaultGPIOChip = "gpiochip0"

	// DefaultMQTTClientID identifies the daemon on the broker by default.
	DefaultMQTTClientID = "witi-watchdog"

	// DefaultUpdateInterval is the poll interval when none is configured.
	DefaultUpdateInterval = 5 * time.Second

	// DefaultReturnHomeDelay is the welcome-home reminder delay when none
	// is configured.
	DefaultReturnHomeDelay = 2 * time.Minute

	// PinCodeLength is the exact number of digits a valid pin carries.
	PinCodeLength = 4

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBrokerRequired is returned when the MQTT broker URL is missing.
	errBrokerRequired = errors.New("MQTT broker URL must be provided")
	// errOracleEntityRequired is returned when Home Assistant person
	// detection is enabled without an entity name.
	errOracleEntityRequired = errors.New("homeAssistantBooleanName must be set when person detection is enabled")
	// ErrInvalidPinCode is returned when a pin is not exactly four digits.
	ErrInvalidPinCode = fmt.Errorf("pin code must be exactly %d digits", PinCodeLength)
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the file carries tokens.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.MQTTBroker == "" {
		return errBrokerRequired
	}

	if _, err := url.Parse(cfg.MQTTBroker); err != nil {
		return fmt.Errorf("invalid MQTT broker URL: %w", err)
	}

	if cfg.UseHomeAssistantPersonDetection && cfg.HomeAssistantBooleanName == "" {
		return errOracleEntityRequired
	}

	if cfg.PinCode != "" && !ValidPinCode(cfg.PinCode) {
		return ErrInvalidPinCode
	}

	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = DefaultMQTTClientID
	}

	if cfg.GPIOChip == "" {
		cfg.GPIOChip = DefaultGPIOChip
	}

	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = DefaultDatabaseFilename
	}

	if cfg.TriggeredMessage == "" {
		cfg.TriggeredMessage = "The alarm has been triggered!"
	}

	if cfg.EnabledNotification == "" {
		cfg.EnabledNotification = "The alarm is now armed."
	}

	if cfg.DisabledNotification == "" {
		cfg.DisabledNotification = "The alarm is now disarmed."
	}

	return nil
}

// UpdateInterval returns the monitor poll interval.
func (c *Config) UpdateInterval() time.Duration {
	if c.SecondsBetweenUpdates <= 0 {
		return DefaultUpdateInterval
	}

	return time.Duration(c.SecondsBetweenUpdates) * time.Second
}

// ReturnHomeDelay returns the delay before the welcome-home reminder fires.
func (c *Config) ReturnHomeDelay() time.Duration {
	if c.SecondsAfterReturningHome <= 0 {
		return DefaultReturnHomeDelay
	}

	return time.Duration(c.SecondsAfterReturningHome) * time.Second
}

// ValidPinCode reports whether the value is exactly four numeric digits.
func ValidPinCode(pin string) bool {
	if len(pin) != PinCodeLength {
		return false
	}

	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
