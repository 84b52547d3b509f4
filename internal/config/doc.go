// Package config loads and validates the witi-watchdog YAML settings.
//
// The file covers both behavior options (auto-arming, pin enforcement,
// notification texts) and deployment wiring (MQTT broker, Telegram token,
// Home Assistant endpoint, GPIO chip and line offsets, database path).
// Validate fills defaults so callers never see zero values for paths,
// intervals, or notification texts.
package config
