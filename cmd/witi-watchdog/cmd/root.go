package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazzaau/witi-watchdog/internal/config"
	"github.com/lazzaau/witi-watchdog/internal/service/monitor"
	"github.com/lazzaau/witi-watchdog/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// databaseFile overrides the state database path from the configuration.
	databaseFile string
	// pollInterval overrides the sensor polling interval from the configuration.
	pollInterval time.Duration

	// rootCmd represents the base command that runs the watchdog.
	rootCmd = &cobra.Command{
		Use:   "witi-watchdog",
		Short: "Vehicle-paired home alarm watchdog.",
		Long: `Background service that watches the alarm wiring and arms the alarm automatically.

Polls the sensor lines at a fixed interval to track the alarm, siren, ignition,
and vehicle pairing states. When the paired vehicle leaves and nobody confirms
being home, asks over the voice assistant and arms the alarm on timeout or a
negative answer. Reports siren triggers to the configured chat exactly once per
episode and publishes the full state over MQTT whenever it changes.

This runs as a background service on the box wired to the alarm relay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cmd.SilenceUsage = true

			monitorOptions := &monitor.Options{
				ConfigPath:   configPath,
				DatabaseFile: databaseFile,
				PollInterval: pollInterval,
			}

			return monitor.Run(ctx, monitorOptions)
		},
	}
)

// Execute runs the witi-watchdog CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&databaseFile, "database", "b", "", "path to the state database (overrides configuration)")
	rootCmd.Flags().DurationVarP(&pollInterval, "interval", "i", 0, "sensor polling interval (overrides configuration)")
}
