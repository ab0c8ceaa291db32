package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the circulate CLI.
// It loads configuration, wires up logging and tracing, and registers the
// emissions, impact, match, forecast, quality, snapshot and config commands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:   "circulate",
		Short: "Industrial sustainability calculations",
		Long: `circulate computes scope 1-3 emissions, scores waste-exchange matches,
quantifies the impact of an exchange and forecasts monthly emissions.`,
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfigFlag(cmd); err != nil {
				return err
			}
			logResult = setupLogging(cmd)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "configuration file (default $CIRCULATE_HOME/config.yaml)")
	cmd.AddCommand(
		NewEmissionsCmd(), NewImpactCmd(), NewMatchCmd(),
		NewForecastCmd(), NewQualityCmd(), NewSnapshotCmd(),
		newConfigCmd(),
	)

	return cmd
}

// loadConfigFlag replaces the global configuration when --config is set.
func loadConfigFlag(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading configuration %s: %w", path, err)
	}
	config.SetGlobalConfig(cfg)
	return nil
}

const rootCmdExample = `  # Emissions of one company in a dataset
  circulate emissions --dataset companies.yaml --company acme

  # Rank every waste listing against the open needs
  circulate match --dataset companies.yaml

  # Impact of moving two tonnes of steel 120 km by road
  circulate impact --material steel --quantity 2 --unit ton --distance 120

  # Forecast a monthly series three months ahead
  circulate forecast --series 100,110,105,120,115,125

  # Full snapshot of every company as JSON
  circulate snapshot --dataset companies.yaml --output json

  # Initialize configuration
  circulate config init`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd())
	return cmd
}
