package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/report"
)

// NewConfigInitCmd creates the "config init" command, which writes the
// built-in defaults to $CIRCULATE_HOME/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Long:  "Creates $CIRCULATE_HOME/config.yaml (default ~/.circulate/config.yaml) holding every setting at its default.",
		Example: `  # Write the defaults
  circulate config init

  # Replace an existing file
  circulate config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing configuration file")

	return cmd
}

func initConfig(cmd *cobra.Command, force bool) error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")

	switch _, statErr := os.Stat(path); {
	case force, errors.Is(statErr, fs.ErrNotExist):
	case statErr == nil:
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	default:
		return fmt.Errorf("checking %s: %w", path, statErr)
	}

	cfg := config.Default()
	cfg.SetConfigPath(path)
	if err = cfg.Save(); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\nConfiguration file: %s\n", path)
	return nil
}

// NewConfigShowCmd creates the config show command that prints the
// effective configuration after file, .env and environment overrides.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report.New(cmd.OutOrStdout(), report.FormatYAML).Value(config.GetGlobalConfig())
		},
	}
}
