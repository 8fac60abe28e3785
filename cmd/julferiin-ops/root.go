package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"julferiin-ops/internal/config"
)

var (
	rootConfigPath string
	rootSchemaPath string
)

var rootCmd = &cobra.Command{
	Use:   "julferiin-ops",
	Short: "JULFERIIN operations toolkit",
	Long:  "julferiin-ops runs the logistics simulator, the notification centre and the operator dashboard.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "config/logistics.yaml", "Path to configuration YAML")
	rootCmd.PersistentFlags().StringVar(&rootSchemaPath, "schema", "schemas/logistics.cue", "Path to CUE schema file")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// loadConfig reads the configuration file and applies environment overrides.
// A missing file at the default location selects the built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootConfigPath, rootSchemaPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
