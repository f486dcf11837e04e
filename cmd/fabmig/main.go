package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/logging"
	"github.com/sandipan8609/fabric-migration-v1/pkg/config"
	"github.com/sandipan8609/fabric-migration-v1/pkg/env"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "fabmig",
		Short: "Synapse to Fabric migration toolkit",
		Long:  "Command line tool for converting ADF pipelines and migrating Synapse dedicated pools to Microsoft Fabric",
	}

	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to the migration config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newConvertCmd(),
		newCapacityCmd(),
		newRunCmd(),
		newExtractCmd(),
		newLoadCmd(),
		newValidateCmd(),
		newMigrateCmd(),
		newInitCmd(),
		newCheckConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(parseLevel(level))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig parses the config file named by --config. A missing file is
// tolerated; the defaults cover local conversion runs.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Defaults(), nil
	}
	cfg, err := config.NewParser().Parse(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func loadEnv() (*env.Config, error) {
	return env.Load(".")
}

func fatalf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
