package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/typeguard/internal/cli"
	"github.com/aretw0/typeguard/internal/config"
	"github.com/aretw0/typeguard/internal/logging"
	"github.com/aretw0/typeguard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "typeguard",
	Short: "typeguard checks values and recorded calls against type expressions",
	Long: `typeguard validates runtime values against structural type expressions
(list[int], dict[str, int | none], record{id: int}, tuple[T, T], ...) and
recorded function calls against signature files.

Settings are read from TYPEGUARD_* environment variables and an optional .env
file; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrViolations):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("format", "", "Report format: text, markdown or json (env TYPEGUARD_FORMAT)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error or off (env TYPEGUARD_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("env-file", "", "Load settings from this file instead of ./.env")
}

// settings resolves the configuration for cmd: environment first, then the
// persistent flags that were set explicitly.
type settings struct {
	Config config.Config
	Format tui.Format
	Logger *slog.Logger
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return settings{}, err
	}

	if cmd.Flags().Changed("format") {
		cfg.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	format, err := tui.ParseFormat(cfg.Format)
	if err != nil {
		return settings{}, err
	}
	logger, err := logging.FromFlag(cfg.LogLevel)
	if err != nil {
		return settings{}, err
	}
	slog.SetDefault(logger)
	return settings{Config: cfg, Format: format, Logger: logger}, nil
}
