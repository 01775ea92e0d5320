package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MrSnakeDoc/hop/internal/app"
	"github.com/MrSnakeDoc/hop/internal/config"
	"github.com/MrSnakeDoc/hop/internal/logger"
	"github.com/MrSnakeDoc/hop/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "hop",
	Short:        "Synchronized bookmark launcher",
	Version:      version.String(),
	SilenceUsage: true,
	Long: `hop keeps a personal list of links in a local store, synchronizes it
with a shared Redis copy, and jumps to the most recently used link
matching a query.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return fmt.Errorf("failed to read --env-file: %w", err)
		}
		// A missing default .env is fine; an explicit one must exist
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file with HOP_* settings")
	rootCmd.PersistentFlags().StringP("db", "d", "", "Path to the SQLite database file (overrides HOP_DB_PATH)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at the configured level instead of warnings only")
}

// loadConfig reads HOP_* settings and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()

	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, fmt.Errorf("failed to read --db: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// cliLogger keeps one-shot commands quiet unless --verbose is set.
// Logs are human-readable when stderr is a terminal.
func cliLogger(cmd *cobra.Command, cfg *config.Config) logger.Logger {
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = cfg.LogLevel
	}
	pretty := cfg.PrettyLog || term.IsTerminal(int(os.Stderr.Fd()))
	return logger.New(level, pretty, cfg.LogFile)
}

// openCore opens the local store for a one-shot command. Commands that do
// not talk to the remote skip connecting to it.
func openCore(ctx context.Context, cmd *cobra.Command, online bool) (*app.Core, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !online {
		local := *cfg
		local.RedisAddr = ""
		cfg = &local
	}
	return app.NewCore(ctx, cfg, cliLogger(cmd, cfg))
}
