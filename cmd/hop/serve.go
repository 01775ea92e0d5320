package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hop/internal/app"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

// serveCmd runs the HTTP API with background sync and import
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP launcher, background sync and file import",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		addr, err := cmd.Flags().GetString("listen")
		if err != nil {
			return fmt.Errorf("failed to read --listen: %w", err)
		}
		if addr != "" {
			cfg.ListenPort = addr
		}

		loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog, cfg.LogFile)
		defer func() { _ = loggerClient.Sync() }()

		a, err := app.New(cmd.Context(), cfg, loggerClient)
		if err != nil {
			return fmt.Errorf("hop failed to start: %w", err)
		}
		return a.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides HOP_LISTEN_PORT)")
	rootCmd.AddCommand(serveCmd)
}
