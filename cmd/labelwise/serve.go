package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/config"
	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/home"
	"github.com/labelwise/labelwise/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Labelwise server",
	Long: `Start the Labelwise HTTP server.

This starts both the HTTP API server and the DefraDB container.
When the server shuts down (via Ctrl+C or SIGTERM), DefraDB is also stopped.

The token signing secret must be configured (auth.secret in config.yaml,
or the LABELWISE_AUTH_SECRET environment variable).

Examples:
  labelwise serve                    # Start on default port 8080
  labelwise serve --port 3000        # Start on custom port
  labelwise serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Ensure defradb data directory exists
		defraDataPath := filepath.Join(h.Path(), "defradb")
		if err := os.MkdirAll(defraDataPath, 0755); err != nil {
			return err
		}

		// Load configuration with hot reload
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		cfg := mgr.Get()
		secret := cfg.AuthSecret()
		if secret == "" {
			return errors.New("no token signing secret configured; set auth.secret or LABELWISE_AUTH_SECRET")
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			DefraDataPath: defraDataPath,
			DefraConfig: defra.DockerConfig{
				ContainerName: cfg.Defra.ContainerName,
				Image:         cfg.Defra.Image,
				HostPort:      cfg.Defra.Port,
			},
			ConfigManager: mgr,
			AuthSecret:    secret,
			TokenTTL:      time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
