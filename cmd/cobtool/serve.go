package main

import (
	"github.com/spf13/cobra"

	"github.com/farmacob/cobtool/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cobtool server",
	Long: `Start the cobtool HTTP server.

The letter generator is built from the config file and rebuilt whenever
the file changes. An edit that does not produce a valid generator is
logged and the previous one stays in effect.

The server provides:
  - /health                     - Basic server health check
  - /ready                      - Readiness check (generator configured)
  - /api/letters/notification   - Extrajudicial notification (JSON)
  - /api/letters/collection     - Collection letter (multipart upload)
  - /api/templates/resolve      - Template names a letter would try

Examples:
  cobtool serve                    # Start on the configured port (default 8080)
  cobtool serve --port 3000        # Start on custom port
  cobtool serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		if path := mgr.ConfigFile(); path != "" {
			logger.Info("config loaded", "file", path)
			mgr.WatchConfig()
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
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
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port)")

	rootCmd.AddCommand(serveCmd)
}
