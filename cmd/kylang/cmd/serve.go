package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/internal/history"
	"github.com/msto63/kylang/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playground server",
	Long: `Starts an HTTP server for browser playgrounds.

Endpoints:
  /ws       WebSocket: send {"type":"run","id":"1","payload":{"source":"display 1"}}
            and receive started, output, done or error messages
  /healthz  JSON health report

Every run is limited by [server] max_steps and run_timeout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := server.FromConfig(appConfig.Server)
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	var store history.Store
	if appConfig.History.Enabled {
		s, err := openHistory()
		if err != nil {
			return err
		}
		store = s
		defer store.Close()
	}

	srv := server.New(cfg, server.Options{Logger: logger, History: store})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Printf("kylang playground server listening on http://%s\n", srv.Address())
	fmt.Printf("  WebSocket:    ws://%s/ws\n", srv.Address())
	fmt.Printf("  Health Check: http://%s/healthz\n", srv.Address())
	fmt.Println("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received", mdwlog.Fields{"server": srv.Address()})
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
