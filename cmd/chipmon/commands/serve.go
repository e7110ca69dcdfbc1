package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yhlin/chipmon/internal/api"
	"github.com/yhlin/chipmon/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                  - Health check
  POST /api/enrich/run          - Trigger an enrichment run
  GET  /api/enrich/runs/{date}  - Fetch a stored run by date
  GET  /api/enrich/latest       - Fetch the most recent run

Example:
  go run ./cmd/chipmon serve
  go run ./cmd/chipmon serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== chipmon API Server ===")

	a, err := buildApp()
	if err != nil {
		return err
	}

	if servePort != "" {
		a.cfg.Port = servePort
	}

	store := handlers.NewRunStore()
	enrichHandler := handlers.NewEnrichHandler(a.orch, a.list, store, a.log)
	router := api.NewRouter(enrichHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
