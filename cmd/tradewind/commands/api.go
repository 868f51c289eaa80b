package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradewind-io/tradewind/internal/api"
	"github.com/tradewind-io/tradewind/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                       - Health check
  GET  /api/recommendations          - Latest recommendation snapshot
  GET  /api/regime                   - Current market regime
  POST /api/regime/refresh           - Force regime re-analysis
  GET  /api/positions                - Open positions
  GET  /api/positions/{id}/stops     - Stop-loss audit trail
  GET  /api/portfolio                - Portfolio summary
  GET  /api/trades                   - Recent trades
  POST /api/cycle                    - Trigger a trading cycle

Example:
  go run ./cmd/tradewind api
  go run ./cmd/tradewind api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind API Server ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	tradingHandler := handlers.NewTradingHandler(a.manager, a.repository, a.cfg.Trading, a.log)
	marketHandler := handlers.NewMarketHandler(a.repository, a.detector, a.log)

	router := api.NewRouter(tradingHandler, marketHandler, a.db, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
