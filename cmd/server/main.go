/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the reconciliation dashboard server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config file and environment overrides
  3. Build the zap logger
  4. Load the currency rate table (file or built-in demo table)
  5. Initialize SQLite store
  6. Create API handler with dependencies
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (default: config.yaml)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database
  -demo    Mask monetary figures in responses (overrides config)
  -seed    Seed demo data into a fresh database before serving

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/dashboard.db"

  # Run with in-memory database and masked figures
  ./server -db=":memory:" -demo

ENVIRONMENT:
  PORT, DB_PATH, RATES_FILE, DEMO_MODE override the config file.
  Flags override both.

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config file format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/onutadrian/client-zen-dashboard-sub000/api"
	"github.com/onutadrian/client-zen-dashboard-sub000/config"
	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
	"github.com/onutadrian/client-zen-dashboard-sub000/rates"
	"github.com/onutadrian/client-zen-dashboard-sub000/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	demo := flag.Bool("demo", false, "mask monetary figures in responses")
	seed := flag.Bool("seed", false, "seed demo data into a fresh database and continue")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *demo {
		cfg.DemoMode = true
	}

	// Rate table
	table := loadRates(cfg.Rates.File, log)

	// Initialize store
	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if *seed {
		if err := seedDemo(context.Background(), store, log); err != nil {
			log.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store, table, log, cfg.DemoMode)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Store.Path),
			zap.Bool("demo_mode", cfg.DemoMode),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// loadRates reads the configured rate file, falling back to the built-in
// demo table when no file is configured. Reciprocal drift is logged but
// does not prevent startup.
func loadRates(path string, log *zap.Logger) finance.RateTable {
	var table finance.RateTable
	if path == "" {
		log.Info("no rate file configured, using demo rate table")
		table = rates.Demo()
	} else {
		loaded, err := rates.Load(path)
		if err != nil {
			log.Fatal("failed to load rate table", zap.String("path", path), zap.Error(err))
		}
		table = loaded
	}

	tolerance := decimal.New(1, -6) // 0.000001
	for _, inc := range rates.CheckReciprocals(table, tolerance) {
		log.Warn("rate table inconsistency", zap.String("pair", inc.String()))
	}
	return table
}
