package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roster-lab/internal"
	"roster-lab/projection"
	"roster-lab/runtime"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and owns their lifecycle, so every deferred
// cleanup runs before the process exits.
func run() error {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Search index (Bluge), in memory when no path is set
	writer, err := projection.OpenWriter(config.SearchIndexPath)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = writer.Close()
	}()

	// 4. Engine
	engine := runtime.NewEngine(log, db, writer, runtime.Options{
		EventBufferSize:   config.EventBufferSize,
		NumberOfWorkers:   config.NumberOfWorkers,
		MaxTxAttempts:     config.MaxTxAttempts,
		TxRetryDelay:      config.TxRetryDelay,
		ReconcileInterval: config.ReconcileInterval,
		RestartInterval:   config.RestartInterval,
		LimitMessages:     config.LimitMessages,
		SearchLimit:       config.SearchLimit,

		MetricInterval:       config.MetricInterval,
		LowCapacityThreshold: config.LowCapacityThreshold,
	})

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = engine.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("search index rebuild failed: %w", err)
	}
	engine.Start(ctx)
	defer engine.Stop()

	// 6. Debug server, only when a port is configured
	errChan := make(chan error, 1)
	var server *http.Server
	if config.DebugPort > 0 {
		server = internal.NewDebugServer(db, config.DebugPort, engine.Stats, log)
		go func() {
			log.Info("Starting debug server", "address", server.Addr, "at", time.Now().UTC())
			if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("debug server error: %w", err)
			}
		}()
	}

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	log.Info("Program stopped cleanly")
	return nil
}
