// Package main is the entry point for the recipe catalogue query engine.
//
// The server exposes the catalogue over a versioned REST API: random
// recipes, the daily menu, category and ingredient directories, and the
// four filter searches. Recipe data lives in an embedded DuckDB file; all
// filter semantics are computed in the catalog engine on top of it.
//
// Startup order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Database: open DuckDB, create schema, optionally seed the demo catalogue
//  3. Engine: catalogue query semantics over the store
//  4. HTTP server: chi router under a supervision tree
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests and closes the database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppetrovna/povarenok/internal/api"
	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/config"
	"github.com/ppetrovna/povarenok/internal/database"
	"github.com/ppetrovna/povarenok/internal/logging"
	"github.com/ppetrovna/povarenok/internal/supervisor"
	"github.com/ppetrovna/povarenok/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger has to do.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Msg("Starting recipe query engine")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
			logging.Fatal().Err(err).Msg("Failed to seed demo catalogue")
		}
	}

	engine := catalog.NewEngine(db, catalog.MenuSlots{
		Breakfast: cfg.Menu.Breakfast,
		Lunch:     cfg.Menu.Lunch,
		Snack:     cfg.Menu.Snack,
		Dinner:    cfg.Menu.Dinner,
	})

	handler := api.NewHandler(engine, db, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree("povarenok-server", supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}
