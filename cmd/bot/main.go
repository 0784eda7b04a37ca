// Package main is the entry point for the recipe catalogue chat bot.
//
// The bot fronts the query engine on Telegram: it drives checkbox-style
// category and ingredient selection through inline keyboards, keeps the
// per-conversation selection in a session store (in-memory or BadgerDB),
// and talks to the query engine through a retrying, circuit-broken HTTP
// client.
//
// Startup order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Query client: HTTP client with retries wrapped in a circuit breaker
//  3. Session store: memory (with a sweep janitor) or BadgerDB (native TTL)
//  4. Transport: Telegram Bot API with rate-limited sends
//  5. Poller: long-poll loop under a supervision tree
//
// The bot handles graceful shutdown on SIGINT and SIGTERM: the poller
// drains in-flight updates and the session store is closed.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppetrovna/povarenok/internal/bot"
	"github.com/ppetrovna/povarenok/internal/chat"
	"github.com/ppetrovna/povarenok/internal/client"
	"github.com/ppetrovna/povarenok/internal/config"
	"github.com/ppetrovna/povarenok/internal/logging"
	"github.com/ppetrovna/povarenok/internal/session"
	"github.com/ppetrovna/povarenok/internal/supervisor"
	"github.com/ppetrovna/povarenok/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateBot(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid bot configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("query_base_url", cfg.Query.BaseURL).
		Str("session_store", cfg.Session.Store).
		Msg("Starting recipe bot")

	query := client.NewBreakerClient(&cfg.Query)

	store, memStore, err := newSessionStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	transport := chat.NewTelegram(&cfg.Bot)

	// Publishing the command menu is best effort: a transient Telegram error
	// should not keep the bot from starting.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), cfg.Query.Timeout)
	if err := transport.SetCommands(startupCtx, bot.Commands()); err != nil {
		logging.Warn().Err(err).Msg("Failed to publish command menu")
	}
	if err := transport.SetDescription(startupCtx, bot.Description()); err != nil {
		logging.Warn().Err(err).Msg("Failed to publish bot description")
	}
	startupCancel()

	manager := bot.NewManager(query, store, transport, cfg.Bot.CacheTTL)
	poller := bot.NewPoller(transport, manager, cfg.Bot.Workers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree("povarenok-bot", supervisor.DefaultTreeConfig())
	tree.AddWorkerService(services.NewPollerService(poller))
	if memStore != nil {
		tree.AddWorkerService(services.NewJanitorService(memStore, cfg.Session.CleanupInterval))
	}
	logging.Info().Int("workers", cfg.Bot.Workers).Msg("Bot poller service added")

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

	logging.Info().Msg("Bot stopped gracefully")
}

// newSessionStore builds the configured session store. The second return
// is non-nil only for the memory store, which needs the sweep janitor;
// badger expires keys natively.
func newSessionStore(cfg *config.Config) (session.Store, *session.MemoryStore, error) {
	switch cfg.Session.Store {
	case "badger":
		store, err := session.NewBadgerStore(cfg.Session.Path, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store := session.NewMemoryStore(cfg.Session.TTL)
		return store, store, nil
	}
}
