// Package supervisor builds the supervision tree that keeps the long-running
// pieces of a binary alive: the HTTP server for the query engine, the update
// poller and session janitor for the bot. Services are restarted on failure
// with backoff; a persistent failure backs the whole layer off instead of
// crash-looping the process.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/ppetrovna/povarenok/internal/logging"
)

// TreeConfig holds the failure-handling knobs for the tree. Zero values
// fall back to suture's defaults.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64
	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64
	// FailureBackoff is how long to wait once the threshold is exceeded.
	FailureBackoff time.Duration
	// ShutdownTimeout is the maximum wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's stock failure parameters.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is a two-layer supervision tree: an api layer for request-serving
// services and a workers layer for background loops. The split isolates
// failures, so a crash-looping background worker cannot take the HTTP
// server down with it.
type Tree struct {
	root    *suture.Supervisor
	api     *suture.Supervisor
	workers *suture.Supervisor
	config  TreeConfig
}

// NewTree creates the supervision tree for the named binary. Supervisor
// events are logged through the process-wide zerolog logger via its slog
// adapter.
func NewTree(name string, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}

	rootSpec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New(name, rootSpec)
	api := suture.New("api-layer", childSpec)
	workers := suture.New("workers-layer", childSpec)
	root.Add(api)
	root.Add(workers)

	return &Tree{
		root:    root,
		api:     api,
		workers: workers,
		config:  config,
	}
}

// AddAPIService adds a request-serving service (the HTTP server).
func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// AddWorkerService adds a background loop (poller, janitor).
func (t *Tree) AddWorkerService(svc suture.Service) suture.ServiceToken {
	return t.workers.Add(svc)
}

// Serve runs the tree and blocks until ctx is cancelled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine; the returned channel yields
// the terminal error when the tree stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that failed to stop within the
// shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
