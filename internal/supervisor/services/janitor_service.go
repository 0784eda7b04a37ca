package services

import (
	"context"
	"time"

	"github.com/ppetrovna/povarenok/internal/logging"
)

// Sweeper evicts expired conversation state. session.MemoryStore satisfies
// it; the badger store expires keys natively and needs no janitor.
type Sweeper interface {
	Sweep(now time.Time) int
}

// JanitorService periodically sweeps idle sessions out of an in-memory
// store so abandoned conversations do not accumulate.
type JanitorService struct {
	sweeper  Sweeper
	interval time.Duration
}

// NewJanitorService creates the sweep loop with the given interval.
func NewJanitorService(sweeper Sweeper, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{sweeper: sweeper, interval: interval}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if evicted := j.sweeper.Sweep(now); evicted > 0 {
				logging.Debug().Int("evicted", evicted).Msg("Swept idle sessions")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (j *JanitorService) String() string {
	return "session-janitor"
}
