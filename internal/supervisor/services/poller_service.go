package services

import (
	"context"
	"errors"
)

// Runner is a blocking loop that exits when its context is cancelled.
// bot.Poller satisfies it.
type Runner interface {
	Run(ctx context.Context) error
}

// PollerService supervises the bot's update poller. A context-cancellation
// return is a normal stop, anything else restarts the poller.
type PollerService struct {
	runner Runner
}

// NewPollerService wraps the update poller for supervision.
func NewPollerService(runner Runner) *PollerService {
	return &PollerService{runner: runner}
}

// Serve implements suture.Service.
func (p *PollerService) Serve(ctx context.Context) error {
	err := p.runner.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ctx.Err()
	}
	return err
}

// String identifies the service in supervisor logs.
func (p *PollerService) String() string {
	return "bot-poller"
}
