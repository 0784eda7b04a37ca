package bot

import (
	"context"
	"sync"
	"time"

	"github.com/ppetrovna/povarenok/internal/chat"
	"github.com/ppetrovna/povarenok/internal/logging"
)

// pollRetryDelay backs off the getUpdates loop after a transport failure so
// an outage does not spin the poller.
const pollRetryDelay = 3 * time.Second

// Poller long-polls the transport for updates and fans them out to a fixed
// set of workers. Updates for the same conversation always land on the same
// worker, so each conversation is handled strictly in order while distinct
// conversations proceed concurrently.
type Poller struct {
	transport chat.Transport
	manager   *Manager
	workers   int
}

// NewPoller creates a poller feeding the manager with the given worker count.
func NewPoller(transport chat.Transport, manager *Manager, workers int) *Poller {
	if workers < 1 {
		workers = 1
	}
	return &Poller{
		transport: transport,
		manager:   manager,
		workers:   workers,
	}
}

// Run polls until ctx is cancelled. It returns ctx.Err() after all in-flight
// updates have been handled, which makes it directly usable as a supervised
// service.
func (p *Poller) Run(ctx context.Context) error {
	queues := make([]chan chat.Update, p.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan chat.Update, 16)
		wg.Add(1)
		go func(queue <-chan chat.Update) {
			defer wg.Done()
			for update := range queue {
				p.manager.HandleUpdate(ctx, update)
			}
		}(queues[i])
	}
	defer func() {
		for _, queue := range queues {
			close(queue)
		}
		wg.Wait()
	}()

	logging.Info().Int("workers", p.workers).Msg("Bot poller started")

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.transport.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn().Err(err).Msg("Failed to fetch updates")
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			if update.ID >= offset {
				offset = update.ID + 1
			}
			chatID, ok := updateChatID(update)
			if !ok {
				continue
			}
			queue := queues[shard(chatID, p.workers)]
			select {
			case queue <- update:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func updateChatID(update chat.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.ChatID, true
	case update.Callback != nil:
		return update.Callback.ChatID, true
	}
	return 0, false
}

func shard(chatID int64, workers int) int {
	return int(uint64(chatID) % uint64(workers))
}
