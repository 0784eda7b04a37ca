package bot

import (
	"context"
	"testing"
	"time"

	"github.com/ppetrovna/povarenok/internal/chat"
	"github.com/ppetrovna/povarenok/internal/session"
)

// scriptedTransport serves one batch of updates, then cancels the poll
// context so Run winds down deterministically.
type scriptedTransport struct {
	fakeTransport
	batch      []chat.Update
	served     bool
	lastOffset int64
	cancel     context.CancelFunc
}

func (s *scriptedTransport) GetUpdates(ctx context.Context, offset int64) ([]chat.Update, error) {
	s.lastOffset = offset
	if !s.served {
		s.served = true
		return s.batch, nil
	}
	s.cancel()
	return nil, ctx.Err()
}

func TestPollerHandlesBatchAndAdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport := &scriptedTransport{
		batch: []chat.Update{
			message(1, "/start"),
			{ID: 7, Message: &chat.Message{ChatID: 2, Text: "/start"}},
			{ID: 9}, // neither message nor callback, still advances the offset
		},
		cancel: cancel,
	}
	store := session.NewMemoryStore(time.Hour)
	manager := NewManager(&fakeQuery{}, store, transport, time.Minute)

	poller := NewPoller(transport, manager, 4)
	if err := poller.Run(ctx); err != context.Canceled {
		t.Fatalf("Run returned %v", err)
	}

	if transport.lastOffset != 10 {
		t.Errorf("offset = %d, want 10", transport.lastOffset)
	}
	// Two /start commands, two messages each.
	if len(transport.sent) != 4 {
		t.Errorf("sent %d messages, want 4", len(transport.sent))
	}
}
