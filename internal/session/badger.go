package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/ppetrovna/povarenok/internal/logging"
)

const sessionKeyPrefix = "session:"

// lockStripes bounds the per-conversation mutex table.
const lockStripes = 64

// BadgerStore is the durable Store: sessions survive bot restarts. Badger's
// native TTL handles eviction, so there is no janitor to run. Striped locks
// give per-conversation mutual exclusion without optimistic-conflict
// retries.
type BadgerStore struct {
	db    *badger.DB
	ttl   time.Duration
	locks [lockStripes]sync.Mutex
}

// NewBadgerStore opens (creating if needed) a Badger database at path.
func NewBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store at %s: %w", path, err)
	}
	logging.Info().Str("path", path).Dur("ttl", ttl).Msg("Session store opened")
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (b *BadgerStore) lock(chatID int64) *sync.Mutex {
	return &b.locks[uint64(chatID)%lockStripes]
}

func sessionKey(chatID int64) []byte {
	return []byte(sessionKeyPrefix + strconv.FormatInt(chatID, 10))
}

func (b *BadgerStore) Get(_ context.Context, chatID int64) (*Selection, error) {
	selection := &Selection{}
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(chatID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, selection)
		})
	})
	if err != nil {
		return nil, err
	}
	return selection, nil
}

func (b *BadgerStore) Update(ctx context.Context, chatID int64, fn func(*Selection)) (*Selection, error) {
	mu := b.lock(chatID)
	mu.Lock()
	defer mu.Unlock()

	selection, err := b.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	fn(selection)

	data, err := json.Marshal(selection)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(chatID), data).WithTTL(b.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return selection, nil
}

func (b *BadgerStore) Clear(_ context.Context, chatID int64) error {
	mu := b.lock(chatID)
	mu.Lock()
	defer mu.Unlock()

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(chatID))
	})
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

var _ Store = (*BadgerStore)(nil)
