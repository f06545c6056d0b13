package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avstrong/hotelenquiry/internal/inbox"
	"github.com/avstrong/hotelenquiry/internal/logger"
)

type Config struct {
	L *logger.Logger
}

type transaction struct {
	id        string
	enquiries map[string]*inbox.Enquiry
	events    map[string]*inbox.Event
}

// DB keeps enquiries in process memory. Writes are staged per transaction
// and only become visible on commit.
type DB struct {
	mu              sync.Mutex
	l               *logger.Logger
	enquiries       map[string]*inbox.Enquiry
	events          map[string]*inbox.Event
	idempotencyKeys map[string]*inbox.Enquiry
	transactions    map[string]*transaction
	nextTrxID       int64
}

func New(conf Config) *DB {
	//nolint:exhaustruct
	return &DB{
		l:               conf.L,
		enquiries:       make(map[string]*inbox.Enquiry),
		events:          make(map[string]*inbox.Event),
		idempotencyKeys: make(map[string]*inbox.Enquiry),
		transactions:    make(map[string]*transaction),
	}
}

func (db *DB) BeginTransaction(ctx context.Context) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = &transaction{
		id:        trxID,
		enquiries: make(map[string]*inbox.Enquiry),
		events:    make(map[string]*inbox.Event),
	}

	return withTransactionID(ctx, trxID), nil
}

// transaction must be called with db.mu held.
func (db *DB) transaction(ctx context.Context) (*transaction, error) {
	trxID, ok := transactionIDFromContext(ctx)
	if !ok || trxID == "" {
		return nil, ErrTransactionIDNotFoundInCtx
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}

	return trx, nil
}

func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	for id, e := range trx.enquiries {
		if _, dup := db.idempotencyKeys[e.IdempotencyKey]; dup {
			delete(db.transactions, trx.id)

			return fmt.Errorf("enquiry %s: %w", id, ErrDuplicateIdempotencyKey)
		}
	}

	for id, e := range trx.enquiries {
		db.enquiries[id] = e
		db.idempotencyKeys[e.IdempotencyKey] = e
	}

	for id, e := range trx.events {
		db.events[id] = e
	}

	delete(db.transactions, trx.id)

	db.l.LogDebug("Committed %s with %d enquiries", trx.id, len(trx.enquiries))

	return nil
}

func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) SaveEnquiry(ctx context.Context, e *inbox.Enquiry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	trx.enquiries[e.ID] = e

	return nil
}

func (db *DB) SaveEvent(ctx context.Context, e *inbox.Event) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	trx.events[e.ID] = e

	return nil
}

func (db *DB) GetEnquiryByIdempotencyKey(_ context.Context, key string) (*inbox.Enquiry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, exists := db.idempotencyKeys[key]
	if !exists {
		return nil, inbox.ErrRecordNotFound
	}

	return e, nil
}

// ListEnquiries returns committed enquiries, oldest first.
func (db *DB) ListEnquiries(_ context.Context) ([]*inbox.Enquiry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]*inbox.Enquiry, 0, len(db.enquiries))
	for _, e := range db.enquiries {
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}

		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (db *DB) Events(_ context.Context) []*inbox.Event {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]*inbox.Event, 0, len(db.events))
	for _, e := range db.events {
		out = append(out, e)
	}

	return out
}
