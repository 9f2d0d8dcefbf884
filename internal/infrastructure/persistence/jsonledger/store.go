package jsonledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MyDadsSoft/recoverys/internal/domain/order"
	"github.com/MyDadsSoft/recoverys/internal/domain/shared"
	"go.uber.org/zap"
)

// Store is the Ledger Store: a durable, insertion-ordered collection of
// orders mirrored to a single JSON document. The in-memory slice is the
// source of truth; every mutation rewrites the full snapshot synchronously.
//
// Snapshot writes go through a temp file and rename, so a concurrent reader
// of the ledger file never observes a partial document.
type Store struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	orders []order.Order
	nextID int64
}

// NewStore creates a Store backed by the JSON document at path.
// Call Load before use.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		nextID: 1,
	}
}

// Load reads the persisted snapshot. A missing file initializes an empty
// ledger. A corrupt or unparseable file is logged and also falls back to an
// empty ledger; a bad snapshot must never prevent the process from starting.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("ledger file not found, starting empty", zap.String("path", s.path))
			s.orders = nil
			s.nextID = 1
			return nil
		}
		return fmt.Errorf("read ledger %s: %w", s.path, err)
	}

	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		s.logger.Error("ledger file is corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.orders = nil
		s.nextID = 1
		return nil
	}

	s.orders = orders
	s.nextID = 1
	for _, o := range orders {
		if o.ID >= s.nextID {
			s.nextID = o.ID + 1
		}
	}

	s.logger.Info("ledger loaded",
		zap.String("path", s.path),
		zap.Int("orders", len(orders)),
	)
	return nil
}

// Append assigns the next id to the order, adds it to the ledger, and
// persists the snapshot. A failed write is returned as a PERSISTENCE_WARNING
// domain error; the order is still in the in-memory collection and the id
// remains assigned.
func (s *Store) Append(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.nextID
	s.nextID++
	s.orders = append(s.orders, *o)

	return s.persistLocked()
}

// List returns a copy of all orders in insertion order.
func (s *Store) List(ctx context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]order.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

// FindByID returns a copy of the order with the given id.
func (s *Store) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			o := s.orders[i]
			return &o, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Order %d not found", id))
}

// MarkReplied flips the replied flag of the identified order and persists.
// The flip is a compare-and-set under the store lock: an already-replied
// order is left untouched and no snapshot is written.
func (s *Store) MarkReplied(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if s.orders[i].Replied {
			return nil
		}
		s.orders[i].Replied = true
		return s.persistLocked()
	}
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Order %d not found", id))
}

// MarkFirstUnreplied finds the earliest unreplied order matching the
// predicate, flips its replied flag, persists, and returns a copy of the
// updated order. Find and flip happen under one lock acquisition so two
// concurrent replies cannot both claim the same order.
func (s *Store) MarkFirstUnreplied(ctx context.Context, match func(*order.Order) bool) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].Replied || !match(&s.orders[i]) {
			continue
		}
		s.orders[i].Replied = true
		o := s.orders[i]
		return &o, s.persistLocked()
	}
	return nil, shared.NewDomainError("NOT_FOUND", "No unreplied order matches the recipient")
}

// persistLocked rewrites the full snapshot. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.orders, "", "  ")
	if err != nil {
		return s.persistenceWarning(err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return s.persistenceWarning(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return s.persistenceWarning(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return s.persistenceWarning(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return s.persistenceWarning(err)
	}
	return nil
}

// persistenceWarning logs a failed snapshot write and wraps it as the
// non-fatal PERSISTENCE_WARNING kind. The in-memory ledger stays
// authoritative for the rest of the process lifetime.
func (s *Store) persistenceWarning(err error) error {
	s.logger.Error("failed to persist ledger snapshot",
		zap.String("path", s.path),
		zap.Error(err),
	)
	return shared.NewDomainError("PERSISTENCE_WARNING",
		fmt.Sprintf("Ledger snapshot could not be written: %v", err))
}

// Ensure Store implements the repository port
var _ order.Repository = (*Store)(nil)
