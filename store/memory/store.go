// Package memory provides an in-memory Store for tests and ephemeral
// deployments. Snapshots are held as encoded bytes so a saved ledger is
// isolated from later mutation of the live loans.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xraph/loansign/loan"
)

// Store is an in-memory snapshot store. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	snapshot []byte
	closed   bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Migrate is a no-op.
func (s *Store) Migrate(ctx context.Context) error { return nil }

// Load decodes the last saved snapshot. An unwritten store loads empty.
func (s *Store) Load(ctx context.Context) ([]*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("memory: store is closed")
	}
	if s.snapshot == nil {
		return []*loan.Loan{}, nil
	}
	var loans []*loan.Loan
	if err := json.Unmarshal(s.snapshot, &loans); err != nil {
		return nil, fmt.Errorf("memory: decode snapshot: %w", err)
	}
	return loans, nil
}

// Save encodes and retains the ledger.
func (s *Store) Save(ctx context.Context, loans []*loan.Loan) error {
	data, err := json.Marshal(loans)
	if err != nil {
		return fmt.Errorf("memory: encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("memory: store is closed")
	}
	s.snapshot = data
	return nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("memory: store is closed")
	}
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
