// Package store defines the snapshot persistence interface and its
// backends. The engine holds the full ledger in memory; a Store only
// needs to load it once at startup and write it back whole, so the
// interface is a snapshot contract rather than per-entity CRUD.
package store

import (
	"context"

	"github.com/xraph/loansign/loan"
)

// Store persists the full loan ledger. Implementations must tolerate a
// first run against an empty backend: Load on a store that has never
// been written returns an empty slice, not an error.
type Store interface {
	// Migrate prepares the backend schema. No-op for schemaless
	// backends.
	Migrate(ctx context.Context) error

	// Load reads the entire ledger.
	Load(ctx context.Context) ([]*loan.Loan, error)

	// Save writes the entire ledger, replacing or upserting whatever
	// was there before. Save must never leave a partially written
	// snapshot visible to a later Load.
	Save(ctx context.Context, loans []*loan.Loan) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
