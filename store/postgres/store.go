// Package postgres implements the snapshot store on PostgreSQL via the
// Grove ORM. Payment and fee history live in jsonb columns next to the
// scalar loan fields.
package postgres

import (
	"context"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/loansign/loan"
	loanstore "github.com/xraph/loansign/store"
)

// compile-time interface check
var _ loanstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("loansign/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("loansign/postgres: migration failed: %w", err)
	}
	return nil
}

// Load reads every stored loan, oldest first.
func (s *Store) Load(ctx context.Context) ([]*loan.Loan, error) {
	var models []loanModel
	err := s.pg.NewSelect(&models).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("loansign/postgres: load ledger: %w", err)
	}

	loans := make([]*loan.Loan, len(models))
	for i := range models {
		l, err := fromLoanModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("loansign/postgres: decode loan %s: %w", models[i].ID, err)
		}
		loans[i] = l
	}
	return loans, nil
}

// Save upserts every loan in the snapshot. Loans are never deleted, so
// rows absent from the slice are left untouched.
func (s *Store) Save(ctx context.Context, loans []*loan.Loan) error {
	for _, l := range loans {
		m, err := toLoanModel(l)
		if err != nil {
			return fmt.Errorf("loansign/postgres: encode loan %s: %w", l.ID(), err)
		}
		_, err = s.pg.NewInsert(m).
			OnConflict("(id) DO UPDATE").
			Set("current_period = EXCLUDED.current_period").
			Set("payments = EXCLUDED.payments").
			Set("fees = EXCLUDED.fees").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("loansign/postgres: save loan %s: %w", l.ID(), err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
