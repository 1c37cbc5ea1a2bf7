// Package mongo implements the snapshot store on MongoDB via the Grove
// ORM. Each loan is one document with its payments and fees embedded.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/loansign/loan"
	loanstore "github.com/xraph/loansign/store"
)

// colLoans is the loan collection name.
const colLoans = "loansign_loans"

// compile-time interface check
var _ loanstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the loan collection indexes.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "lender_id", Value: 1}}},
		{Keys: bson.D{{Key: "borrower_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
	_, err := s.mdb.Collection(colLoans).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("loansign/mongo: migrate %s indexes: %w", colLoans, err)
	}
	return nil
}

// Load reads every stored loan, oldest first.
func (s *Store) Load(ctx context.Context) ([]*loan.Loan, error) {
	var models []loanModel
	err := s.mdb.NewFind(&models).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("loansign/mongo: load ledger: %w", err)
	}

	loans := make([]*loan.Loan, len(models))
	for i := range models {
		l, err := fromLoanModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("loansign/mongo: decode loan %s: %w", models[i].ID, err)
		}
		loans[i] = l
	}
	return loans, nil
}

// Save upserts every loan in the snapshot. Loans are never deleted, so
// documents absent from the slice are left untouched.
func (s *Store) Save(ctx context.Context, loans []*loan.Loan) error {
	for _, l := range loans {
		m := toLoanModel(l)
		_, err := s.mdb.NewUpdate(m).
			Filter(bson.M{"_id": m.ID}).
			SetUpdate(bson.M{"$set": m}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("loansign/mongo: save loan %s: %w", l.ID(), err)
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
