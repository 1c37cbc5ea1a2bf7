package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/types"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	loans, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on empty store error = %v", err)
	}
	if len(loans) != 0 {
		t.Fatalf("Load() on empty store = %d loans", len(loans))
	}

	l, err := loan.New(uuid.New(), uuid.New(), types.MustParse("1500"), decimal.NewFromFloat(0.05), 20, loan.PeriodDay)
	if err != nil {
		t.Fatalf("loan.New() error = %v", err)
	}
	if err := s.Save(ctx, []*loan.Loan{l}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loans, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loans) != 1 {
		t.Fatalf("Load() = %d loans, want 1", len(loans))
	}
	got := loans[0]
	if got.ID() != l.ID() {
		t.Errorf("id = %v, want %v", got.ID(), l.ID())
	}
	if !got.LoanAmount().Equal(l.LoanAmount()) {
		t.Errorf("loan amount = %s, want %s", got.LoanAmount(), l.LoanAmount())
	}

	// The stored snapshot is isolated from later mutation.
	if got == l {
		t.Error("Load() returned the live loan, not a copy")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping() after Close() expected error")
	}
	if _, err := s.Load(ctx); err == nil {
		t.Error("Load() after Close() expected error")
	}
}
