package loansign_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xraph/loansign"
	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/store/memory"
	"github.com/xraph/loansign/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use flatfile or a database in production)
		st := memory.New()

		// Wire the engine to the host economy
		economy := newFakeEconomy()
		engine := loansign.New(st, economy,
			loansign.WithLogger(slog.Default()),
			loansign.WithSweepInterval(time.Minute),
			loansign.WithMaxLateFee(loansign.MustParse("25")),
		)

		// Start the engine
		ctx := context.Background()
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		lender := uuid.New()
		borrower := uuid.New()
		economy.set(lender, "2000")

		// Extend an offer: nothing moves until the borrower accepts
		offer, err := engine.OfferLoan(ctx, lender, borrower,
			loansign.MustParse("1500"), decimal.NewFromFloat(0.05), 20, loan.PeriodDay)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Offer %s expires at %s\n", offer.ID(), offer.Expiry())

		// Borrower accepts: principal moves, loan joins the ledger
		l, err := engine.AcceptOffer(ctx, borrower)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Loan %s: owes %s over %d days\n", l.ID(), l.LoanAmount(), l.TotalPeriods())

		// Collection runs in the background; trigger a sweep by hand
		collected := engine.Sweep(ctx)
		log.Printf("Collected %d payments\n", collected)

		// Borrowers can also pay down early, fee-free
		if _, err := engine.MakePayment(ctx, l.ID(), loansign.MustParse("200")); err != nil {
			t.Fatal(err)
		}
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.MustParse("49.95") // exact decimal
		_ = types.NewFromInt(100)    // whole currency units
		_ = types.Zero()

		// Arithmetic is exact decimal, never floating point
		m1 := types.NewFromInt(100)
		m2 := types.NewFromInt(300)
		_ = m1.Add(m2)        // 400
		_ = m1.MultiplyInt(3) // 300
		_ = m2.DivideInt(7)   // truncates toward zero

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()       // "100"
		_ = m1.StringFixed(2) // "100.00"
	})
}
