package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/types"
)

func newLoan(t *testing.T, lender, borrower uuid.UUID) *loan.Loan {
	t.Helper()
	l, err := loan.New(lender, borrower, types.MustParse("100"), decimal.NewFromFloat(0.05), 10, loan.PeriodDay)
	if err != nil {
		t.Fatalf("loan.New() error = %v", err)
	}
	return l
}

// backdatedLoan rebuilds a loan as if it had started in the past.
func backdatedLoan(t *testing.T, l *loan.Loan, ago time.Duration) *loan.Loan {
	t.Helper()
	return loan.Restore(
		l.ID(), l.Lender(), l.Borrower(),
		l.Principal(), l.LoanAmount(),
		l.Initiation().Add(-ago),
		l.CurrentPeriod(), l.TotalPeriods(), l.PeriodUnit(),
		l.Payments(), l.Fees(),
	)
}

func TestRegistryLoans(t *testing.T) {
	r := NewRegistry()
	lender := uuid.New()
	b1, b2 := uuid.New(), uuid.New()

	first := newLoan(t, lender, b1)
	second := newLoan(t, lender, b2)
	third := newLoan(t, b1, b2)
	for _, l := range []*loan.Loan{first, second, third} {
		r.Add(l)
	}

	if got := r.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if got, ok := r.Get(first.ID()); !ok || got != first {
		t.Error("Get() did not return the registered loan")
	}

	all := r.All()
	if len(all) != 3 || all[0] != first || all[2] != third {
		t.Error("All() lost insertion order")
	}

	if got := r.ByLender(lender); len(got) != 2 {
		t.Errorf("ByLender() count = %d, want 2", len(got))
	}
	if got := r.ByBorrower(b2); len(got) != 2 {
		t.Errorf("ByBorrower() count = %d, want 2", len(got))
	}

	// Re-adding keeps position and count.
	r.Add(first)
	if got := r.Len(); got != 3 {
		t.Errorf("Len() after re-add = %d, want 3", got)
	}

	r.SetLoans([]*loan.Loan{third})
	if got := r.Len(); got != 1 {
		t.Errorf("Len() after SetLoans = %d, want 1", got)
	}
}

func TestRegistryDue(t *testing.T) {
	r := NewRegistry()
	current := newLoan(t, uuid.New(), uuid.New())
	behind := newLoan(t, uuid.New(), uuid.New())
	r.Add(current)
	r.Add(behind)

	if got := r.Due(); len(got) != 0 {
		t.Fatalf("Due() on fresh loans = %d, want 0", len(got))
	}

	behind = backdatedLoan(t, behind, 48*time.Hour)
	r.Add(behind)
	due := r.Due()
	if len(due) != 1 || due[0] != behind {
		t.Fatalf("Due() = %v, want only the lapsed loan", due)
	}

	if got := r.Overdue(time.Now()); len(got) != 0 {
		t.Errorf("Overdue() = %d, want 0", len(got))
	}
	if got := r.Overdue(time.Now().Add(12 * 24 * time.Hour)); len(got) != 2 {
		t.Errorf("Overdue() past term = %d, want 2", len(got))
	}
}

func TestRegistryOffers(t *testing.T) {
	r := NewRegistry()
	borrower := uuid.New()
	l := newLoan(t, uuid.New(), borrower)

	if _, ok := r.Offer(borrower); ok {
		t.Fatal("Offer() on empty registry")
	}

	r.PutOffer(loan.NewOffer(l, time.Minute))
	if _, ok := r.Offer(borrower); !ok {
		t.Fatal("Offer() did not find the pending offer")
	}

	// A second offer for the same borrower replaces the first.
	replacement := loan.NewOffer(l, time.Minute)
	r.PutOffer(replacement)
	got, ok := r.TakeOffer(borrower)
	if !ok || got != replacement {
		t.Fatal("TakeOffer() did not return the replacement offer")
	}
	if _, ok := r.Offer(borrower); ok {
		t.Fatal("offer still present after TakeOffer()")
	}

	expired := loan.NewOffer(l, -time.Minute)
	r.PutOffer(expired)
	if _, ok := r.Offer(borrower); ok {
		t.Error("Offer() returned a lapsed offer")
	}

	r.PutOffer(loan.NewOffer(l, -time.Minute))
	if n := r.PruneOffers(time.Now()); n != 1 {
		t.Errorf("PruneOffers() = %d, want 1", n)
	}
}

func TestRegistryConcurrency(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l, err := loan.New(uuid.New(), uuid.New(), types.MustParse("100"), decimal.NewFromFloat(0.05), 10, loan.PeriodDay)
				if err != nil {
					panic(err)
				}
				r.Add(l)
				r.All()
				r.Due()
			}
		}()
	}
	wg.Wait()
	if got := r.Len(); got != 400 {
		t.Errorf("Len() = %d, want 400", got)
	}
}
