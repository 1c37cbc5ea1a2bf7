// Package ledger holds the in-memory book of record: every active loan
// plus each borrower's pending offer. The registry is safe for
// concurrent use; collection workers and foreground commands share it.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/loansign/id"
	"github.com/xraph/loansign/loan"
)

// Registry is the concurrent set of loans and pending offers. Loans are
// kept in insertion order so snapshots are stable.
type Registry struct {
	mu     sync.RWMutex
	loans  map[id.LoanID]*loan.Loan
	order  []id.LoanID
	offers map[uuid.UUID]*loan.Offer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loans:  make(map[id.LoanID]*loan.Loan),
		offers: make(map[uuid.UUID]*loan.Offer),
	}
}

// Add registers a loan. Re-adding an existing loan replaces it without
// disturbing its position.
func (r *Registry) Add(l *loan.Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID()]; !ok {
		r.order = append(r.order, l.ID())
	}
	r.loans[l.ID()] = l
}

// SetLoans replaces the entire loan set, preserving the given order.
// Used when loading a snapshot at startup.
func (r *Registry) SetLoans(loans []*loan.Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans = make(map[id.LoanID]*loan.Loan, len(loans))
	r.order = make([]id.LoanID, 0, len(loans))
	for _, l := range loans {
		if _, ok := r.loans[l.ID()]; !ok {
			r.order = append(r.order, l.ID())
		}
		r.loans[l.ID()] = l
	}
}

// Get returns the loan with the given id.
func (r *Registry) Get(loanID id.LoanID) (*loan.Loan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loans[loanID]
	return l, ok
}

// All returns every registered loan in insertion order.
func (r *Registry) All() []*loan.Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*loan.Loan, 0, len(r.order))
	for _, lid := range r.order {
		out = append(out, r.loans[lid])
	}
	return out
}

// Len returns the number of registered loans.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.loans)
}

// ByLender returns the loans extended by the given party.
func (r *Registry) ByLender(lender uuid.UUID) []*loan.Loan {
	return r.filter(func(l *loan.Loan) bool { return l.Lender() == lender })
}

// ByBorrower returns the loans owed by the given party.
func (r *Registry) ByBorrower(borrower uuid.UUID) []*loan.Loan {
	return r.filter(func(l *loan.Loan) bool { return l.Borrower() == borrower })
}

// Due returns the unsettled loans with at least one installment owing.
func (r *Registry) Due() []*loan.Loan {
	return r.filter(func(l *loan.Loan) bool { return !l.PaidOff() && l.PaymentDue() })
}

// Overdue returns the unsettled loans past their due date as of now.
func (r *Registry) Overdue(now time.Time) []*loan.Loan {
	return r.filter(func(l *loan.Loan) bool { return l.Overdue(now) })
}

func (r *Registry) filter(keep func(*loan.Loan) bool) []*loan.Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*loan.Loan
	for _, lid := range r.order {
		if l := r.loans[lid]; keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// PutOffer records a pending offer for the borrower, replacing any
// earlier one. A borrower has at most one pending offer.
func (r *Registry) PutOffer(o *loan.Offer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[o.Loan().Borrower()] = o
}

// Offer returns the borrower's pending offer. A lapsed offer is
// discarded and reported as absent.
func (r *Registry) Offer(borrower uuid.UUID) (*loan.Offer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[borrower]
	if !ok {
		return nil, false
	}
	if o.Expired(time.Now()) {
		delete(r.offers, borrower)
		return nil, false
	}
	return o, true
}

// TakeOffer removes and returns the borrower's pending offer. Lapsed
// offers are discarded and reported as absent.
func (r *Registry) TakeOffer(borrower uuid.UUID) (*loan.Offer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[borrower]
	if !ok {
		return nil, false
	}
	delete(r.offers, borrower)
	if o.Expired(time.Now()) {
		return nil, false
	}
	return o, true
}

// RemoveOffer discards the borrower's pending offer, if any.
func (r *Registry) RemoveOffer(borrower uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.offers, borrower)
}

// PruneOffers drops every offer that has lapsed as of now and returns
// how many were dropped.
func (r *Registry) PruneOffers(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for borrower, o := range r.offers {
		if o.Expired(now) {
			delete(r.offers, borrower)
			n++
		}
	}
	return n
}
