// Package loan implements the amortization model at the heart of the
// engine: pre-compounded loans collected in fixed installments, payment
// and fee records, and pending offers.
//
// A Loan is fully determined at creation. The total obligation is the
// principal compounded once per period over the whole term, so interest
// never accrues afterwards; collection only divides the remaining
// obligation evenly over the remaining periods. All mutation goes
// through MakePayment and AttemptPayment, which serialize against each
// other and against snapshot serialization with a per-loan mutex.
package loan

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xraph/loansign/id"
	"github.com/xraph/loansign/types"
)

// ErrInvalidTerms is returned by New when the requested terms cannot
// form a collectible loan.
var ErrInvalidTerms = errors.New("loan: invalid terms")

// Loan is a single peer-to-peer loan. The zero value is not usable;
// construct with New or Restore, or decode from JSON.
type Loan struct {
	mu sync.Mutex

	id            id.LoanID
	lender        uuid.UUID
	borrower      uuid.UUID
	principal     types.Money
	loanAmount    types.Money
	initiation    time.Time
	currentPeriod int
	totalPeriods  int
	periodUnit    PeriodUnit
	payments      []*Payment
	fees          []*Fee
}

// New creates a loan between two parties. The total obligation is
// computed up front as principal * (1+rate)^periods and never changes
// afterwards. The initiation timestamp is set to now; period one is due
// one period unit later.
func New(lender, borrower uuid.UUID, principal types.Money, rate decimal.Decimal, periods int, unit PeriodUnit) (*Loan, error) {
	switch {
	case lender == uuid.Nil || borrower == uuid.Nil:
		return nil, fmt.Errorf("%w: missing party", ErrInvalidTerms)
	case lender == borrower:
		return nil, fmt.Errorf("%w: lender and borrower are the same party", ErrInvalidTerms)
	case !principal.IsPositive():
		return nil, fmt.Errorf("%w: principal must be positive", ErrInvalidTerms)
	case rate.IsNegative():
		return nil, fmt.Errorf("%w: rate must not be negative", ErrInvalidTerms)
	case periods <= 0:
		return nil, fmt.Errorf("%w: term must be at least one period", ErrInvalidTerms)
	case !unit.Valid():
		return nil, fmt.Errorf("%w: unknown period unit %q", ErrInvalidTerms, unit)
	}
	return &Loan{
		id:           id.NewLoanID(),
		lender:       lender,
		borrower:     borrower,
		principal:    principal,
		loanAmount:   compound(principal, rate, periods),
		initiation:   time.Now().UTC(),
		totalPeriods: periods,
		periodUnit:   unit,
	}, nil
}

// NewDaily creates a loan with daily periods from float terms. Intended
// for command-style call sites that parse user input.
func NewDaily(lender, borrower uuid.UUID, principal, rate float64, days int) (*Loan, error) {
	return New(lender, borrower, types.NewFromFloat(principal), decimal.NewFromFloat(rate), days, PeriodDay)
}

// Restore rebuilds a loan from previously persisted state. The stored
// total obligation is trusted as-is and not recomputed.
func Restore(loanID id.LoanID, lender, borrower uuid.UUID, principal, loanAmount types.Money, initiation time.Time, currentPeriod, totalPeriods int, unit PeriodUnit, payments []*Payment, fees []*Fee) *Loan {
	return &Loan{
		id:            loanID,
		lender:        lender,
		borrower:      borrower,
		principal:     principal,
		loanAmount:    loanAmount,
		initiation:    initiation,
		currentPeriod: currentPeriod,
		totalPeriods:  totalPeriods,
		periodUnit:    unit,
		payments:      payments,
		fees:          fees,
	}
}

// compound applies (1+rate) once per period by exact repeated
// multiplication.
func compound(principal types.Money, rate decimal.Decimal, periods int) types.Money {
	factor := decimal.NewFromInt(1).Add(rate)
	d := principal.Decimal()
	for i := 0; i < periods; i++ {
		d = d.Mul(factor)
	}
	return types.NewFromDecimal(d)
}

// ID returns the loan identifier.
func (l *Loan) ID() id.LoanID { return l.id }

// Lender returns the lending party.
func (l *Loan) Lender() uuid.UUID { return l.lender }

// Borrower returns the borrowing party.
func (l *Loan) Borrower() uuid.UUID { return l.borrower }

// Principal returns the amount originally disbursed.
func (l *Loan) Principal() types.Money { return l.principal }

// LoanAmount returns the fixed total obligation, interest included.
func (l *Loan) LoanAmount() types.Money { return l.loanAmount }

// Initiation returns when the loan term started.
func (l *Loan) Initiation() time.Time { return l.initiation }

// TotalPeriods returns the length of the term in periods.
func (l *Loan) TotalPeriods() int { return l.totalPeriods }

// PeriodUnit returns the calendar granularity of one period.
func (l *Loan) PeriodUnit() PeriodUnit { return l.periodUnit }

// CurrentPeriod returns how many periods have been settled so far.
func (l *Loan) CurrentPeriod() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPeriod
}

// Payments returns a copy of the payment history in collection order.
func (l *Loan) Payments() []*Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Payment, len(l.payments))
	copy(out, l.payments)
	return out
}

// Fees returns a copy of the standalone fees attached to the loan.
func (l *Loan) Fees() []*Fee {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Fee, len(l.fees))
	copy(out, l.fees)
	return out
}

// AllFees returns every fee on the loan: standalone fees plus fees
// attached to individual payments.
func (l *Loan) AllFees() []*Fee {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Fee, 0, len(l.fees))
	out = append(out, l.fees...)
	for _, p := range l.payments {
		if p.fee != nil {
			out = append(out, p.fee)
		}
	}
	return out
}

// AddFee attaches a standalone fee to the loan.
func (l *Loan) AddFee(f *Fee) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fees = append(l.fees, f)
}

// DueDate returns the instant after which the loan is overdue. The
// final period ends a full period after the last installment comes due,
// so the due date sits one extra period past the end of the term.
func (l *Loan) DueDate() time.Time {
	return l.initiation.Add(time.Duration(l.totalPeriods+1) * l.periodUnit.Duration())
}

// Overdue reports whether the loan is unpaid past its due date.
func (l *Loan) Overdue(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.paidOff() && now.After(l.DueDate())
}

// ExpectedCurrentPeriod returns how many whole periods have elapsed
// since initiation.
func (l *Loan) ExpectedCurrentPeriod() int {
	return l.expectedCurrentPeriod()
}

func (l *Loan) expectedCurrentPeriod() int {
	return int(time.Since(l.initiation) / l.periodUnit.Duration())
}

// RemainingPeriods returns how many periods have not yet been settled.
func (l *Loan) RemainingPeriods() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingPeriods()
}

func (l *Loan) remainingPeriods() int {
	return l.totalPeriods - l.currentPeriod
}

// PaymentDue reports whether settlement lags behind elapsed time.
func (l *Loan) PaymentDue() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paymentDue()
}

func (l *Loan) paymentDue() bool {
	return l.expectedCurrentPeriod() > l.currentPeriod
}

// PaidOff reports whether nothing further is owed.
func (l *Loan) PaidOff() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paidOff()
}

func (l *Loan) paidOff() bool {
	return !l.remainingAmount().IsPositive()
}

// RequiredPayments returns how many installments the next collection
// must cover. Zero when the loan is settled or the borrower is on
// schedule; otherwise the lag behind the expected period, capped at the
// periods left on the term but never less than one, so a lapsed term
// with a balance still demands a final balloon collection.
func (l *Loan) RequiredPayments() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.requiredPayments()
}

func (l *Loan) requiredPayments() int {
	if l.paidOff() {
		return 0
	}
	n := l.expectedCurrentPeriod() - l.currentPeriod
	if n <= 0 {
		return 0
	}
	if r := l.remainingPeriods(); n > r {
		n = r
	}
	if n < 1 {
		n = 1
	}
	return n
}

// TotalAmount returns the full obligation including all fees.
func (l *Loan) TotalAmount() types.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalAmount()
}

func (l *Loan) totalAmount() types.Money {
	return l.loanAmount.Add(l.feeTotal())
}

// PaymentTotal returns the sum of all amounts collected so far.
func (l *Loan) PaymentTotal() types.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paymentTotal()
}

func (l *Loan) paymentTotal() types.Money {
	total := types.Zero()
	for _, p := range l.payments {
		total = total.Add(p.amount)
	}
	return total
}

// FeeTotal returns the sum of every fee on the loan.
func (l *Loan) FeeTotal() types.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feeTotal()
}

func (l *Loan) feeTotal() types.Money {
	total := types.Zero()
	for _, f := range l.fees {
		total = total.Add(f.amount)
	}
	for _, p := range l.payments {
		if p.fee != nil {
			total = total.Add(p.fee.amount)
		}
	}
	return total
}

// RemainingAmount returns what is still owed: the total obligation plus
// fees, less everything collected. Never negative.
func (l *Loan) RemainingAmount() types.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingAmount()
}

func (l *Loan) remainingAmount() types.Money {
	return l.totalAmount().Subtract(l.paymentTotal()).Max(types.Zero())
}

// InstallmentAmount returns the size of one installment: the remaining
// obligation divided evenly over the remaining periods, rounded down.
// With one period or fewer left the entire remainder comes due at once.
func (l *Loan) InstallmentAmount() types.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.installmentAmount()
}

func (l *Loan) installmentAmount() types.Money {
	if l.paidOff() {
		return types.Zero()
	}
	remaining := l.remainingAmount()
	if l.remainingPeriods() <= 1 {
		return remaining
	}
	return remaining.DivideInt(int64(l.remainingPeriods()))
}

// MakePayment collects up to maxAvailable against the currently due
// installments and advances the settled period accordingly. Returns nil
// when the loan is paid off, when nothing is due, or when maxAvailable
// is negative. The recorded payment carries the shortfall, if any, as
// its deficit.
func (l *Loan) MakePayment(maxAvailable types.Money) *Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.makePayment(maxAvailable)
}

func (l *Loan) makePayment(maxAvailable types.Money) *Payment {
	if l.paidOff() {
		return nil
	}
	required := l.requiredPayments()
	owed := l.installmentAmount().MultiplyInt(int64(required))
	if !owed.IsPositive() || maxAvailable.IsNegative() {
		return nil
	}
	actual := owed.Min(maxAvailable)
	p := newPayment(actual, owed.Subtract(actual))
	l.payments = append(l.payments, p)
	l.currentPeriod += required
	if l.currentPeriod > l.totalPeriods {
		l.currentPeriod = l.totalPeriods
	}
	return p
}

// AttemptPayment collects like MakePayment and, when the collection
// falls short, attaches a late fee proportional to the shortfall:
// (deficit / required) * maxFee.
func (l *Loan) AttemptPayment(maxAvailable, maxFee types.Money) *Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.makePayment(maxAvailable)
	if p == nil {
		return nil
	}
	if p.deficit.IsPositive() {
		fee := NewFee(
			p.deficit.Divide(p.Total()).Multiply(maxFee),
			ReasonInsufficientPayment,
			fmt.Sprintf("%s / %s (%s short)", p.amount.StringFixed(2), p.Total().StringFixed(2), p.deficit.StringFixed(2)),
		)
		p.attachFee(fee)
	}
	return p
}

type loanJSON struct {
	ID            id.LoanID   `json:"id"`
	Lender        uuid.UUID   `json:"lender_id"`
	Borrower      uuid.UUID   `json:"borrower_id"`
	Principal     types.Money `json:"principal"`
	LoanAmount    types.Money `json:"loan_amount"`
	Initiation    time.Time   `json:"initiation"`
	CurrentPeriod int         `json:"current_period"`
	TotalPeriods  int         `json:"total_periods"`
	PeriodUnit    PeriodUnit  `json:"period_unit"`
	Payments      []*Payment  `json:"payments"`
	Fees          []*Fee      `json:"fees,omitempty"`
}

// MarshalJSON implements json.Marshaler. Serialization takes the loan
// lock, so snapshots taken while collection runs are consistent.
func (l *Loan) MarshalJSON() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return json.Marshal(loanJSON{
		ID:            l.id,
		Lender:        l.lender,
		Borrower:      l.borrower,
		Principal:     l.principal,
		LoanAmount:    l.loanAmount,
		Initiation:    l.initiation,
		CurrentPeriod: l.currentPeriod,
		TotalPeriods:  l.totalPeriods,
		PeriodUnit:    l.periodUnit,
		Payments:      l.payments,
		Fees:          l.fees,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Loan) UnmarshalJSON(data []byte) error {
	var raw loanJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.id = raw.ID
	l.lender = raw.Lender
	l.borrower = raw.Borrower
	l.principal = raw.Principal
	l.loanAmount = raw.LoanAmount
	l.initiation = raw.Initiation
	l.currentPeriod = raw.CurrentPeriod
	l.totalPeriods = raw.TotalPeriods
	l.periodUnit = raw.PeriodUnit
	l.payments = raw.Payments
	l.fees = raw.Fees
	return nil
}
