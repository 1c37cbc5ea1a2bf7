package loan

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xraph/loansign/types"
)

var (
	testLender   = uuid.New()
	testBorrower = uuid.New()
	testRate     = decimal.NewFromFloat(0.05)
)

// backdate shifts the loan's start into the past, simulating n elapsed
// periods.
func backdate(l *Loan, n int) {
	l.initiation = l.initiation.Add(-time.Duration(n) * l.periodUnit.Duration())
}

func newTestLoan(t *testing.T, principal string, periods int) *Loan {
	t.Helper()
	l, err := New(testLender, testBorrower, types.MustParse(principal), testRate, periods, PeriodDay)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

// flatLoan has no interest, so installments divide evenly and fee math
// is exact.
func flatLoan(t *testing.T, principal string, periods int) *Loan {
	t.Helper()
	l, err := New(testLender, testBorrower, types.MustParse(principal), decimal.Zero, periods, PeriodDay)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		lender    uuid.UUID
		borrower  uuid.UUID
		principal string
		rate      decimal.Decimal
		periods   int
		unit      PeriodUnit
	}{
		{"nil lender", uuid.Nil, testBorrower, "100", testRate, 10, PeriodDay},
		{"nil borrower", testLender, uuid.Nil, "100", testRate, 10, PeriodDay},
		{"self loan", testLender, testLender, "100", testRate, 10, PeriodDay},
		{"zero principal", testLender, testBorrower, "0", testRate, 10, PeriodDay},
		{"negative principal", testLender, testBorrower, "-5", testRate, 10, PeriodDay},
		{"negative rate", testLender, testBorrower, "100", decimal.NewFromFloat(-0.01), 10, PeriodDay},
		{"zero periods", testLender, testBorrower, "100", testRate, 0, PeriodDay},
		{"bad unit", testLender, testBorrower, "100", testRate, 10, PeriodUnit("fortnight")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.lender, tt.borrower, types.MustParse(tt.principal), tt.rate, tt.periods, tt.unit)
			if !errors.Is(err, ErrInvalidTerms) {
				t.Errorf("New() error = %v, want ErrInvalidTerms", err)
			}
		})
	}
}

func TestCompoundedTotal(t *testing.T) {
	tests := []struct {
		principal       string
		wantTotal       string
		wantInstallment string
	}{
		{"15", "39.7995", "1.9900"},
		{"150", "397.9947", "19.8997"},
		{"1500", "3979.9466", "198.9973"},
		{"15000", "39799.4656", "1989.9733"},
		{"150000", "397994.6558", "19899.7328"},
	}
	for _, tt := range tests {
		t.Run(tt.principal, func(t *testing.T) {
			l := newTestLoan(t, tt.principal, 20)
			if got := l.LoanAmount().StringFixed(4); got != tt.wantTotal {
				t.Errorf("LoanAmount() = %s, want %s", got, tt.wantTotal)
			}
			if got := l.InstallmentAmount().StringFixed(4); got != tt.wantInstallment {
				t.Errorf("InstallmentAmount() = %s, want %s", got, tt.wantInstallment)
			}
		})
	}
}

func TestDueDate(t *testing.T) {
	l := newTestLoan(t, "150", 20)
	want := l.Initiation().Add(21 * 24 * time.Hour)
	if got := l.DueDate(); !got.Equal(want) {
		t.Errorf("DueDate() = %v, want %v", got, want)
	}
	if l.Overdue(l.Initiation().Add(20 * 24 * time.Hour)) {
		t.Error("Overdue() before the due date")
	}
	if !l.Overdue(l.Initiation().Add(22 * 24 * time.Hour)) {
		t.Error("not Overdue() after the due date")
	}
}

func TestRequiredPayments(t *testing.T) {
	l := newTestLoan(t, "150", 20)
	if got := l.RequiredPayments(); got != 0 {
		t.Errorf("fresh loan RequiredPayments() = %d, want 0", got)
	}

	backdate(l, 1)
	if got := l.RequiredPayments(); got != 1 {
		t.Errorf("after 1 period RequiredPayments() = %d, want 1", got)
	}

	backdate(l, 2)
	if got := l.RequiredPayments(); got != 3 {
		t.Errorf("after 3 periods RequiredPayments() = %d, want 3", got)
	}

	backdate(l, 30)
	if got := l.RequiredPayments(); got != 20 {
		t.Errorf("long-lapsed RequiredPayments() = %d, want cap of 20", got)
	}
}

func TestFullRepayment(t *testing.T) {
	l := newTestLoan(t, "15", 20)
	funds := l.LoanAmount().Add(l.LoanAmount())

	for period := 1; period <= 20; period++ {
		backdate(l, 1)
		p := l.MakePayment(funds)
		if p == nil {
			t.Fatalf("period %d: MakePayment() = nil", period)
		}
		if !p.Deficit().IsZero() {
			t.Fatalf("period %d: deficit = %s, want 0", period, p.Deficit())
		}
		if got := l.CurrentPeriod(); got != period {
			t.Fatalf("period %d: CurrentPeriod() = %d", period, got)
		}
	}

	if !l.PaidOff() {
		t.Errorf("loan not paid off, remaining = %s", l.RemainingAmount())
	}
	if !l.PaymentTotal().Equal(l.LoanAmount()) {
		t.Errorf("PaymentTotal() = %s, want %s", l.PaymentTotal(), l.LoanAmount())
	}
	if got := len(l.Payments()); got != 20 {
		t.Errorf("payment count = %d, want 20", got)
	}

	backdate(l, 1)
	if p := l.MakePayment(funds); p != nil {
		t.Errorf("MakePayment() on settled loan = %+v, want nil", p)
	}
}

func TestHalfRepaymentWithBalloon(t *testing.T) {
	l := newTestLoan(t, "150", 20)
	maxFee := types.MustParse("25")

	for period := 1; period <= 20; period++ {
		backdate(l, 1)
		half := l.InstallmentAmount().DivideInt(2)
		p := l.AttemptPayment(half, maxFee)
		if p == nil {
			t.Fatalf("period %d: AttemptPayment() = nil", period)
		}
		if !p.Deficit().IsPositive() {
			t.Fatalf("period %d: deficit = %s, want positive", period, p.Deficit())
		}
		fee := p.Fee()
		if fee == nil {
			t.Fatalf("period %d: no fee on short payment", period)
		}
		if fee.Reason() != ReasonInsufficientPayment {
			t.Fatalf("period %d: fee reason = %q", period, fee.Reason())
		}
		if !fee.Amount().IsPositive() || fee.Amount().GreaterThan(maxFee) {
			t.Fatalf("period %d: fee amount = %s, want in (0, %s]", period, fee.Amount(), maxFee)
		}
	}

	if l.PaidOff() {
		t.Fatal("half-paid loan reports paid off")
	}
	if got := l.RemainingPeriods(); got != 0 {
		t.Fatalf("RemainingPeriods() = %d, want 0", got)
	}

	// Term is over but a balance remains: one balloon collection for
	// the whole remainder, fee-free when funds cover it.
	backdate(l, 1)
	remaining := l.RemainingAmount()
	if got := l.InstallmentAmount(); !got.Equal(remaining) {
		t.Fatalf("balloon installment = %s, want full remainder %s", got, remaining)
	}
	p := l.AttemptPayment(remaining, maxFee)
	if p == nil {
		t.Fatal("balloon AttemptPayment() = nil")
	}
	if !p.Amount().Equal(remaining) {
		t.Errorf("balloon amount = %s, want %s", p.Amount(), remaining)
	}
	if p.Fee() != nil {
		t.Errorf("balloon payment carries fee %s", p.Fee().Amount())
	}
	if !l.PaidOff() {
		t.Errorf("loan not paid off after balloon, remaining = %s", l.RemainingAmount())
	}
}

func TestAttemptPaymentFeeProportion(t *testing.T) {
	l := flatLoan(t, "100", 4)
	backdate(l, 1)

	p := l.AttemptPayment(types.MustParse("10"), types.MustParse("20"))
	if p == nil {
		t.Fatal("AttemptPayment() = nil")
	}
	if !p.Amount().Equal(types.MustParse("10")) {
		t.Errorf("amount = %s, want 10", p.Amount())
	}
	if !p.Deficit().Equal(types.MustParse("15")) {
		t.Errorf("deficit = %s, want 15", p.Deficit())
	}
	fee := p.Fee()
	if fee == nil {
		t.Fatal("no fee attached")
	}
	if !fee.Amount().Equal(types.MustParse("12")) {
		t.Errorf("fee = %s, want 12 (15/25 of 20)", fee.Amount())
	}
	if want := "10.00 / 25.00 (15.00 short)"; fee.Explanation() != want {
		t.Errorf("explanation = %q, want %q", fee.Explanation(), want)
	}
	if !l.TotalAmount().Equal(types.MustParse("112")) {
		t.Errorf("TotalAmount() = %s, want 112", l.TotalAmount())
	}
}

func TestBatchedCatchUp(t *testing.T) {
	l := flatLoan(t, "100", 4)
	backdate(l, 2)

	if got := l.RequiredPayments(); got != 2 {
		t.Fatalf("RequiredPayments() = %d, want 2", got)
	}
	p := l.MakePayment(types.MustParse("1000"))
	if p == nil {
		t.Fatal("MakePayment() = nil")
	}
	if !p.Amount().Equal(types.MustParse("50")) {
		t.Errorf("amount = %s, want 50 (two installments of 25)", p.Amount())
	}
	if got := l.CurrentPeriod(); got != 2 {
		t.Errorf("CurrentPeriod() = %d, want 2", got)
	}
}

func TestMakePaymentNoOps(t *testing.T) {
	l := flatLoan(t, "100", 4)

	if p := l.MakePayment(types.MustParse("1000")); p != nil {
		t.Errorf("on-schedule MakePayment() = %+v, want nil", p)
	}

	backdate(l, 1)
	if p := l.MakePayment(types.MustParse("-1")); p != nil {
		t.Errorf("negative funds MakePayment() = %+v, want nil", p)
	}

	// Zero funds is a valid collection: it records a full deficit.
	p := l.MakePayment(types.Zero())
	if p == nil {
		t.Fatal("zero funds MakePayment() = nil")
	}
	if !p.Amount().IsZero() || !p.Deficit().Equal(types.MustParse("25")) {
		t.Errorf("zero funds payment = %s deficit %s, want 0 and 25", p.Amount(), p.Deficit())
	}
}

func TestAllFees(t *testing.T) {
	l := flatLoan(t, "100", 4)
	l.AddFee(NewFee(types.MustParse("3"), "origination", ""))

	backdate(l, 1)
	if p := l.AttemptPayment(types.MustParse("5"), types.MustParse("10")); p == nil || p.Fee() == nil {
		t.Fatal("expected a short payment with a fee")
	}

	if got := len(l.AllFees()); got != 2 {
		t.Errorf("AllFees() count = %d, want 2", got)
	}
	if got := len(l.Fees()); got != 1 {
		t.Errorf("Fees() count = %d, want 1", got)
	}
	want := types.MustParse("3").Add(l.Payments()[0].Fee().Amount())
	if !l.FeeTotal().Equal(want) {
		t.Errorf("FeeTotal() = %s, want %s", l.FeeTotal(), want)
	}
}

func TestLoanJSONRoundTrip(t *testing.T) {
	l := newTestLoan(t, "150", 20)
	backdate(l, 2)
	l.AttemptPayment(types.MustParse("10"), types.MustParse("25"))

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Loan
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ID() != l.ID() {
		t.Errorf("id = %v, want %v", got.ID(), l.ID())
	}
	if got.Lender() != l.Lender() || got.Borrower() != l.Borrower() {
		t.Error("parties did not survive the round trip")
	}
	if !got.LoanAmount().Equal(l.LoanAmount()) {
		t.Errorf("loan amount = %s, want %s", got.LoanAmount(), l.LoanAmount())
	}
	if got.CurrentPeriod() != l.CurrentPeriod() {
		t.Errorf("current period = %d, want %d", got.CurrentPeriod(), l.CurrentPeriod())
	}
	if len(got.Payments()) != 1 || got.Payments()[0].Fee() == nil {
		t.Fatal("payment history did not survive the round trip")
	}
	if !got.RemainingAmount().Equal(l.RemainingAmount()) {
		t.Errorf("remaining = %s, want %s", got.RemainingAmount(), l.RemainingAmount())
	}
}

func TestPeriodUnit(t *testing.T) {
	if _, err := ParsePeriodUnit("day"); err != nil {
		t.Errorf("ParsePeriodUnit(day) error = %v", err)
	}
	if _, err := ParsePeriodUnit("decade"); err == nil {
		t.Error("ParsePeriodUnit(decade) expected error")
	}
	if got := PeriodWeek.Duration(); got != 7*24*time.Hour {
		t.Errorf("week duration = %v", got)
	}
}
