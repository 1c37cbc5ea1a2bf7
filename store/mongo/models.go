package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xraph/grove"

	"github.com/xraph/loansign/id"
	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/types"
)

type loanModel struct {
	grove.BaseModel `grove:"table:loansign_loans"`

	ID            string         `grove:"id,pk"          bson:"_id"`
	LenderID      string         `grove:"lender_id"      bson:"lender_id"`
	BorrowerID    string         `grove:"borrower_id"    bson:"borrower_id"`
	Principal     string         `grove:"principal"      bson:"principal"`
	LoanAmount    string         `grove:"loan_amount"    bson:"loan_amount"`
	Initiation    time.Time      `grove:"initiation"     bson:"initiation"`
	CurrentPeriod int            `grove:"current_period" bson:"current_period"`
	TotalPeriods  int            `grove:"total_periods"  bson:"total_periods"`
	PeriodUnit    string         `grove:"period_unit"    bson:"period_unit"`
	Payments      []paymentModel `grove:"payments"       bson:"payments"`
	Fees          []feeModel     `grove:"fees"           bson:"fees,omitempty"`
	CreatedAt     time.Time      `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time      `grove:"updated_at"     bson:"updated_at"`
}

type paymentModel struct {
	ID      string    `bson:"id"`
	Date    time.Time `bson:"date"`
	Amount  string    `bson:"amount"`
	Deficit string    `bson:"deficit"`
	Fee     *feeModel `bson:"fee,omitempty"`
}

type feeModel struct {
	ID          string    `bson:"id"`
	Date        time.Time `bson:"date"`
	Amount      string    `bson:"amount"`
	Reason      string    `bson:"reason,omitempty"`
	Explanation string    `bson:"explanation,omitempty"`
}

func toFeeModel(f *loan.Fee) *feeModel {
	if f == nil {
		return nil
	}
	return &feeModel{
		ID:          f.ID().String(),
		Date:        f.Date(),
		Amount:      f.Amount().String(),
		Reason:      f.Reason(),
		Explanation: f.Explanation(),
	}
}

func fromFeeModel(m *feeModel) (*loan.Fee, error) {
	if m == nil {
		return nil, nil
	}
	feeID, err := id.ParseFeeID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := types.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse fee amount: %w", err)
	}
	return loan.RestoreFee(feeID, m.Date, amount, m.Reason, m.Explanation), nil
}

func toLoanModel(l *loan.Loan) *loanModel {
	payments := l.Payments()
	paymentModels := make([]paymentModel, len(payments))
	for i, p := range payments {
		paymentModels[i] = paymentModel{
			ID:      p.ID().String(),
			Date:    p.Date(),
			Amount:  p.Amount().String(),
			Deficit: p.Deficit().String(),
			Fee:     toFeeModel(p.Fee()),
		}
	}
	fees := l.Fees()
	feeModels := make([]feeModel, len(fees))
	for i, f := range fees {
		feeModels[i] = *toFeeModel(f)
	}

	return &loanModel{
		ID:            l.ID().String(),
		LenderID:      l.Lender().String(),
		BorrowerID:    l.Borrower().String(),
		Principal:     l.Principal().String(),
		LoanAmount:    l.LoanAmount().String(),
		Initiation:    l.Initiation(),
		CurrentPeriod: l.CurrentPeriod(),
		TotalPeriods:  l.TotalPeriods(),
		PeriodUnit:    string(l.PeriodUnit()),
		Payments:      paymentModels,
		Fees:          feeModels,
		CreatedAt:     l.Initiation(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func fromLoanModel(m *loanModel) (*loan.Loan, error) {
	loanID, err := id.ParseLoanID(m.ID)
	if err != nil {
		return nil, err
	}
	lender, err := uuid.Parse(m.LenderID)
	if err != nil {
		return nil, fmt.Errorf("parse lender id: %w", err)
	}
	borrower, err := uuid.Parse(m.BorrowerID)
	if err != nil {
		return nil, fmt.Errorf("parse borrower id: %w", err)
	}
	principal, err := types.NewFromString(m.Principal)
	if err != nil {
		return nil, fmt.Errorf("parse principal: %w", err)
	}
	loanAmount, err := types.NewFromString(m.LoanAmount)
	if err != nil {
		return nil, fmt.Errorf("parse loan amount: %w", err)
	}
	unit, err := loan.ParsePeriodUnit(m.PeriodUnit)
	if err != nil {
		return nil, err
	}

	payments := make([]*loan.Payment, len(m.Payments))
	for i := range m.Payments {
		pm := &m.Payments[i]
		paymentID, err := id.ParsePaymentID(pm.ID)
		if err != nil {
			return nil, err
		}
		amount, err := types.NewFromString(pm.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse payment amount: %w", err)
		}
		deficit, err := types.NewFromString(pm.Deficit)
		if err != nil {
			return nil, fmt.Errorf("parse payment deficit: %w", err)
		}
		fee, err := fromFeeModel(pm.Fee)
		if err != nil {
			return nil, err
		}
		payments[i] = loan.RestorePayment(paymentID, pm.Date, amount, deficit, fee)
	}

	fees := make([]*loan.Fee, len(m.Fees))
	for i := range m.Fees {
		f, err := fromFeeModel(&m.Fees[i])
		if err != nil {
			return nil, err
		}
		fees[i] = f
	}

	return loan.Restore(
		loanID, lender, borrower,
		principal, loanAmount,
		m.Initiation,
		m.CurrentPeriod, m.TotalPeriods, unit,
		payments, fees,
	), nil
}
