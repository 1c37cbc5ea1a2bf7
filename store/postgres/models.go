package postgres

import (
	"encoding/json"
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

	ID            string          `grove:"id,pk"`
	LenderID      string          `grove:"lender_id"`
	BorrowerID    string          `grove:"borrower_id"`
	Principal     string          `grove:"principal"`
	LoanAmount    string          `grove:"loan_amount"`
	Initiation    time.Time       `grove:"initiation"`
	CurrentPeriod int             `grove:"current_period"`
	TotalPeriods  int             `grove:"total_periods"`
	PeriodUnit    string          `grove:"period_unit"`
	Payments      json.RawMessage `grove:"payments,type:jsonb"`
	Fees          json.RawMessage `grove:"fees,type:jsonb"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toLoanModel(l *loan.Loan) (*loanModel, error) {
	payments, err := json.Marshal(l.Payments())
	if err != nil {
		return nil, fmt.Errorf("encode payments: %w", err)
	}
	fees, err := json.Marshal(l.Fees())
	if err != nil {
		return nil, fmt.Errorf("encode fees: %w", err)
	}
	t := time.Now().UTC()
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
		Payments:      payments,
		Fees:          fees,
		CreatedAt:     l.Initiation(),
		UpdatedAt:     t,
	}, nil
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

	var payments []*loan.Payment
	if len(m.Payments) > 0 {
		if err := json.Unmarshal(m.Payments, &payments); err != nil {
			return nil, fmt.Errorf("decode payments: %w", err)
		}
	}
	var fees []*loan.Fee
	if len(m.Fees) > 0 && string(m.Fees) != "null" {
		if err := json.Unmarshal(m.Fees, &fees); err != nil {
			return nil, fmt.Errorf("decode fees: %w", err)
		}
	}

	return loan.Restore(
		loanID, lender, borrower,
		principal, loanAmount,
		m.Initiation,
		m.CurrentPeriod, m.TotalPeriods, unit,
		payments, fees,
	), nil
}
