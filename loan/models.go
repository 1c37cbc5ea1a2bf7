package loan

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/loansign/id"
	"github.com/xraph/loansign/types"
)

// PeriodUnit is the calendar granularity of one billing period.
type PeriodUnit string

const (
	PeriodHour PeriodUnit = "hour"
	PeriodDay  PeriodUnit = "day"
	PeriodWeek PeriodUnit = "week"
)

// Duration returns the wall-clock length of one period.
func (u PeriodUnit) Duration() time.Duration {
	switch u {
	case PeriodHour:
		return time.Hour
	case PeriodDay:
		return 24 * time.Hour
	case PeriodWeek:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Valid reports whether the unit is a known granularity.
func (u PeriodUnit) Valid() bool {
	switch u {
	case PeriodHour, PeriodDay, PeriodWeek:
		return true
	default:
		return false
	}
}

// ParsePeriodUnit parses a period unit string ("day").
func ParsePeriodUnit(s string) (PeriodUnit, error) {
	u := PeriodUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("loan: unknown period unit %q", s)
	}
	return u, nil
}

// ReasonInsufficientPayment is the fee reason code attached when a
// collection attempt falls short of the required installment.
const ReasonInsufficientPayment = "insufficient_payment"

// Fee is a dated, reasoned monetary adjustment attached to a loan or to a
// payment. Immutable once created.
type Fee struct {
	id          id.FeeID
	date        time.Time
	amount      types.Money
	reason      string
	explanation string
}

// NewFee creates a fee dated now.
func NewFee(amount types.Money, reason, explanation string) *Fee {
	return &Fee{
		id:          id.NewFeeID(),
		date:        time.Now().UTC(),
		amount:      amount,
		reason:      reason,
		explanation: explanation,
	}
}

// RestoreFee rebuilds a fee from persisted state.
func RestoreFee(feeID id.FeeID, date time.Time, amount types.Money, reason, explanation string) *Fee {
	return &Fee{
		id:          feeID,
		date:        date,
		amount:      amount,
		reason:      reason,
		explanation: explanation,
	}
}

// ID returns the fee identifier.
func (f *Fee) ID() id.FeeID { return f.id }

// Date returns when the fee was assessed.
func (f *Fee) Date() time.Time { return f.date }

// Amount returns the fee amount.
func (f *Fee) Amount() types.Money { return f.amount }

// Reason returns the short machine-readable reason code, if any.
func (f *Fee) Reason() string { return f.reason }

// Explanation returns the human-readable audit text, if any.
func (f *Fee) Explanation() string { return f.explanation }

type feeJSON struct {
	ID          id.FeeID    `json:"id"`
	Date        time.Time   `json:"date"`
	Amount      types.Money `json:"amount"`
	Reason      string      `json:"reason,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f *Fee) MarshalJSON() ([]byte, error) {
	return json.Marshal(feeJSON{
		ID:          f.id,
		Date:        f.date,
		Amount:      f.amount,
		Reason:      f.reason,
		Explanation: f.explanation,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fee) UnmarshalJSON(data []byte) error {
	var raw feeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.id = raw.ID
	f.date = raw.Date
	f.amount = raw.Amount
	f.reason = raw.Reason
	f.explanation = raw.Explanation
	return nil
}

// Payment is a dated record of an amount actually collected against an
// installment, together with any shortfall. Immutable except for the
// one-time attachment of a late fee by the collection path.
type Payment struct {
	id      id.PaymentID
	date    time.Time
	amount  types.Money
	deficit types.Money
	fee     *Fee
}

func newPayment(amount, deficit types.Money) *Payment {
	return &Payment{
		id:      id.NewPaymentID(),
		date:    time.Now().UTC(),
		amount:  amount,
		deficit: deficit,
	}
}

// RestorePayment rebuilds a payment from persisted state.
func RestorePayment(paymentID id.PaymentID, date time.Time, amount, deficit types.Money, fee *Fee) *Payment {
	return &Payment{
		id:      paymentID,
		date:    date,
		amount:  amount,
		deficit: deficit,
		fee:     fee,
	}
}

// ID returns the payment identifier.
func (p *Payment) ID() id.PaymentID { return p.id }

// Date returns when the payment was collected.
func (p *Payment) Date() time.Time { return p.date }

// Amount returns the amount actually collected.
func (p *Payment) Amount() types.Money { return p.amount }

// Deficit returns the shortfall from the required installment.
func (p *Payment) Deficit() types.Money { return p.deficit }

// Fee returns the attached late fee, or nil.
func (p *Payment) Fee() *Fee { return p.fee }

// Total recovers the originally required installment amount.
func (p *Payment) Total() types.Money {
	return p.amount.Add(p.deficit)
}

// attachFee records the late fee for this payment. At most one fee may
// ever be attached; later calls are ignored.
func (p *Payment) attachFee(f *Fee) {
	if p.fee == nil {
		p.fee = f
	}
}

type paymentJSON struct {
	ID      id.PaymentID `json:"id"`
	Date    time.Time    `json:"date"`
	Amount  types.Money  `json:"amount"`
	Deficit types.Money  `json:"deficit"`
	Fee     *Fee         `json:"fee,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p *Payment) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentJSON{
		ID:      p.id,
		Date:    p.date,
		Amount:  p.amount,
		Deficit: p.deficit,
		Fee:     p.fee,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payment) UnmarshalJSON(data []byte) error {
	var raw paymentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.id = raw.ID
	p.date = raw.Date
	p.amount = raw.Amount
	p.deficit = raw.Deficit
	p.fee = raw.Fee
	return nil
}
