// Package audithook bridges Loansign lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnOfferCreated     = (*Extension)(nil)
	_ plugin.OnOfferAccepted    = (*Extension)(nil)
	_ plugin.OnOfferDeclined    = (*Extension)(nil)
	_ plugin.OnLoanCreated      = (*Extension)(nil)
	_ plugin.OnPaymentCollected = (*Extension)(nil)
	_ plugin.OnLateFeeAssessed  = (*Extension)(nil)
	_ plugin.OnLoanPaidOff      = (*Extension)(nil)
	_ plugin.OnSweepCompleted   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly. Callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Loansign lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Offer lifecycle hooks
// ──────────────────────────────────────────────────

// OnOfferCreated implements plugin.OnOfferCreated.
func (e *Extension) OnOfferCreated(ctx context.Context, o *loan.Offer) error {
	l := o.Loan()
	return e.record(ctx, ActionOfferCreated, SeverityInfo, OutcomeSuccess,
		ResourceOffer, o.ID().String(), CategoryLending, nil,
		"lender", l.Lender().String(),
		"borrower", l.Borrower().String(),
		"principal", l.Principal().String(),
		"expiry", o.Expiry(),
	)
}

// OnOfferAccepted implements plugin.OnOfferAccepted.
func (e *Extension) OnOfferAccepted(ctx context.Context, o *loan.Offer) error {
	return e.record(ctx, ActionOfferAccepted, SeverityInfo, OutcomeSuccess,
		ResourceOffer, o.ID().String(), CategoryLending, nil,
		"borrower", o.Loan().Borrower().String(),
	)
}

// OnOfferDeclined implements plugin.OnOfferDeclined.
func (e *Extension) OnOfferDeclined(ctx context.Context, o *loan.Offer) error {
	return e.record(ctx, ActionOfferDeclined, SeverityInfo, OutcomeSuccess,
		ResourceOffer, o.ID().String(), CategoryLending, nil,
		"borrower", o.Loan().Borrower().String(),
	)
}

// ──────────────────────────────────────────────────
// Loan lifecycle hooks
// ──────────────────────────────────────────────────

// OnLoanCreated implements plugin.OnLoanCreated.
func (e *Extension) OnLoanCreated(ctx context.Context, l *loan.Loan) error {
	return e.record(ctx, ActionLoanCreated, SeverityInfo, OutcomeSuccess,
		ResourceLoan, l.ID().String(), CategoryLending, nil,
		"lender", l.Lender().String(),
		"borrower", l.Borrower().String(),
		"principal", l.Principal().String(),
		"loan_amount", l.LoanAmount().String(),
		"periods", l.TotalPeriods(),
		"unit", string(l.PeriodUnit()),
	)
}

// OnLoanPaidOff implements plugin.OnLoanPaidOff.
func (e *Extension) OnLoanPaidOff(ctx context.Context, l *loan.Loan) error {
	return e.record(ctx, ActionLoanPaidOff, SeverityInfo, OutcomeSuccess,
		ResourceLoan, l.ID().String(), CategoryLending, nil,
		"payment_total", l.PaymentTotal().String(),
		"fee_total", l.FeeTotal().String(),
	)
}

// ──────────────────────────────────────────────────
// Collection hooks
// ──────────────────────────────────────────────────

// OnPaymentCollected implements plugin.OnPaymentCollected.
func (e *Extension) OnPaymentCollected(ctx context.Context, l *loan.Loan, p *loan.Payment) error {
	outcome := OutcomeSuccess
	if p.Deficit().IsPositive() {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionPaymentCollected, SeverityInfo, outcome,
		ResourcePayment, p.ID().String(), CategoryCollection, nil,
		"loan_id", l.ID().String(),
		"amount", p.Amount().String(),
		"deficit", p.Deficit().String(),
	)
}

// OnLateFeeAssessed implements plugin.OnLateFeeAssessed.
func (e *Extension) OnLateFeeAssessed(ctx context.Context, l *loan.Loan, f *loan.Fee) error {
	return e.record(ctx, ActionLateFeeAssessed, SeverityWarning, OutcomeSuccess,
		ResourceFee, f.ID().String(), CategoryCollection, nil,
		"loan_id", l.ID().String(),
		"amount", f.Amount().String(),
		"reason", f.Reason(),
		"detail", f.Explanation(),
	)
}

// ──────────────────────────────────────────────────
// Worker hooks
// ──────────────────────────────────────────────────

// OnSweepCompleted implements plugin.OnSweepCompleted.
func (e *Extension) OnSweepCompleted(ctx context.Context, collected int, elapsed time.Duration) error {
	// Quiet sweeps are not audit-worthy.
	if collected == 0 {
		return nil
	}
	return e.record(ctx, ActionSweepCompleted, SeverityInfo, OutcomeSuccess,
		ResourceLedger, "", CategoryOperations, nil,
		"collected", collected,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
