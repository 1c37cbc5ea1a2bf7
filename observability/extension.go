// Package observability provides a metrics extension for Loansign that
// records lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnOfferCreated     = (*MetricsExtension)(nil)
	_ plugin.OnOfferAccepted    = (*MetricsExtension)(nil)
	_ plugin.OnOfferDeclined    = (*MetricsExtension)(nil)
	_ plugin.OnLoanCreated      = (*MetricsExtension)(nil)
	_ plugin.OnPaymentCollected = (*MetricsExtension)(nil)
	_ plugin.OnLateFeeAssessed  = (*MetricsExtension)(nil)
	_ plugin.OnLoanPaidOff      = (*MetricsExtension)(nil)
	_ plugin.OnSweepCompleted   = (*MetricsExtension)(nil)
	_ plugin.OnSnapshotSaved    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Loansign plugin to automatically track loan metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Offer metrics
	OfferCreated  Counter
	OfferAccepted Counter
	OfferDeclined Counter

	// Loan metrics
	LoanCreated    Counter
	LoanPaidOff    Counter
	LoanPrincipal  Histogram
	LoanTermLength Histogram

	// Collection metrics
	PaymentsCollected Counter
	PaymentAmount     Histogram
	PaymentDeficit    Histogram
	LateFeesAssessed  Counter
	LateFeeAmount     Histogram

	// Worker metrics
	SweepCollections Counter
	SweepLatency     Histogram
	SnapshotSize     Histogram
	SnapshotLatency  Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Offer metrics
		OfferCreated:  factory.Counter("loansign.offer.created"),
		OfferAccepted: factory.Counter("loansign.offer.accepted"),
		OfferDeclined: factory.Counter("loansign.offer.declined"),

		// Loan metrics
		LoanCreated:    factory.Counter("loansign.loan.created"),
		LoanPaidOff:    factory.Counter("loansign.loan.paid_off"),
		LoanPrincipal:  factory.Histogram("loansign.loan.principal"),
		LoanTermLength: factory.Histogram("loansign.loan.term_periods"),

		// Collection metrics
		PaymentsCollected: factory.Counter("loansign.payment.collected"),
		PaymentAmount:     factory.Histogram("loansign.payment.amount"),
		PaymentDeficit:    factory.Histogram("loansign.payment.deficit"),
		LateFeesAssessed:  factory.Counter("loansign.fee.assessed"),
		LateFeeAmount:     factory.Histogram("loansign.fee.amount"),

		// Worker metrics
		SweepCollections: factory.Counter("loansign.sweep.collections"),
		SweepLatency:     factory.Histogram("loansign.sweep.latency_ms"),
		SnapshotSize:     factory.Histogram("loansign.snapshot.loans"),
		SnapshotLatency:  factory.Histogram("loansign.snapshot.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Offer lifecycle hooks
// ──────────────────────────────────────────────────

// OnOfferCreated implements plugin.OnOfferCreated.
func (m *MetricsExtension) OnOfferCreated(_ context.Context, _ *loan.Offer) error {
	m.OfferCreated.Inc()
	return nil
}

// OnOfferAccepted implements plugin.OnOfferAccepted.
func (m *MetricsExtension) OnOfferAccepted(_ context.Context, _ *loan.Offer) error {
	m.OfferAccepted.Inc()
	return nil
}

// OnOfferDeclined implements plugin.OnOfferDeclined.
func (m *MetricsExtension) OnOfferDeclined(_ context.Context, _ *loan.Offer) error {
	m.OfferDeclined.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Loan lifecycle hooks
// ──────────────────────────────────────────────────

// OnLoanCreated implements plugin.OnLoanCreated.
func (m *MetricsExtension) OnLoanCreated(_ context.Context, l *loan.Loan) error {
	m.LoanCreated.Inc()
	principal, _ := l.Principal().Decimal().Float64()
	m.LoanPrincipal.Observe(principal)
	m.LoanTermLength.Observe(float64(l.TotalPeriods()))
	return nil
}

// OnLoanPaidOff implements plugin.OnLoanPaidOff.
func (m *MetricsExtension) OnLoanPaidOff(_ context.Context, _ *loan.Loan) error {
	m.LoanPaidOff.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Collection hooks
// ──────────────────────────────────────────────────

// OnPaymentCollected implements plugin.OnPaymentCollected.
func (m *MetricsExtension) OnPaymentCollected(_ context.Context, _ *loan.Loan, p *loan.Payment) error {
	m.PaymentsCollected.Inc()
	amount, _ := p.Amount().Decimal().Float64()
	m.PaymentAmount.Observe(amount)
	if p.Deficit().IsPositive() {
		deficit, _ := p.Deficit().Decimal().Float64()
		m.PaymentDeficit.Observe(deficit)
	}
	return nil
}

// OnLateFeeAssessed implements plugin.OnLateFeeAssessed.
func (m *MetricsExtension) OnLateFeeAssessed(_ context.Context, _ *loan.Loan, f *loan.Fee) error {
	m.LateFeesAssessed.Inc()
	amount, _ := f.Amount().Decimal().Float64()
	m.LateFeeAmount.Observe(amount)
	return nil
}

// ──────────────────────────────────────────────────
// Worker hooks
// ──────────────────────────────────────────────────

// OnSweepCompleted implements plugin.OnSweepCompleted.
func (m *MetricsExtension) OnSweepCompleted(_ context.Context, collected int, elapsed time.Duration) error {
	m.SweepCollections.Add(float64(collected))
	m.SweepLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// OnSnapshotSaved implements plugin.OnSnapshotSaved.
func (m *MetricsExtension) OnSnapshotSaved(_ context.Context, count int, elapsed time.Duration) error {
	m.SnapshotSize.Observe(float64(count))
	m.SnapshotLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
