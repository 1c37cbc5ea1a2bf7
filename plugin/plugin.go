// Package plugin provides an extensible plugin system for the loan
// engine. Plugins can hook into offer, collection, and lifecycle events
// to extend functionality.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/loansign/loan"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Offer lifecycle hooks
// ──────────────────────────────────────────────────

// OnOfferCreated is called when a lender extends a new offer.
type OnOfferCreated interface {
	Plugin
	OnOfferCreated(ctx context.Context, offer *loan.Offer) error
}

// OnOfferAccepted is called when a borrower accepts an offer and the
// loan becomes active.
type OnOfferAccepted interface {
	Plugin
	OnOfferAccepted(ctx context.Context, offer *loan.Offer) error
}

// OnOfferDeclined is called when a borrower declines an offer.
type OnOfferDeclined interface {
	Plugin
	OnOfferDeclined(ctx context.Context, offer *loan.Offer) error
}

// ──────────────────────────────────────────────────
// Loan lifecycle hooks
// ──────────────────────────────────────────────────

// OnLoanCreated is called when a loan is registered on the ledger.
type OnLoanCreated interface {
	Plugin
	OnLoanCreated(ctx context.Context, l *loan.Loan) error
}

// OnPaymentCollected is called for every payment recorded against a
// loan, whether collected automatically or made by hand.
type OnPaymentCollected interface {
	Plugin
	OnPaymentCollected(ctx context.Context, l *loan.Loan, p *loan.Payment) error
}

// OnLateFeeAssessed is called when a short collection attaches a late
// fee.
type OnLateFeeAssessed interface {
	Plugin
	OnLateFeeAssessed(ctx context.Context, l *loan.Loan, f *loan.Fee) error
}

// OnLoanPaidOff is called when a payment settles a loan in full.
type OnLoanPaidOff interface {
	Plugin
	OnLoanPaidOff(ctx context.Context, l *loan.Loan) error
}

// ──────────────────────────────────────────────────
// Worker hooks
// ──────────────────────────────────────────────────

// OnSweepCompleted is called after each collection sweep over the
// ledger.
type OnSweepCompleted interface {
	Plugin
	OnSweepCompleted(ctx context.Context, collected int, elapsed time.Duration) error
}

// OnSnapshotSaved is called after the ledger is persisted.
type OnSnapshotSaved interface {
	Plugin
	OnSnapshotSaved(ctx context.Context, count int, elapsed time.Duration) error
}
