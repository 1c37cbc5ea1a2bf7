package loansign

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xraph/loansign/id"
	"github.com/xraph/loansign/ledger"
	"github.com/xraph/loansign/loan"
	"github.com/xraph/loansign/plugin"
	"github.com/xraph/loansign/store"
	"github.com/xraph/loansign/types"
)

// Engine is the main loan engine. It keeps the full ledger in memory,
// collects due installments in the background, and periodically
// persists snapshots to its store.
type Engine struct {
	store   store.Store
	funds   FundsSource
	book    *ledger.Registry
	plugins *plugin.Registry
	logger  *slog.Logger

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool

	// Configuration
	sweepInterval time.Duration
	saveInterval  time.Duration
	offerTTL      time.Duration
	maxLateFee    types.Money
}

// New creates a new Engine instance.
func New(s store.Store, funds FundsSource, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		funds:         funds,
		book:          ledger.NewRegistry(),
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		stopChan:      make(chan struct{}),
		sweepInterval: time.Minute,
		saveInterval:  5 * time.Minute,
		offerTTL:      loan.DefaultOfferTTL,
		maxLateFee:    types.NewFromInt(25),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithSweepInterval sets how often the collection sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.sweepInterval = d
	}
}

// WithSaveInterval sets how often the ledger is autosaved.
func WithSaveInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.saveInterval = d
	}
}

// WithOfferTTL sets how long loan offers stay acceptable.
func WithOfferTTL(d time.Duration) Option {
	return func(e *Engine) {
		e.offerTTL = d
	}
}

// WithMaxLateFee sets the ceiling for fees assessed on short
// collections.
func WithMaxLateFee(m types.Money) Option {
	return func(e *Engine) {
		e.maxLateFee = m
	}
}

// Start migrates the store, loads the ledger, and begins background
// collection and autosave workers.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}
	if e.funds == nil {
		return ErrNoFundsSource
	}

	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("loansign: migrate store: %w", err)
	}

	loans, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loansign: load ledger: %w", err)
	}
	e.book.SetLoans(loans)

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	e.wg.Add(2)
	go e.sweepWorker()
	go e.saveWorker()

	e.started = true
	e.logger.Info("loan engine started",
		"loans", e.book.Len(),
		"sweep_interval", e.sweepInterval,
		"save_interval", e.saveInterval,
	)

	return nil
}

// Stop shuts down the engine: workers are stopped and joined, then a
// final snapshot is written before the store closes.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return ErrNotStarted
	}
	e.started = false

	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	if err := e.saveSnapshot(ctx); err != nil {
		e.logger.Error("final snapshot failed", "error", err)
	}

	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Offers
// ──────────────────────────────────────────────────

// OfferLoan extends a loan offer from lender to borrower. The offer
// replaces any earlier pending offer for the same borrower and lapses
// after the configured TTL. No funds move until the offer is accepted.
func (e *Engine) OfferLoan(ctx context.Context, lender, borrower uuid.UUID, principal types.Money, rate decimal.Decimal, periods int, unit loan.PeriodUnit) (*loan.Offer, error) {
	l, err := loan.New(lender, borrower, principal, rate, periods, unit)
	if err != nil {
		return nil, err
	}

	bal, err := e.funds.Balance(ctx, lender)
	if err != nil {
		return nil, fmt.Errorf("loansign: check lender balance: %w", err)
	}
	if bal.LessThan(principal) {
		return nil, fmt.Errorf("%w: lender has %s, needs %s", ErrInsufficientFunds, bal, principal)
	}

	offer := loan.NewOffer(l, e.offerTTL)
	e.book.PutOffer(offer)

	e.logger.Info("loan offered",
		"offer_id", offer.ID(),
		"lender", lender,
		"borrower", borrower,
		"principal", principal,
		"periods", periods,
	)
	e.plugins.EmitOfferCreated(ctx, offer)
	return offer, nil
}

// Offer returns the borrower's pending offer. Lapsed offers report
// ErrOfferNotFound.
func (e *Engine) Offer(borrower uuid.UUID) (*loan.Offer, error) {
	o, ok := e.book.Offer(borrower)
	if !ok {
		return nil, ErrOfferNotFound
	}
	return o, nil
}

// AcceptOffer activates the borrower's pending offer: the principal
// moves from lender to borrower and the loan joins the ledger. The loan
// term starts counting from the original offer, so acceptance delay
// eats into the first period.
func (e *Engine) AcceptOffer(ctx context.Context, borrower uuid.UUID) (*loan.Loan, error) {
	offer, ok := e.book.TakeOffer(borrower)
	if !ok {
		return nil, ErrOfferNotFound
	}
	l := offer.Loan()

	if err := e.funds.Withdraw(ctx, l.Lender(), l.Principal()); err != nil {
		// Leave the offer pending so the lender can fund it and retry.
		e.book.PutOffer(offer)
		return nil, fmt.Errorf("loansign: withdraw principal from lender: %w", err)
	}
	if err := e.funds.Deposit(ctx, borrower, l.Principal()); err != nil {
		if refundErr := e.funds.Deposit(ctx, l.Lender(), l.Principal()); refundErr != nil {
			e.logger.Error("failed to refund lender after deposit failure",
				"lender", l.Lender(),
				"amount", l.Principal(),
				"error", refundErr,
			)
		}
		e.book.PutOffer(offer)
		return nil, fmt.Errorf("loansign: deposit principal to borrower: %w", err)
	}

	e.book.Add(l)

	e.logger.Info("loan accepted",
		"loan_id", l.ID(),
		"lender", l.Lender(),
		"borrower", borrower,
		"principal", l.Principal(),
		"total", l.LoanAmount(),
	)
	e.plugins.EmitOfferAccepted(ctx, offer)
	e.plugins.EmitLoanCreated(ctx, l)
	return l, nil
}

// DeclineOffer discards the borrower's pending offer.
func (e *Engine) DeclineOffer(ctx context.Context, borrower uuid.UUID) error {
	offer, ok := e.book.TakeOffer(borrower)
	if !ok {
		return ErrOfferNotFound
	}
	e.logger.Info("loan offer declined", "offer_id", offer.ID(), "borrower", borrower)
	e.plugins.EmitOfferDeclined(ctx, offer)
	return nil
}

// ──────────────────────────────────────────────────
// Payments
// ──────────────────────────────────────────────────

// MakePayment collects a voluntary payment of up to maxAmount against
// the loan's due installments. Manual payments never attract late fees.
// Returns nil when nothing is currently due.
func (e *Engine) MakePayment(ctx context.Context, loanID id.LoanID, maxAmount types.Money) (*loan.Payment, error) {
	l, ok := e.book.Get(loanID)
	if !ok {
		return nil, ErrLoanNotFound
	}

	bal, err := e.funds.Balance(ctx, l.Borrower())
	if err != nil {
		return nil, fmt.Errorf("loansign: check borrower balance: %w", err)
	}
	available := maxAmount.Min(bal)

	p := l.MakePayment(available)
	if p == nil {
		return nil, nil
	}

	e.settle(ctx, l, p)
	return p, nil
}

// settle moves a recorded payment's funds from borrower to lender and
// emits the collection events. The payment is already on the loan's
// books; transfer failures are logged, not rolled back.
func (e *Engine) settle(ctx context.Context, l *loan.Loan, p *loan.Payment) {
	if p.Amount().IsPositive() {
		if err := e.funds.Withdraw(ctx, l.Borrower(), p.Amount()); err != nil {
			e.logger.Error("failed to withdraw payment",
				"loan_id", l.ID(),
				"borrower", l.Borrower(),
				"amount", p.Amount(),
				"error", err,
			)
		} else if err := e.funds.Deposit(ctx, l.Lender(), p.Amount()); err != nil {
			e.logger.Error("failed to deposit payment",
				"loan_id", l.ID(),
				"lender", l.Lender(),
				"amount", p.Amount(),
				"error", err,
			)
		}
	}

	e.logger.Debug("payment collected",
		"loan_id", l.ID(),
		"amount", p.Amount(),
		"deficit", p.Deficit(),
	)

	e.plugins.EmitPaymentCollected(ctx, l, p)
	if fee := p.Fee(); fee != nil {
		e.logger.Info("late fee assessed",
			"loan_id", l.ID(),
			"fee", fee.Amount(),
			"detail", fee.Explanation(),
		)
		e.plugins.EmitLateFeeAssessed(ctx, l, fee)
	}
	if l.PaidOff() {
		e.logger.Info("loan paid off", "loan_id", l.ID(), "total", l.PaymentTotal())
		e.plugins.EmitLoanPaidOff(ctx, l)
	}
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Loan returns the loan with the given id.
func (e *Engine) Loan(loanID id.LoanID) (*loan.Loan, error) {
	l, ok := e.book.Get(loanID)
	if !ok {
		return nil, ErrLoanNotFound
	}
	return l, nil
}

// Loans returns every loan on the ledger.
func (e *Engine) Loans() []*loan.Loan {
	return e.book.All()
}

// LoansByLender returns loans extended by the given party.
func (e *Engine) LoansByLender(lender uuid.UUID) []*loan.Loan {
	return e.book.ByLender(lender)
}

// LoansByBorrower returns loans owed by the given party.
func (e *Engine) LoansByBorrower(borrower uuid.UUID) []*loan.Loan {
	return e.book.ByBorrower(borrower)
}

// DueLoans returns the loans with at least one installment owing.
func (e *Engine) DueLoans() []*loan.Loan {
	return e.book.Due()
}

// OverdueLoans returns unsettled loans past their due date.
func (e *Engine) OverdueLoans() []*loan.Loan {
	return e.book.Overdue(time.Now())
}

// Registry exposes the in-memory ledger for read-heavy callers.
func (e *Engine) Registry() *ledger.Registry {
	return e.book
}

// Ping reports whether the backing store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}
