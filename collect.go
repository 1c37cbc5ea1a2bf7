package loansign

import (
	"context"
	"time"
)

// sweepWorker runs the collection sweep on a fixed interval until the
// engine stops. Sweeps never overlap: the next tick waits for the
// previous sweep to finish.
func (e *Engine) sweepWorker() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.Sweep(context.Background())
		}
	}
}

// saveWorker autosaves the ledger on a fixed interval until the engine
// stops. The final snapshot on shutdown is written by Stop after this
// worker has joined.
func (e *Engine) saveWorker() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			if err := e.saveSnapshot(context.Background()); err != nil {
				e.logger.Error("autosave failed", "error", err)
			}
		}
	}
}

// Sweep walks the ledger once, collecting every due installment it can
// from borrower balances and assessing late fees on shortfalls. Expired
// offers are pruned on the way. Returns how many payments were
// collected.
func (e *Engine) Sweep(ctx context.Context) int {
	start := time.Now()
	collected := 0

	for _, l := range e.book.Due() {
		bal, err := e.funds.Balance(ctx, l.Borrower())
		if err != nil {
			e.logger.Error("failed to read borrower balance",
				"loan_id", l.ID(),
				"borrower", l.Borrower(),
				"error", err,
			)
			continue
		}

		p := l.AttemptPayment(bal, e.maxLateFee)
		if p == nil {
			continue
		}
		collected++
		e.settle(ctx, l, p)
	}

	if pruned := e.book.PruneOffers(start); pruned > 0 {
		e.logger.Debug("pruned expired offers", "count", pruned)
	}

	elapsed := time.Since(start)
	if collected > 0 {
		e.logger.Info("collection sweep finished",
			"collected", collected,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
	e.plugins.EmitSweepCompleted(ctx, collected, elapsed)

	return collected
}

// saveSnapshot persists the entire ledger to the store.
func (e *Engine) saveSnapshot(ctx context.Context) error {
	start := time.Now()
	loans := e.book.All()

	if err := e.store.Save(ctx, loans); err != nil {
		return err
	}

	elapsed := time.Since(start)
	e.logger.Debug("ledger snapshot saved",
		"loans", len(loans),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	e.plugins.EmitSnapshotSaved(ctx, len(loans), elapsed)

	return nil
}
