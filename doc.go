// Package loansign provides an embeddable peer-to-peer loan engine for
// game-server economies.
//
// Loansign is designed as a library, not a service. Import it directly
// into your host application and wire it to the economy that actually
// holds player balances. It provides:
//
//   - Pre-compounded loans: the full obligation is fixed up front as
//     principal * (1+rate)^periods, so interest never accrues later
//   - Batched catch-up collection: a borrower who misses periods owes
//     all of them at the next sweep, in one payment
//   - Proportional late fees on short collections
//   - Offer/accept/decline flow with a single pending offer per
//     borrower and automatic expiry
//   - Crash-safe snapshot persistence with flatfile, SQLite,
//     PostgreSQL, and MongoDB backends
//
// # Quick Start
//
// Create an engine with your preferred store and a funds source:
//
//	import (
//	    "github.com/xraph/loansign"
//	    "github.com/xraph/loansign/store/flatfile"
//	)
//
//	st := flatfile.New("data/loans.json")
//	engine := loansign.New(st, economy)
//
//	// Start the engine (loads the ledger, begins background workers)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Offers propose a loan; nothing moves until the borrower accepts:
//
//	offer, err := engine.OfferLoan(ctx, lender, borrower,
//	    loansign.MustParse("1500"), decimal.NewFromFloat(0.05), 20, loan.PeriodDay)
//
//	l, err := engine.AcceptOffer(ctx, borrower)
//
// Collection runs in the background. Every sweep interval the engine
// walks the ledger, takes what each due borrower can afford, and
// attaches a proportional fee when the take falls short. Borrowers can
// also pay down voluntarily, without fee exposure:
//
//	payment, err := engine.MakePayment(ctx, l.ID(), loansign.MustParse("200"))
//
// The engine never holds balances. All transfers go through the
// FundsSource interface, which the host economy implements.
//
// # Persistence
//
// The ledger lives in memory and is persisted as whole snapshots: on a
// timer, and once more during shutdown after the workers have stopped.
// All amounts use exact decimal arithmetic; installment division rounds
// down so collection never over-charges by a fraction.
package loansign
