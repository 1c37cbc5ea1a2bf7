package loansign

import (
	"context"

	"github.com/google/uuid"

	"github.com/xraph/loansign/types"
)

// FundsSource moves money between party accounts. The engine never
// holds balances itself; the host economy does, and the engine drives
// it through this interface.
//
// Withdraw must fail, wrapping ErrInsufficientFunds, when the account
// cannot cover the amount. Implementations must be safe for concurrent
// use.
type FundsSource interface {
	// Balance returns the party's available funds.
	Balance(ctx context.Context, party uuid.UUID) (types.Money, error)

	// Withdraw removes funds from the party's account.
	Withdraw(ctx context.Context, party uuid.UUID, amount types.Money) error

	// Deposit adds funds to the party's account.
	Deposit(ctx context.Context, party uuid.UUID, amount types.Money) error
}
