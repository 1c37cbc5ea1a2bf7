package loansign

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("loansign: not found")
	ErrInvalidInput = errors.New("loansign: invalid input")

	// Loan errors
	ErrLoanNotFound = errors.New("loansign: loan not found")

	// Offer errors
	ErrOfferNotFound = errors.New("loansign: no pending offer")

	// Funds errors
	ErrNoFundsSource     = errors.New("loansign: no funds source configured")
	ErrInsufficientFunds = errors.New("loansign: insufficient funds")

	// Engine errors
	ErrNotStarted     = errors.New("loansign: engine not started")
	ErrAlreadyStarted = errors.New("loansign: engine already started")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("loansign: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrOfferNotFound)
}
