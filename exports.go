package loansign

import "github.com/xraph/loansign/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Re-export Money constructors
var (
	NewFromString = types.NewFromString
	NewFromFloat  = types.NewFromFloat
	NewFromInt    = types.NewFromInt
	MustParse     = types.MustParse
	Zero          = types.Zero
	Sum           = types.Sum
)
