package loansign

import "github.com/xraph/loansign/id"

// ID is the primary identifier type for all engine entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// LoanID identifies a loan.
type LoanID = id.LoanID

// OfferID identifies a pending offer.
type OfferID = id.OfferID
