package audithook

// Action constants for audit events.
const (
	// Offer actions
	ActionOfferCreated  = "offer.created"
	ActionOfferAccepted = "offer.accepted"
	ActionOfferDeclined = "offer.declined"

	// Loan actions
	ActionLoanCreated = "loan.created"
	ActionLoanPaidOff = "loan.paid_off"

	// Collection actions
	ActionPaymentCollected = "payment.collected"
	ActionLateFeeAssessed  = "fee.assessed"

	// Worker actions
	ActionSweepCompleted = "sweep.completed"
	ActionSnapshotSaved  = "snapshot.saved"
)

// Resource constants for audit events.
const (
	ResourceOffer   = "offer"
	ResourceLoan    = "loan"
	ResourcePayment = "payment"
	ResourceFee     = "fee"
	ResourceLedger  = "ledger"
)

// Category constants for audit events.
const (
	CategoryLending    = "lending"
	CategoryCollection = "collection"
	CategoryOperations = "operations"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
