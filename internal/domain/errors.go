package domain

import "errors"

// Error taxonomy shared by the pipeline components. Concrete failures wrap
// one of these so callers can classify them with errors.Is.
var (
	ErrClassification = errors.New("classification failed")
	ErrLedgerWrite    = errors.New("ledger write failed")
	ErrLedgerRead     = errors.New("ledger read failed")
	ErrNotification   = errors.New("notification failed")
	ErrPrecondition   = errors.New("precondition failed")
)
