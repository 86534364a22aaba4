package domain

// TransferState is the state of a logical transaction inside the transfer
// engine. Committed and Rejected are terminal; PartiallyApplied and
// Compensated only occur when a credit leg fails after a committed debit.
type TransferState string

const (
	StateRequested        TransferState = "REQUESTED"
	StateValidated        TransferState = "VALIDATED"
	StateCommitted        TransferState = "COMMITTED"
	StateRejected         TransferState = "REJECTED"
	StatePartiallyApplied TransferState = "PARTIALLY_APPLIED"
	StateCompensated      TransferState = "COMPENSATED"
)

// TransferResult is the success payload of a deposit, withdrawal or
// transfer. Rejections surface as errors from the apperrors taxonomy
// instead.
type TransferResult struct {
	TransactionID string        `json:"transactionID"`
	State         TransferState `json:"state"`
	Source        *Account      `json:"source,omitempty"`      // nil for deposits
	Destination   *Account      `json:"destination,omitempty"` // nil for withdrawals
	Entries       []LedgerEntry `json:"entries"`

	// Replayed marks a result rebuilt from a previously committed entry
	// group under the same idempotency key; no new state was written.
	Replayed bool `json:"replayed,omitempty"`

	// LedgerLagged marks a committed result whose ledger append is still
	// being retried in the background. Balances are authoritative.
	LedgerLagged bool `json:"ledgerLagged,omitempty"`
}
