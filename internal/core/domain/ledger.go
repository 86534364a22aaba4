package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryDirection indicates whether a ledger entry is a Debit or a Credit
// against its account.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// LedgerEntry is one immutable leg of a logical transaction. A transfer
// produces two entries sharing a TransactionID; deposits and withdrawals
// produce exactly one.
type LedgerEntry struct {
	EntryID        string          `json:"entryID"`       // Primary Key (UUID)
	TransactionID  string          `json:"transactionID"` // Groups the legs of one logical transaction
	AccountID      string          `json:"accountID"`
	Direction      EntryDirection  `json:"direction"`
	Amount         decimal.Decimal `json:"amount"` // Always positive
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description"`
	Counterparty   string          `json:"counterparty,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this leg committed
	IdempotencyKey string          `json:"idempotencyKey"` // Client-supplied, unique per account
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// SignedAmount returns the amount with the direction applied: credits are
// positive, debits negative.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// NetAmount sums the signed amounts of an entry group. A committed
// transfer's group always nets to zero.
func NetAmount(entries []LedgerEntry) decimal.Decimal {
	net := decimal.Zero
	for _, e := range entries {
		net = net.Add(e.SignedAmount())
	}
	return net
}

// EntryFilter narrows a ledger listing. Zero values mean "no constraint".
type EntryFilter struct {
	From       *time.Time
	To         *time.Time
	Direction  *EntryDirection
	TextSearch string // Matches description or counterparty, case-insensitive
}
