package dto

import (
	"time"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest credits an account the caller owns.
type DepositRequest struct {
	ToAccountID    string          `json:"toAccountId" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	Description    string          `json:"description" binding:"required"`
	Counterparty   string          `json:"counterparty"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
}

// WithdrawRequest debits an account the caller owns.
type WithdrawRequest struct {
	FromAccountID  string          `json:"fromAccountId" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	Description    string          `json:"description" binding:"required"`
	Counterparty   string          `json:"counterparty"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
}

// TransferRequest moves money between two same-currency accounts. The
// caller must own the source account.
type TransferRequest struct {
	FromAccountID  string          `json:"fromAccountId" binding:"required"`
	ToAccountID    string          `json:"toAccountId" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	Description    string          `json:"description" binding:"required"`
	Counterparty   string          `json:"counterparty"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
}

// LedgerEntryResponse mirrors domain.LedgerEntry for API consumers.
type LedgerEntryResponse struct {
	EntryID        string                `json:"entryID"`
	TransactionID  string                `json:"transactionID"`
	AccountID      string                `json:"accountID"`
	Direction      domain.EntryDirection `json:"direction"`
	Amount         decimal.Decimal       `json:"amount"`
	CurrencyCode   string                `json:"currencyCode"`
	Description    string                `json:"description"`
	Counterparty   string                `json:"counterparty,omitempty"`
	RunningBalance decimal.Decimal       `json:"runningBalance"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// TransferResultResponse is the success payload of the money operations.
type TransferResultResponse struct {
	TransactionID string                `json:"transactionID"`
	State         domain.TransferState  `json:"state"`
	Source        *AccountResponse      `json:"source,omitempty"`
	Destination   *AccountResponse      `json:"destination,omitempty"`
	Entries       []LedgerEntryResponse `json:"entries"`
	Replayed      bool                  `json:"replayed,omitempty"`
	LedgerLagged  bool                  `json:"ledgerLagged,omitempty"`
}

// ToLedgerEntryResponse converts a domain entry to its response DTO.
func ToLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:        e.EntryID,
		TransactionID:  e.TransactionID,
		AccountID:      e.AccountID,
		Direction:      e.Direction,
		Amount:         e.Amount,
		CurrencyCode:   e.CurrencyCode,
		Description:    e.Description,
		Counterparty:   e.Counterparty,
		RunningBalance: e.RunningBalance,
		CreatedAt:      e.CreatedAt,
	}
}

// ToLedgerEntryResponseSlice converts domain entries to response DTOs.
func ToLedgerEntryResponseSlice(es []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(es))
	for i, e := range es {
		out[i] = ToLedgerEntryResponse(e)
	}
	return out
}

// ToTransferResultResponse converts a domain transfer result to its DTO.
func ToTransferResultResponse(r *domain.TransferResult) TransferResultResponse {
	resp := TransferResultResponse{
		TransactionID: r.TransactionID,
		State:         r.State,
		Entries:       ToLedgerEntryResponseSlice(r.Entries),
		Replayed:      r.Replayed,
		LedgerLagged:  r.LedgerLagged,
	}
	if r.Source != nil {
		src := ToAccountResponse(r.Source)
		resp.Source = &src
	}
	if r.Destination != nil {
		dst := ToAccountResponse(r.Destination)
		resp.Destination = &dst
	}
	return resp
}
