package dto

import (
	"time"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListEntriesParams holds parameters for listing an account's ledger entries.
type ListEntriesParams struct {
	From      *time.Time
	To        *time.Time
	Direction *domain.EntryDirection
	Search    string
	Limit     int
	NextToken *string
}

// ListEntriesResponse is one reverse-chronological page of ledger entries.
type ListEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// StatementResponse is a per-account statement over a date range. Opening
// and closing balances are derived from the entries' running balances.
type StatementResponse struct {
	AccountID      string                `json:"accountID"`
	AccountNumber  string                `json:"accountNumber"`
	CurrencyCode   string                `json:"currencyCode"`
	From           time.Time             `json:"from"`
	To             time.Time             `json:"to"`
	OpeningBalance decimal.Decimal       `json:"openingBalance"`
	ClosingBalance decimal.Decimal       `json:"closingBalance"`
	Entries        []LedgerEntryResponse `json:"entries"`
}

// CurrencyTotalResponse mirrors domain.CurrencyTotal.
type CurrencyTotalResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
	AccountCount int             `json:"accountCount"`
}

// BalanceSummaryResponse groups a caller's committed balances by currency.
type BalanceSummaryResponse struct {
	Totals []CurrencyTotalResponse `json:"totals"`
}

// ToBalanceSummaryResponse converts currency totals to the response DTO.
func ToBalanceSummaryResponse(totals []domain.CurrencyTotal) BalanceSummaryResponse {
	out := make([]CurrencyTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = CurrencyTotalResponse{
			CurrencyCode: t.CurrencyCode,
			TotalBalance: t.TotalBalance,
			AccountCount: t.AccountCount,
		}
	}
	return BalanceSummaryResponse{Totals: out}
}
