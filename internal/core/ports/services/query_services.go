package services

import (
	"context"
	"time"

	"github.com/finhorizon/ledgercore/internal/dto"
)

// QuerySvcFacade serves read-only projections for the external UI layer.
// All reads reflect committed state only.
type QuerySvcFacade interface {
	// GetBalanceSummary returns the caller's active balances grouped by
	// currency.
	GetBalanceSummary(ctx context.Context, callerID string) (dto.BalanceSummaryResponse, error)

	// ListAccountEntries returns a filtered, paginated, reverse-
	// chronological ledger view for one of the caller's accounts.
	ListAccountEntries(ctx context.Context, callerID string, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// GetStatement returns the entries of a date range with opening and
	// closing balances.
	GetStatement(ctx context.Context, callerID string, accountID string, from, to time.Time) (*dto.StatementResponse, error)
}
