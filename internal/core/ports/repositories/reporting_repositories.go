package repositories

import (
	"context"

	"github.com/finhorizon/ledgercore/internal/core/domain"
)

// ReportingReader defines read-side aggregate projections.
type ReportingReader interface {
	// BalanceSummaryByOwner returns committed balances of the owner's
	// active accounts grouped by currency. Currencies are never summed
	// together.
	BalanceSummaryByOwner(ctx context.Context, ownerID string) ([]domain.CurrencyTotal, error)
}
