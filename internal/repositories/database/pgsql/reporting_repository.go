package pgsql

import (
	"context"
	"fmt"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

// NewPgxReportingRepository creates a repository for read-side aggregates.
func NewPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingReader {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingReader = (*PgxReportingRepository)(nil)

// BalanceSummaryByOwner sums committed balances of the owner's active
// accounts per currency. Inactive accounts are excluded from totals but
// stay queryable individually.
func (r *PgxReportingRepository) BalanceSummaryByOwner(ctx context.Context, ownerID string) ([]domain.CurrencyTotal, error) {
	query := `
		SELECT currency_code, SUM(balance) AS total_balance, COUNT(*) AS account_count
		FROM accounts
		WHERE owner_id = $1 AND is_active = TRUE
		GROUP BY currency_code
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance summary for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	totals := []domain.CurrencyTotal{}
	for rows.Next() {
		var t domain.CurrencyTotal
		if err := rows.Scan(&t.CurrencyCode, &t.TotalBalance, &t.AccountCount); err != nil {
			return nil, fmt.Errorf("failed to scan balance summary row for owner %s: %w", ownerID, err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance summary rows for owner %s: %w", ownerID, err)
	}

	return totals, nil
}
