package pgsql

import (
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx-backed repositories.
func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		AccountRepo:   NewPgxAccountRepository(dbPool),
		LedgerRepo:    NewPgxLedgerRepository(dbPool),
		ReportingRepo: NewPgxReportingRepository(dbPool),
	}
}
