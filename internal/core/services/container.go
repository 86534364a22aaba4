package services

import (
	"log/slog"
	"time"

	"github.com/finhorizon/ledgercore/internal/cache"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
)

// Container holds all the initialized services.
type Container struct {
	AccountSvc  portssvc.AccountSvcFacade
	TransferSvc portssvc.TransferSvcFacade
	QuerySvc    portssvc.QuerySvcFacade

	// Retrier is the background worker that lands lagged ledger groups.
	// The caller owns its lifecycle: Start after construction, Stop on
	// shutdown.
	Retrier *LedgerRetrier
}

// ContainerOptions tunes the engine and read side.
type ContainerOptions struct {
	TransferMaxAttempts uint64
	SummaryCacheTTL     time.Duration
	RetrierInterval     time.Duration
	RetrierMaxElapsed   time.Duration
}

// NewContainer creates and wires the services.
func NewContainer(repos portsrepo.RepositoryProvider, c cache.Cache, logger *slog.Logger, opts ContainerOptions) *Container {
	retrier := NewLedgerRetrier(repos.LedgerRepo, logger, opts.RetrierInterval, opts.RetrierMaxElapsed)
	transferSvc := NewTransferService(repos.AccountRepo, repos.LedgerRepo, retrier, opts.TransferMaxAttempts)
	return &Container{
		AccountSvc:  NewAccountService(repos.AccountRepo, transferSvc),
		TransferSvc: transferSvc,
		QuerySvc:    NewQueryService(repos.AccountRepo, repos.LedgerRepo, repos.ReportingRepo, c, opts.SummaryCacheTTL),
		Retrier:     retrier,
	}
}
