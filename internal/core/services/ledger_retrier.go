package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
)

const retrierQueueSize = 256

// LedgerRetrier re-appends entry groups whose initial write failed after
// the balance mutations committed. It runs as a single in-process worker;
// groups it cannot land within the backoff budget are logged for operator
// replay and dropped.
type LedgerRetrier struct {
	ledgerRepo      portsrepo.LedgerRepositoryFacade
	logger          *slog.Logger
	initialInterval time.Duration
	maxElapsed      time.Duration

	queue chan []domain.LedgerEntry
	wg    sync.WaitGroup
	once  sync.Once
}

// NewLedgerRetrier creates a retrier. initialInterval tunes the first
// backoff delay so tests do not have to wait on wall-clock defaults.
func NewLedgerRetrier(ledgerRepo portsrepo.LedgerRepositoryFacade, logger *slog.Logger, initialInterval, maxElapsed time.Duration) *LedgerRetrier {
	if initialInterval <= 0 {
		initialInterval = 500 * time.Millisecond
	}
	if maxElapsed <= 0 {
		maxElapsed = 5 * time.Minute
	}
	return &LedgerRetrier{
		ledgerRepo:      ledgerRepo,
		logger:          logger,
		initialInterval: initialInterval,
		maxElapsed:      maxElapsed,
		queue:           make(chan []domain.LedgerEntry, retrierQueueSize),
	}
}

var _ LedgerScheduler = (*LedgerRetrier)(nil)

// Start launches the worker goroutine.
func (r *LedgerRetrier) Start() {
	r.wg.Add(1)
	go r.run()
}

// Schedule queues an entry group for background append. A full queue drops
// the group with an error log rather than blocking the request path.
func (r *LedgerRetrier) Schedule(entries []domain.LedgerEntry) {
	if len(entries) == 0 {
		return
	}
	select {
	case r.queue <- entries:
	default:
		r.logger.Error("Ledger retry queue full, group requires operator replay",
			slog.String("transaction_id", entries[0].TransactionID),
			slog.Int("entry_count", len(entries)))
	}
}

// Stop closes the queue and waits for the worker to drain it.
func (r *LedgerRetrier) Stop() {
	r.once.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *LedgerRetrier) run() {
	defer r.wg.Done()
	for entries := range r.queue {
		r.appendWithBackoff(entries)
	}
}

func (r *LedgerRetrier) appendWithBackoff(entries []domain.LedgerEntry) {
	logger := r.logger.With(
		slog.String("transaction_id", entries[0].TransactionID),
		slog.String("idempotency_key", entries[0].IdempotencyKey))

	attempt := func() error {
		err := r.ledgerRepo.AppendEntries(context.Background(), entries)
		if errors.Is(err, apperrors.ErrDuplicateIdempotencyKey) {
			// Another writer already landed this group.
			return nil
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxElapsedTime = r.maxElapsed
	if err := backoff.Retry(attempt, b); err != nil {
		logger.Error("Ledger group could not be appended, requires operator replay",
			slog.Int("entry_count", len(entries)),
			slog.String("error", err.Error()))
		return
	}
	logger.Info("Lagged ledger group appended")
}
