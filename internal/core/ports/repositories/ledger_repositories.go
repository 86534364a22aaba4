package repositories

import (
	"context"

	"github.com/finhorizon/ledgercore/internal/core/domain"
)

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// FindEntriesByIdempotencyKey returns the committed entry group for a
	// key, or an empty slice when the key has never been committed.
	FindEntriesByIdempotencyKey(ctx context.Context, idempotencyKey string) ([]domain.LedgerEntry, error)

	// FindEntriesByTransactionID returns all legs of one logical transaction.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// ListEntries returns a reverse-chronological page of entries for an
	// account. Re-querying with the same filter and token is deterministic.
	// The returned token is nil when no further page exists.
	ListEntries(ctx context.Context, accountID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// LedgerWriter defines the append operation.
type LedgerWriter interface {
	// AppendEntries commits all entries in one group or none of them.
	// It returns ErrDuplicateIdempotencyKey if any entry's key was already
	// committed for its account.
	AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines ledger read and write interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
