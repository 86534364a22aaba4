package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	"github.com/finhorizon/ledgercore/internal/models"
	"github.com/finhorizon/ledgercore/internal/utils/mapping"
	"github.com/finhorizon/ledgercore/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, transaction_id, account_id, direction, amount, currency_code, description, counterparty, running_balance, idempotency_key, created_at, created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// NewPgxLedgerRepository creates a new repository for the append-only ledger.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// AppendEntries commits an entry group within one database transaction:
// either every entry lands or none do. A unique index over
// (account_id, idempotency_key) rejects replayed groups.
func (r *PgxLedgerRepository) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: entry group must not be empty", apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, e := range entries {
		m := mapping.ToModelLedgerEntry(e)
		batch.Queue(query,
			m.EntryID,
			m.TransactionID,
			m.AccountID,
			m.Direction,
			m.Amount,
			m.CurrencyCode,
			m.Description,
			m.Counterparty,
			m.RunningBalance,
			m.IdempotencyKey,
			m.CreatedAt,
			m.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicateIdempotencyKey, entries[0].TransactionID)
		}
		return fmt.Errorf("failed to append entry group for transaction %s: %w", entries[0].TransactionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry group for transaction %s: %w", entries[0].TransactionID, err)
	}
	return nil
}

// FindEntriesByIdempotencyKey returns the committed group for a key, oldest
// leg first. An empty slice means the key was never committed.
func (r *PgxLedgerRepository) FindEntriesByIdempotencyKey(ctx context.Context, idempotencyKey string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE idempotency_key = $1
		ORDER BY created_at, entry_id;
	`
	return r.queryEntries(ctx, query, idempotencyKey)
}

// FindEntriesByTransactionID returns all legs of one logical transaction.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY created_at, entry_id;
	`
	return r.queryEntries(ctx, query, transactionID)
}

// ListEntries returns one reverse-chronological page of an account's
// entries. The keyset token makes re-querying with the same filter
// deterministic regardless of concurrent appends.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, accountID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + entryColumns + ` FROM ledger_entries WHERE account_id = $1`)
	args := []any{accountID}

	if filter.From != nil {
		args = append(args, *filter.From)
		sb.WriteString(` AND created_at >= $` + strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		sb.WriteString(` AND created_at <= $` + strconv.Itoa(len(args)))
	}
	if filter.Direction != nil {
		args = append(args, string(*filter.Direction))
		sb.WriteString(` AND direction = $` + strconv.Itoa(len(args)))
	}
	if filter.TextSearch != "" {
		args = append(args, "%"+filter.TextSearch+"%")
		n := strconv.Itoa(len(args))
		sb.WriteString(` AND (description ILIKE $` + n + ` OR counterparty ILIKE $` + n + `)`)
	}
	if nextToken != nil {
		createdAt, entryID, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, createdAt)
		tArg := strconv.Itoa(len(args))
		args = append(args, entryID)
		idArg := strconv.Itoa(len(args))
		sb.WriteString(` AND (created_at, entry_id) < ($` + tArg + `, $` + idArg + `)`)
	}

	args = append(args, limit+1)
	sb.WriteString(` ORDER BY created_at DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`)

	entries, err := r.queryEntries(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, err
	}

	var newToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		token := pagination.EncodeEntryToken(last.CreatedAt, last.EntryID)
		newToken = &token
	}
	return entries, newToken, nil
}

func (r *PgxLedgerRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var m models.LedgerEntry
		var counterparty *string
		if err := rows.Scan(
			&m.EntryID,
			&m.TransactionID,
			&m.AccountID,
			&m.Direction,
			&m.Amount,
			&m.CurrencyCode,
			&m.Description,
			&counterparty,
			&m.RunningBalance,
			&m.IdempotencyKey,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		if counterparty != nil {
			m.Counterparty = *counterparty
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	return mapping.ToDomainLedgerEntrySlice(entries), nil
}
