package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	"github.com/finhorizon/ledgercore/internal/models"
	"github.com/finhorizon/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, owner_id, name, account_type, account_number, currency_code, balance, is_active, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// NewPgxAccountRepository creates a new repository for account data.
func NewPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*models.Account, error) {
	var acc models.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.OwnerID,
		&acc.Name,
		&acc.AccountType,
		&acc.AccountNumber,
		&acc.CurrencyCode,
		&acc.Balance,
		&acc.IsActive,
		&acc.Version,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// SaveAccount persists a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.OwnerID,
		m.Name,
		m.AccountType,
		m.AccountNumber,
		m.CurrencyCode,
		m.Balance,
		m.IsActive,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account number %s already issued", apperrors.ErrValidation, m.AccountNumber)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// FindAccountsByOwner retrieves all accounts belonging to an owner, newest first.
func (r *PgxAccountRepository) FindAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at DESC, account_id;`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for owner %s: %w", ownerID, err)
		}
		accounts = append(accounts, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows for owner %s: %w", ownerID, err)
	}

	return mapping.ToDomainAccountSlice(accounts), nil
}

// DeactivateAccount marks an account as inactive. The row is retained for audit.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, version = version + 1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE;
	`
	ct, err := r.Pool.Exec(ctx, query, accountID, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if ct.RowsAffected() == 0 {
		// Distinguish missing from already inactive.
		var isActive bool
		err := r.Pool.QueryRow(ctx, `SELECT is_active FROM accounts WHERE account_id = $1`, accountID).Scan(&isActive)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to classify deactivation failure for account %s: %w", accountID, err)
		}
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrValidation, accountID)
	}
	return nil
}

// ApplyBalanceDelta is the store's atomic check-and-commit. The conditional
// UPDATE performs the active, version and balance-floor checks in a single
// statement, so no partial state is ever observable; a miss is classified
// after the fact with a plain read.
func (r *PgxAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, expectedVersion int64, actorID string) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, version = version + 1, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1
		  AND version = $5
		  AND is_active = TRUE
		  AND (account_type = 'CREDIT' OR balance + $2 >= 0)
		RETURNING ` + accountColumns + `;
	`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, delta, time.Now().UTC(), actorID, expectedVersion))
	if err == nil {
		acc := mapping.ToDomainAccount(*m)
		return &acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}

	return nil, r.classifyDeltaRejection(ctx, accountID, delta, expectedVersion)
}

// classifyDeltaRejection inspects the committed row to report why the
// conditional update matched nothing.
func (r *PgxAccountRepository) classifyDeltaRejection(ctx context.Context, accountID string, delta decimal.Decimal, expectedVersion int64) error {
	current, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return err
	}

	switch {
	case !current.IsActive:
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, accountID)
	case current.Version != expectedVersion:
		return fmt.Errorf("%w: account %s expected version %d, found %d", apperrors.ErrConflict, accountID, expectedVersion, current.Version)
	case !current.CanApplyDelta(delta):
		return fmt.Errorf("%w: account %s balance %s cannot absorb %s", apperrors.ErrInsufficientFunds, accountID, current.Balance, delta)
	default:
		// The row changed between the update and the classifying read.
		return fmt.Errorf("%w: account %s", apperrors.ErrConflict, accountID)
	}
}
