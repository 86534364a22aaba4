package repositories

import (
	"context"
	"time"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByOwner retrieves all accounts belonging to an owner,
	// newest first.
	FindAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. Accounts are never
	// deleted; inactive rows are retained for audit.
	DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error
}

// BalanceMutator is the single serialization point for balance changes.
type BalanceMutator interface {
	// ApplyBalanceDelta atomically checks that the account is active, that
	// the committed version matches expectedVersion, and that the new
	// balance respects the account type's floor, then commits the new
	// balance and increments the version. It returns the committed
	// snapshot, or ErrNotFound, ErrAccountInactive, ErrInsufficientFunds
	// or ErrConflict. No partial state is ever observable.
	ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, expectedVersion int64, actorID string) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	BalanceMutator
}
