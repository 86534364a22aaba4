package services

import (
	"context"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/finhorizon/ledgercore/internal/dto"
)

// AccountSvcFacade manages account lifecycle for the calling owner.
type AccountSvcFacade interface {
	// OpenAccount creates a new account for the caller and, when the
	// request carries a positive initial deposit, executes it through the
	// transfer engine so it lands in the ledger. The deposit result is nil
	// when no deposit was requested.
	OpenAccount(ctx context.Context, callerID string, req dto.OpenAccountRequest) (*domain.Account, *domain.TransferResult, error)

	// GetAccountByID returns an account owned by the caller. Accounts
	// owned by others report ErrNotFound.
	GetAccountByID(ctx context.Context, callerID string, accountID string) (*domain.Account, error)

	// ListAccounts returns the caller's accounts, newest first.
	ListAccounts(ctx context.Context, callerID string) ([]domain.Account, error)

	// CloseAccount flips the account inactive. The row is retained for
	// audit and rejects all further mutations.
	CloseAccount(ctx context.Context, callerID string, accountID string) error
}
