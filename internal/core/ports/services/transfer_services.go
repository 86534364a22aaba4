package services

import (
	"context"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/finhorizon/ledgercore/internal/dto"
)

// TransferSvcFacade is the transfer engine's public surface: the money
// operations the external UI layer calls. Every failure is one of the
// apperrors kinds; ErrConflict is retried internally before surfacing.
type TransferSvcFacade interface {
	// Deposit credits an account owned by the caller.
	Deposit(ctx context.Context, callerID string, req dto.DepositRequest) (*domain.TransferResult, error)

	// Withdraw debits an account owned by the caller, subject to the
	// account type's balance floor.
	Withdraw(ctx context.Context, callerID string, req dto.WithdrawRequest) (*domain.TransferResult, error)

	// Transfer atomically moves money between two same-currency accounts.
	// The caller must own the source account.
	Transfer(ctx context.Context, callerID string, req dto.TransferRequest) (*domain.TransferResult, error)
}
