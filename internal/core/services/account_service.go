package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
	"github.com/finhorizon/ledgercore/internal/dto"
	"github.com/finhorizon/ledgercore/internal/middleware"
	"github.com/finhorizon/ledgercore/internal/utils"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	transferSvc portssvc.TransferSvcFacade
}

// NewAccountService creates a new account lifecycle service. The transfer
// engine executes initial deposits so they land in the ledger like any
// other credit.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, transferSvc portssvc.TransferSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		transferSvc: transferSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// OpenAccount implements portssvc.AccountSvcFacade.
func (s *accountService) OpenAccount(ctx context.Context, callerID string, req dto.OpenAccountRequest) (*domain.Account, *domain.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("caller_id", callerID))

	if req.InitialDeposit.IsNegative() {
		return nil, nil, fmt.Errorf("%w: initial deposit cannot be negative, got %s",
			apperrors.ErrValidation, req.InitialDeposit)
	}
	if !req.AccountType.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	number, err := utils.GenerateAccountNumber(accountNumberPrefix(req.AccountType))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue account number: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		OwnerID:       callerID,
		Name:          req.Name,
		AccountType:   req.AccountType,
		AccountNumber: number,
		CurrencyCode:  strings.ToUpper(req.CurrencyCode),
		Balance:       decimal.Zero,
		IsActive:      true,
		Version:       1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     callerID,
			LastUpdatedAt: now,
			LastUpdatedBy: callerID,
		},
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("failed to save account: %w", err)
	}
	logger.Info("Account opened",
		slog.String("account_id", account.AccountID),
		slog.String("account_type", string(account.AccountType)),
		slog.String("currency_code", account.CurrencyCode))

	if !req.InitialDeposit.IsPositive() {
		return &account, nil, nil
	}

	deposit, err := s.transferSvc.Deposit(ctx, callerID, dto.DepositRequest{
		ToAccountID:    account.AccountID,
		Amount:         req.InitialDeposit,
		Description:    "Initial deposit",
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		// The account exists either way; the caller can retry the deposit.
		return &account, nil, fmt.Errorf("account %s opened but initial deposit failed: %w", account.AccountID, err)
	}
	return deposit.Destination, deposit, nil
}

// GetAccountByID implements portssvc.AccountSvcFacade.
func (s *accountService) GetAccountByID(ctx context.Context, callerID string, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.OwnerID != callerID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return acc, nil
}

// ListAccounts implements portssvc.AccountSvcFacade.
func (s *accountService) ListAccounts(ctx context.Context, callerID string) ([]domain.Account, error) {
	return s.accountRepo.FindAccountsByOwner(ctx, callerID)
}

// CloseAccount implements portssvc.AccountSvcFacade.
func (s *accountService) CloseAccount(ctx context.Context, callerID string, accountID string) error {
	if _, err := s.GetAccountByID(ctx, callerID, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load account for closing: %w", err)
	}
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, callerID, time.Now().UTC()); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Account closed",
		slog.String("caller_id", callerID),
		slog.String("account_id", accountID))
	return nil
}

// accountNumberPrefix derives the display prefix from the account type,
// e.g. SAV for savings.
func accountNumberPrefix(t domain.AccountType) string {
	s := string(t)
	if len(s) < 3 {
		return s
	}
	return s[:3]
}
