package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
	"github.com/finhorizon/ledgercore/internal/dto"
	"github.com/finhorizon/ledgercore/internal/middleware"
)

// DefaultMaxAttempts bounds the internal retry of version conflicts per leg.
const DefaultMaxAttempts = 5

// compensationKeyPrefix namespaces the server-generated keys of reversal
// entry groups. Client-supplied idempotency keys must not use it.
const compensationKeyPrefix = "rev:"

// LedgerScheduler accepts entry groups whose append must be retried after
// the balances already committed.
type LedgerScheduler interface {
	Schedule(entries []domain.LedgerEntry)
}

// transferService is the transaction engine: it turns deposit, withdrawal
// and transfer requests into committed balance mutations plus an immutable
// ledger entry group, compensating the debit leg when a transfer cannot
// complete.
type transferService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	scheduler   LedgerScheduler
	maxAttempts uint64
}

// NewTransferService creates a new transfer engine. maxAttempts of zero
// falls back to DefaultMaxAttempts.
func NewTransferService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, scheduler LedgerScheduler, maxAttempts uint64) portssvc.TransferSvcFacade {
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &transferService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		scheduler:   scheduler,
		maxAttempts: maxAttempts,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// moneyOp is the normalized form of the three operations: a transfer has
// both account IDs, deposit and withdrawal exactly one.
type moneyOp struct {
	fromID         string
	toID           string
	amount         decimal.Decimal
	description    string
	counterparty   string
	idempotencyKey string
}

// Deposit implements portssvc.TransferSvcFacade.
func (s *transferService) Deposit(ctx context.Context, callerID string, req dto.DepositRequest) (*domain.TransferResult, error) {
	return s.execute(ctx, callerID, moneyOp{
		toID:           req.ToAccountID,
		amount:         req.Amount,
		description:    req.Description,
		counterparty:   req.Counterparty,
		idempotencyKey: req.IdempotencyKey,
	})
}

// Withdraw implements portssvc.TransferSvcFacade.
func (s *transferService) Withdraw(ctx context.Context, callerID string, req dto.WithdrawRequest) (*domain.TransferResult, error) {
	return s.execute(ctx, callerID, moneyOp{
		fromID:         req.FromAccountID,
		amount:         req.Amount,
		description:    req.Description,
		counterparty:   req.Counterparty,
		idempotencyKey: req.IdempotencyKey,
	})
}

// Transfer implements portssvc.TransferSvcFacade.
func (s *transferService) Transfer(ctx context.Context, callerID string, req dto.TransferRequest) (*domain.TransferResult, error) {
	return s.execute(ctx, callerID, moneyOp{
		fromID:         req.FromAccountID,
		toID:           req.ToAccountID,
		amount:         req.Amount,
		description:    req.Description,
		counterparty:   req.Counterparty,
		idempotencyKey: req.IdempotencyKey,
	})
}

func (s *transferService) execute(ctx context.Context, callerID string, op moneyOp) (*domain.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("caller_id", callerID),
		slog.String("idempotency_key", op.idempotencyKey),
	)
	logger.Debug("Money operation received", slog.String("state", string(domain.StateRequested)))

	if err := validateOp(op); err != nil {
		return nil, err
	}

	var from, to *domain.Account
	var err error
	if op.fromID != "" {
		// The caller must own the account being debited.
		from, err = s.loadAccount(ctx, callerID, op.fromID, true)
		if err != nil {
			return nil, err
		}
	}
	if op.toID != "" {
		// Deposits require ownership of the destination; a transfer may
		// credit any active account.
		to, err = s.loadAccount(ctx, callerID, op.toID, op.fromID == "")
		if err != nil {
			return nil, err
		}
	}
	if from != nil && to != nil && from.CurrencyCode != to.CurrencyCode {
		return nil, fmt.Errorf("%w: account %s holds %s, account %s holds %s",
			apperrors.ErrCurrencyMismatch, from.AccountID, from.CurrencyCode, to.AccountID, to.CurrencyCode)
	}

	// A committed group under this key means the client is retrying:
	// replay the prior result without touching state.
	if replay, err := s.replayIfCommitted(ctx, op); err != nil || replay != nil {
		if replay != nil {
			logger.Info("Money operation replayed from committed ledger group",
				slog.String("transaction_id", replay.TransactionID))
		}
		return replay, err
	}

	transactionID := uuid.NewString()
	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Debug("Money operation validated", slog.String("state", string(domain.StateValidated)))

	result := &domain.TransferResult{
		TransactionID: transactionID,
		State:         domain.StateCommitted,
	}

	var fromAfter, toAfter *domain.Account
	if from != nil {
		fromAfter, err = s.applyDeltaWithRetry(ctx, from.AccountID, op.amount.Neg(), callerID)
		if err != nil {
			logger.Info("Money operation rejected with no committed state",
				slog.String("state", string(domain.StateRejected)),
				slog.String("error", err.Error()))
			return nil, err
		}
		result.Source = fromAfter
	}

	// Once the debit leg commits the operation is no longer cancellable:
	// the remaining legs run to completion or compensation even if the
	// caller's request context is gone.
	dctx := ctx
	if from != nil {
		dctx = context.WithoutCancel(ctx)
	}

	if to != nil {
		toAfter, err = s.applyDeltaWithRetry(dctx, to.AccountID, op.amount, callerID)
		if err != nil {
			if from == nil {
				// One-leg deposit: nothing was written.
				logger.Info("Money operation rejected with no committed state",
					slog.String("state", string(domain.StateRejected)),
					slog.String("error", err.Error()))
				return nil, err
			}
			return nil, s.compensateDebit(dctx, logger, callerID, transactionID, from, fromAfter, op, err)
		}
		result.Destination = toAfter
	}

	now := time.Now().UTC()
	if from != nil {
		result.Entries = append(result.Entries, domain.LedgerEntry{
			EntryID:        uuid.NewString(),
			TransactionID:  transactionID,
			AccountID:      from.AccountID,
			Direction:      domain.Debit,
			Amount:         op.amount,
			CurrencyCode:   from.CurrencyCode,
			Description:    op.description,
			Counterparty:   op.counterparty,
			RunningBalance: fromAfter.Balance,
			IdempotencyKey: op.idempotencyKey,
			CreatedAt:      now,
			CreatedBy:      callerID,
		})
	}
	if to != nil {
		result.Entries = append(result.Entries, domain.LedgerEntry{
			EntryID:        uuid.NewString(),
			TransactionID:  transactionID,
			AccountID:      to.AccountID,
			Direction:      domain.Credit,
			Amount:         op.amount,
			CurrencyCode:   to.CurrencyCode,
			Description:    op.description,
			Counterparty:   op.counterparty,
			RunningBalance: toAfter.Balance,
			IdempotencyKey: op.idempotencyKey,
			CreatedAt:      now,
			CreatedBy:      callerID,
		})
	}

	if err := s.appendOrSchedule(dctx, logger, callerID, op, result); err != nil {
		return nil, err
	}

	logger.Info("Money operation committed",
		slog.String("state", string(domain.StateCommitted)),
		slog.String("amount", op.amount.String()),
		slog.Bool("replayed", result.Replayed),
		slog.Bool("ledger_lagged", result.LedgerLagged))
	return result, nil
}

func validateOp(op moneyOp) error {
	if !op.amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, op.amount)
	}
	if op.idempotencyKey == "" {
		return fmt.Errorf("%w: idempotency key is required", apperrors.ErrValidation)
	}
	if op.description == "" {
		return fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if strings.HasPrefix(op.idempotencyKey, compensationKeyPrefix) {
		return fmt.Errorf("%w: idempotency key prefix %q is reserved", apperrors.ErrValidation, compensationKeyPrefix)
	}
	if op.fromID != "" && op.fromID == op.toID {
		return fmt.Errorf("%w: source and destination accounts must differ", apperrors.ErrValidation)
	}
	return nil
}

// loadAccount fetches an account and checks it can participate in a money
// operation. Accounts the caller must own but does not report ErrNotFound
// rather than leaking their existence.
func (s *transferService) loadAccount(ctx context.Context, callerID, accountID string, mustOwn bool) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, err
	}
	if mustOwn && acc.OwnerID != callerID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if !acc.IsActive {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, accountID)
	}
	return acc, nil
}

// replayIfCommitted returns the previously committed result for the
// operation's idempotency key, or nil when the key is fresh. Reusing a key
// with different parameters is a validation error, not a replay.
func (s *transferService) replayIfCommitted(ctx context.Context, op moneyOp) (*domain.TransferResult, error) {
	entries, err := s.ledgerRepo.FindEntriesByIdempotencyKey(ctx, op.idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if err := matchesCommittedGroup(op, entries); err != nil {
		return nil, err
	}

	result := &domain.TransferResult{
		TransactionID: entries[0].TransactionID,
		State:         domain.StateCommitted,
		Entries:       entries,
		Replayed:      true,
	}
	if op.fromID != "" {
		acc, err := s.accountRepo.FindAccountByID(ctx, op.fromID)
		if err != nil {
			return nil, err
		}
		result.Source = acc
	}
	if op.toID != "" {
		acc, err := s.accountRepo.FindAccountByID(ctx, op.toID)
		if err != nil {
			return nil, err
		}
		result.Destination = acc
	}
	return result, nil
}

func matchesCommittedGroup(op moneyOp, entries []domain.LedgerEntry) error {
	mismatch := fmt.Errorf("%w: idempotency key %s was committed with different parameters",
		apperrors.ErrValidation, op.idempotencyKey)

	wantLegs := 0
	if op.fromID != "" {
		wantLegs++
	}
	if op.toID != "" {
		wantLegs++
	}
	if len(entries) != wantLegs {
		return mismatch
	}
	if op.fromID != "" && !groupHasLeg(entries, op.fromID, domain.Debit, op.amount) {
		return mismatch
	}
	if op.toID != "" && !groupHasLeg(entries, op.toID, domain.Credit, op.amount) {
		return mismatch
	}
	return nil
}

func groupHasLeg(entries []domain.LedgerEntry, accountID string, direction domain.EntryDirection, amount decimal.Decimal) bool {
	for _, e := range entries {
		if e.AccountID == accountID && e.Direction == direction && e.Amount.Equal(amount) {
			return true
		}
	}
	return false
}

// applyDeltaWithRetry drives one leg through the store's optimistic
// concurrency check. Version conflicts are transient and retried with
// exponential backoff up to the configured bound; every other failure is
// terminal.
func (s *transferService) applyDeltaWithRetry(ctx context.Context, accountID string, delta decimal.Decimal, actorID string) (*domain.Account, error) {
	attempt := func() (*domain.Account, error) {
		current, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		updated, err := s.accountRepo.ApplyBalanceDelta(ctx, accountID, delta, current.Version, actorID)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return updated, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return backoff.RetryWithData(attempt, backoff.WithContext(backoff.WithMaxRetries(b, s.maxAttempts-1), ctx))
}

// compensateDebit reverses a committed debit leg after the credit leg
// failed and returns the error to surface to the caller. Both the debit
// that happened and the credit undoing it are appended as one zero-netting
// group under the transaction ID, so the ledger accounts for every
// committed balance movement. The group carries server-generated keys,
// leaving the client's idempotency key free for a fresh retry. A failed
// reversal is the one irrecoverable case and escalates to
// ErrManualIntervention.
func (s *transferService) compensateDebit(ctx context.Context, logger *slog.Logger, callerID, transactionID string, from, fromAfter *domain.Account, op moneyOp, creditErr error) error {
	logger.Warn("Credit leg failed after committed debit",
		slog.String("state", string(domain.StatePartiallyApplied)),
		slog.String("source_account", from.AccountID),
		slog.String("destination_account", op.toID),
		slog.String("amount", op.amount.String()),
		slog.String("error", creditErr.Error()))

	restored, cerr := s.applyDeltaWithRetry(ctx, from.AccountID, op.amount, callerID)
	if cerr != nil {
		logger.Error("Compensation failed, account needs operator attention",
			slog.String("state", string(domain.StatePartiallyApplied)),
			slog.String("source_account", from.AccountID),
			slog.String("destination_account", op.toID),
			slog.String("amount", op.amount.String()),
			slog.String("debited_balance", fromAfter.Balance.String()),
			slog.String("credit_error", creditErr.Error()),
			slog.String("compensation_error", cerr.Error()))
		return fmt.Errorf("%w: transaction %s: debit of %s on account %s could not be reversed: %v",
			apperrors.ErrManualIntervention, transactionID, op.amount, from.AccountID, cerr)
	}

	now := time.Now().UTC()
	group := []domain.LedgerEntry{
		{
			EntryID:        uuid.NewString(),
			TransactionID:  transactionID,
			AccountID:      from.AccountID,
			Direction:      domain.Debit,
			Amount:         op.amount,
			CurrencyCode:   from.CurrencyCode,
			Description:    op.description,
			Counterparty:   op.counterparty,
			RunningBalance: fromAfter.Balance,
			IdempotencyKey: compensationKeyPrefix + transactionID + ":out",
			CreatedAt:      now,
			CreatedBy:      callerID,
		},
		{
			EntryID:        uuid.NewString(),
			TransactionID:  transactionID,
			AccountID:      from.AccountID,
			Direction:      domain.Credit,
			Amount:         op.amount,
			CurrencyCode:   from.CurrencyCode,
			Description:    "compensation: " + op.description,
			RunningBalance: restored.Balance,
			IdempotencyKey: compensationKeyPrefix + transactionID + ":back",
			CreatedAt:      now,
			CreatedBy:      callerID,
		},
	}
	if err := s.ledgerRepo.AppendEntries(ctx, group); err != nil {
		logger.Warn("Reversal group append failed, retrying in background",
			slog.String("error", err.Error()))
		s.scheduler.Schedule(group)
	}

	logger.Warn("Debit leg compensated",
		slog.String("state", string(domain.StateCompensated)),
		slog.String("source_account", from.AccountID),
		slog.String("restored_balance", restored.Balance.String()))
	return creditErr
}

// appendOrSchedule writes the entry group after the balances are durably
// committed. The append is also where the idempotency key is claimed: the
// unique (account, idempotency key) index admits exactly one group per
// key, so a duplicate here means a concurrent request with the same key
// won the race and this call's balance movements must be unwound. Any
// other append failure flags the result LedgerLagged and hands the group
// to the background retrier instead of failing the operation.
func (s *transferService) appendOrSchedule(ctx context.Context, logger *slog.Logger, callerID string, op moneyOp, result *domain.TransferResult) error {
	err := s.ledgerRepo.AppendEntries(ctx, result.Entries)
	if err == nil {
		return nil
	}

	if errors.Is(err, apperrors.ErrDuplicateIdempotencyKey) {
		return s.yieldToWinner(ctx, logger, callerID, op, result)
	}

	logger.Warn("Ledger append failed after committed balances, retrying in background",
		slog.String("error", err.Error()))
	result.LedgerLagged = true
	s.scheduler.Schedule(result.Entries)
	return nil
}

// yieldToWinner unwinds the balance legs of a request that lost the race
// to claim its idempotency key. The winner's entry group is the committed
// record and this call's movements are a duplicate application: the
// credit is taken back first, then the debit returned, and the winner's
// group is replayed as the result. The unwound movements get no ledger
// entries since the transaction they belonged to was never committed.
// A failed unwind leaves money applied twice and escalates to
// ErrManualIntervention.
func (s *transferService) yieldToWinner(ctx context.Context, logger *slog.Logger, callerID string, op moneyOp, result *domain.TransferResult) error {
	logger.Warn("Concurrent request claimed the idempotency key first, unwinding duplicate legs",
		slog.String("state", string(domain.StatePartiallyApplied)))

	if op.toID != "" {
		if _, err := s.applyDeltaWithRetry(ctx, op.toID, op.amount.Neg(), callerID); err != nil {
			logger.Error("Unwinding duplicate credit failed, account needs operator attention",
				slog.String("account_id", op.toID),
				slog.String("amount", op.amount.String()),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: transaction %s: duplicate credit of %s on account %s could not be reversed: %v",
				apperrors.ErrManualIntervention, result.TransactionID, op.amount, op.toID, err)
		}
	}
	if op.fromID != "" {
		if _, err := s.applyDeltaWithRetry(ctx, op.fromID, op.amount, callerID); err != nil {
			logger.Error("Unwinding duplicate debit failed, account needs operator attention",
				slog.String("account_id", op.fromID),
				slog.String("amount", op.amount.String()),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: transaction %s: duplicate debit of %s on account %s could not be reversed: %v",
				apperrors.ErrManualIntervention, result.TransactionID, op.amount, op.fromID, err)
		}
	}

	existing, err := s.ledgerRepo.FindEntriesByIdempotencyKey(ctx, op.idempotencyKey)
	if err != nil || len(existing) == 0 {
		return fmt.Errorf("%w: idempotency key %s was claimed concurrently", apperrors.ErrConflict, op.idempotencyKey)
	}
	if err := matchesCommittedGroup(op, existing); err != nil {
		return err
	}

	result.TransactionID = existing[0].TransactionID
	result.Entries = existing
	result.Replayed = true
	if op.fromID != "" {
		acc, ferr := s.accountRepo.FindAccountByID(ctx, op.fromID)
		if ferr != nil {
			return ferr
		}
		result.Source = acc
	}
	if op.toID != "" {
		acc, ferr := s.accountRepo.FindAccountByID(ctx, op.toID)
		if ferr != nil {
			return ferr
		}
		result.Destination = acc
	}
	return nil
}
