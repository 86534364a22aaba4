package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/finhorizon/ledgercore/internal/utils/pagination"
)

// fakeAccountRepo is an in-memory account store with the same optimistic
// concurrency semantics as the real one. Conflicts and failures can be
// injected per account.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account

	// conflicts injects N version conflicts for an account; each one also
	// bumps the stored version, like a concurrent writer would.
	conflicts map[string]int
	// failures makes ApplyBalanceDelta fail for an account after letting a
	// set number of calls succeed.
	failures map[string]*deltaFailure

	deltaCallsByID map[string]int
	deltaCalls     int
	findCalls      int
}

type deltaFailure struct {
	after int // calls to let through before failing
	err   error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts:       make(map[string]*domain.Account),
		conflicts:      make(map[string]int),
		failures:       make(map[string]*deltaFailure),
		deltaCallsByID: make(map[string]int),
	}
}

func (f *fakeAccountRepo) put(acc domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := acc
	f.accounts[acc.AccountID] = &cp
}

func (f *fakeAccountRepo) balance(accountID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accountID].Balance
}

func (f *fakeAccountRepo) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeAccountRepo) FindAccountsByOwner(_ context.Context, ownerID string) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, acc := range f.accounts {
		if acc.OwnerID == ownerID {
			out = append(out, *acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAccountRepo) SaveAccount(_ context.Context, account domain.Account) error {
	f.put(account)
	return nil
}

func (f *fakeAccountRepo) DeactivateAccount(_ context.Context, accountID string, actorID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if !acc.IsActive {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, accountID)
	}
	acc.IsActive = false
	acc.Version++
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = actorID
	return nil
}

func (f *fakeAccountRepo) ApplyBalanceDelta(_ context.Context, accountID string, delta decimal.Decimal, expectedVersion int64, actorID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltaCalls++
	f.deltaCallsByID[accountID]++

	if failure, ok := f.failures[accountID]; ok && f.deltaCallsByID[accountID] > failure.after {
		return nil, failure.err
	}

	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if n := f.conflicts[accountID]; n > 0 {
		f.conflicts[accountID] = n - 1
		acc.Version++
		return nil, fmt.Errorf("%w: account %s version %d", apperrors.ErrConflict, accountID, expectedVersion)
	}
	if !acc.IsActive {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, accountID)
	}
	if acc.Version != expectedVersion {
		return nil, fmt.Errorf("%w: account %s version %d", apperrors.ErrConflict, accountID, expectedVersion)
	}
	if !acc.CanApplyDelta(delta) {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, accountID)
	}

	acc.Balance = acc.Balance.Add(delta)
	acc.Version++
	acc.LastUpdatedAt = time.Now().UTC()
	acc.LastUpdatedBy = actorID
	cp := *acc
	return &cp, nil
}

// fakeLedgerRepo is an in-memory append-only ledger enforcing the unique
// (account, idempotency key) constraint. Appends can be made to fail a set
// number of times.
type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry

	failAppends int
	appendCalls int

	// beforeAppend runs at the start of AppendEntries, outside the lock.
	// Tests use it to park one request at the append while another runs.
	beforeAppend func()
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{}
}

func (f *fakeLedgerRepo) AppendEntries(_ context.Context, entries []domain.LedgerEntry) error {
	if f.beforeAppend != nil {
		f.beforeAppend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendCalls++

	if f.failAppends > 0 {
		f.failAppends--
		return fmt.Errorf("ledger unavailable")
	}
	for _, e := range entries {
		for _, existing := range f.entries {
			if existing.AccountID == e.AccountID && existing.IdempotencyKey == e.IdempotencyKey {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateIdempotencyKey, e.IdempotencyKey)
			}
		}
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeLedgerRepo) FindEntriesByIdempotencyKey(_ context.Context, idempotencyKey string) ([]domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if e.IdempotencyKey == idempotencyKey {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) FindEntriesByTransactionID(_ context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListEntries(_ context.Context, accountID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []domain.LedgerEntry
	for _, e := range f.entries {
		if e.AccountID != accountID {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		if filter.Direction != nil && e.Direction != *filter.Direction {
			continue
		}
		if filter.TextSearch != "" {
			needle := strings.ToLower(filter.TextSearch)
			if !strings.Contains(strings.ToLower(e.Description), needle) &&
				!strings.Contains(strings.ToLower(e.Counterparty), needle) {
				continue
			}
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].EntryID > matched[j].EntryID
	})

	if nextToken != nil {
		createdAt, entryID, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		idx := 0
		for i, e := range matched {
			if e.CreatedAt.Before(createdAt) || (e.CreatedAt.Equal(createdAt) && e.EntryID < entryID) {
				idx = i
				break
			}
			idx = i + 1
		}
		matched = matched[idx:]
	}

	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeEntryToken(last.CreatedAt, last.EntryID)
	return page, &token, nil
}

// fakeReportingRepo aggregates over a fakeAccountRepo.
type fakeReportingRepo struct {
	accounts *fakeAccountRepo
	calls    int
}

func (f *fakeReportingRepo) BalanceSummaryByOwner(_ context.Context, ownerID string) ([]domain.CurrencyTotal, error) {
	f.accounts.mu.Lock()
	defer f.accounts.mu.Unlock()
	f.calls++

	byCurrency := make(map[string]*domain.CurrencyTotal)
	for _, acc := range f.accounts.accounts {
		if acc.OwnerID != ownerID || !acc.IsActive {
			continue
		}
		t, ok := byCurrency[acc.CurrencyCode]
		if !ok {
			t = &domain.CurrencyTotal{CurrencyCode: acc.CurrencyCode, TotalBalance: decimal.Zero}
			byCurrency[acc.CurrencyCode] = t
		}
		t.TotalBalance = t.TotalBalance.Add(acc.Balance)
		t.AccountCount++
	}

	var out []domain.CurrencyTotal
	for _, t := range byCurrency {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out, nil
}

// fakeScheduler records scheduled entry groups instead of retrying them.
type fakeScheduler struct {
	mu     sync.Mutex
	groups [][]domain.LedgerEntry
}

func (f *fakeScheduler) Schedule(entries []domain.LedgerEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, entries)
}

func (f *fakeScheduler) scheduled() [][]domain.LedgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups
}

func testAccount(id, ownerID, currency string, balance string, accountType domain.AccountType) domain.Account {
	now := time.Now().UTC()
	return domain.Account{
		AccountID:     id,
		OwnerID:       ownerID,
		Name:          "Account " + id,
		AccountType:   accountType,
		AccountNumber: "SAV-123456",
		CurrencyCode:  currency,
		Balance:       decimal.RequireFromString(balance),
		IsActive:      true,
		Version:       1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
}
