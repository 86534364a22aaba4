package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/finhorizon/ledgercore/internal/dto"
)

// mapCache is a TTL-less in-memory cache for tests.
type mapCache struct {
	mu    sync.Mutex
	items map[string]dto.BalanceSummaryResponse
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]dto.BalanceSummaryResponse)}
}

func (m *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := value.(dto.BalanceSummaryResponse); ok {
		m.items[key] = v
	}
	return nil
}

func (m *mapCache) Get(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return false, nil
	}
	if target, ok := out.(*dto.BalanceSummaryResponse); ok {
		*target = v
		return true, nil
	}
	return false, nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

type queryFixture struct {
	accounts  *fakeAccountRepo
	ledger    *fakeLedgerRepo
	reporting *fakeReportingRepo
	svc       *queryService
}

func newQueryFixture() *queryFixture {
	accounts := newFakeAccountRepo()
	ledger := newFakeLedgerRepo()
	reporting := &fakeReportingRepo{accounts: accounts}
	svc := NewQueryService(accounts, ledger, reporting, newMapCache(), time.Minute).(*queryService)
	return &queryFixture{accounts: accounts, ledger: ledger, reporting: reporting, svc: svc}
}

func (f *queryFixture) seedEntries(t *testing.T, accountID string, n int) []domain.LedgerEntry {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	balance := decimal.Zero
	entries := make([]domain.LedgerEntry, 0, n)
	for i := 0; i < n; i++ {
		amount := decimal.NewFromInt(int64(10 + i))
		direction := domain.Credit
		if i%3 == 2 {
			direction = domain.Debit
			balance = balance.Sub(amount)
		} else {
			balance = balance.Add(amount)
		}
		e := domain.LedgerEntry{
			EntryID:        uuidLike(i),
			TransactionID:  "tx-" + uuidLike(i),
			AccountID:      accountID,
			Direction:      direction,
			Amount:         amount,
			CurrencyCode:   "USD",
			Description:    "seed entry",
			RunningBalance: balance,
			IdempotencyKey: "seed-" + uuidLike(i),
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
			CreatedBy:      testOwner,
		}
		entries = append(entries, e)
		require.NoError(t, f.ledger.AppendEntries(context.Background(), []domain.LedgerEntry{e}))
	}
	return entries
}

// uuidLike keeps entry IDs lexically ordered with their insertion order so
// keyset assertions stay readable.
func uuidLike(i int) string {
	return string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func TestGetBalanceSummary(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOwner, "USD", "100.00", domain.AccountChecking))
	f.accounts.put(testAccount("acc-2", testOwner, "USD", "50.00", domain.AccountSavings))
	f.accounts.put(testAccount("acc-3", testOwner, "EUR", "75.00", domain.AccountSavings))
	inactive := testAccount("acc-4", testOwner, "USD", "999.00", domain.AccountSavings)
	inactive.IsActive = false
	f.accounts.put(inactive)
	f.accounts.put(testAccount("acc-5", testOtherOwner, "USD", "11.00", domain.AccountSavings))

	summary, err := f.svc.GetBalanceSummary(context.Background(), testOwner)
	require.NoError(t, err)

	require.Len(t, summary.Totals, 2)
	assert.Equal(t, "EUR", summary.Totals[0].CurrencyCode)
	assert.True(t, summary.Totals[0].TotalBalance.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, 1, summary.Totals[0].AccountCount)
	assert.Equal(t, "USD", summary.Totals[1].CurrencyCode)
	assert.True(t, summary.Totals[1].TotalBalance.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, 2, summary.Totals[1].AccountCount)
}

func TestGetBalanceSummaryUsesCache(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOwner, "USD", "100.00", domain.AccountChecking))

	_, err := f.svc.GetBalanceSummary(context.Background(), testOwner)
	require.NoError(t, err)
	_, err = f.svc.GetBalanceSummary(context.Background(), testOwner)
	require.NoError(t, err)

	assert.Equal(t, 1, f.reporting.calls)
}

func TestListAccountEntriesPagination(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOwner, "USD", "0", domain.AccountChecking))
	seeded := f.seedEntries(t, "acc-1", 7)

	page1, err := f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1.Entries, 3)
	require.NotNil(t, page1.NextToken)

	// Newest first.
	assert.Equal(t, seeded[6].EntryID, page1.Entries[0].EntryID)

	page2, err := f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{Limit: 3, NextToken: page1.NextToken})
	require.NoError(t, err)
	require.Len(t, page2.Entries, 3)
	require.NotNil(t, page2.NextToken)

	page3, err := f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{Limit: 3, NextToken: page2.NextToken})
	require.NoError(t, err)
	require.Len(t, page3.Entries, 1)
	assert.Nil(t, page3.NextToken)

	// No entry repeated or skipped across pages.
	seen := make(map[string]bool)
	for _, page := range []*dto.ListEntriesResponse{page1, page2, page3} {
		for _, e := range page.Entries {
			assert.False(t, seen[e.EntryID])
			seen[e.EntryID] = true
		}
	}
	assert.Len(t, seen, 7)
}

func TestListAccountEntriesFilters(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOwner, "USD", "0", domain.AccountChecking))
	f.seedEntries(t, "acc-1", 6)

	debit := domain.Debit
	page, err := f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{Direction: &debit})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	for _, e := range page.Entries {
		assert.Equal(t, domain.Debit, e.Direction)
	}

	page, err = f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{Search: "SEED"})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 6)

	page, err = f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{Search: "no such thing"})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
}

func TestListAccountEntriesOwnership(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOtherOwner, "USD", "0", domain.AccountChecking))

	_, err := f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAccountEntriesInvalidRange(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOwner, "USD", "0", domain.AccountChecking))

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err := f.svc.ListAccountEntries(context.Background(), testOwner, "acc-1", dto.ListEntriesParams{From: &from, To: &to})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGetStatement(t *testing.T) {
	f := newQueryFixture()
	acc := testAccount("acc-1", testOwner, "USD", "27.00", domain.AccountChecking)
	f.accounts.put(acc)
	seeded := f.seedEntries(t, "acc-1", 5)

	from := seeded[1].CreatedAt
	to := seeded[3].CreatedAt

	stmt, err := f.svc.GetStatement(context.Background(), testOwner, "acc-1", from, to)
	require.NoError(t, err)
	require.Len(t, stmt.Entries, 3)

	// Closing is the newest entry's running balance; opening backs the
	// oldest in-range movement out of its own running balance.
	assert.True(t, stmt.ClosingBalance.Equal(seeded[3].RunningBalance))
	wantOpening := seeded[1].RunningBalance.Sub(seeded[1].SignedAmount())
	assert.True(t, stmt.OpeningBalance.Equal(wantOpening))
	assert.True(t, wantOpening.Equal(seeded[0].RunningBalance))
}

func TestGetStatementEmptyRange(t *testing.T) {
	f := newQueryFixture()
	f.accounts.put(testAccount("acc-1", testOwner, "USD", "42.00", domain.AccountChecking))

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	stmt, err := f.svc.GetStatement(context.Background(), testOwner, "acc-1", from, from.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Empty(t, stmt.Entries)
	assert.True(t, stmt.OpeningBalance.Equal(decimal.RequireFromString("42.00")))
	assert.True(t, stmt.ClosingBalance.Equal(decimal.RequireFromString("42.00")))
}
