package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/cache"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portsrepo "github.com/finhorizon/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
	"github.com/finhorizon/ledgercore/internal/dto"
	"github.com/finhorizon/ledgercore/internal/middleware"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type queryService struct {
	accountRepo   portsrepo.AccountRepositoryFacade
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	reportingRepo portsrepo.ReportingReader
	cache         cache.Cache
	summaryTTL    time.Duration
}

// NewQueryService creates the read-side facade. The balance summary is the
// only cached projection; everything else reads committed rows directly.
func NewQueryService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, reportingRepo portsrepo.ReportingReader, c cache.Cache, summaryTTL time.Duration) portssvc.QuerySvcFacade {
	if summaryTTL <= 0 {
		summaryTTL = 30 * time.Second
	}
	return &queryService{
		accountRepo:   accountRepo,
		ledgerRepo:    ledgerRepo,
		reportingRepo: reportingRepo,
		cache:         c,
		summaryTTL:    summaryTTL,
	}
}

var _ portssvc.QuerySvcFacade = (*queryService)(nil)

// GetBalanceSummary implements portssvc.QuerySvcFacade.
func (s *queryService) GetBalanceSummary(ctx context.Context, callerID string) (dto.BalanceSummaryResponse, error) {
	key := "summary:" + callerID

	var cached dto.BalanceSummaryResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Balance summary cache read failed",
			slog.String("error", err.Error()))
	}
	if hit {
		return cached, nil
	}

	totals, err := s.reportingRepo.BalanceSummaryByOwner(ctx, callerID)
	if err != nil {
		return dto.BalanceSummaryResponse{}, fmt.Errorf("failed to compute balance summary: %w", err)
	}
	resp := dto.ToBalanceSummaryResponse(totals)

	if err := s.cache.Set(ctx, key, resp, s.summaryTTL); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Balance summary cache write failed",
			slog.String("error", err.Error()))
	}
	return resp, nil
}

// ListAccountEntries implements portssvc.QuerySvcFacade.
func (s *queryService) ListAccountEntries(ctx context.Context, callerID string, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, err := s.ownedAccount(ctx, callerID, accountID); err != nil {
		return nil, err
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, fmt.Errorf("%w: date range end precedes start", apperrors.ErrValidation)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := domain.EntryFilter{
		From:       params.From,
		To:         params.To,
		Direction:  params.Direction,
		TextSearch: params.Search,
	}
	entries, nextToken, err := s.ledgerRepo.ListEntries(ctx, accountID, filter, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToLedgerEntryResponseSlice(entries),
		NextToken: nextToken,
	}, nil
}

// GetStatement implements portssvc.QuerySvcFacade.
//
// Opening and closing balances come from the running balances recorded on
// the entries themselves, so a statement is consistent even while new
// transactions commit. An empty range reports the current committed
// balance for both.
func (s *queryService) GetStatement(ctx context.Context, callerID string, accountID string, from, to time.Time) (*dto.StatementResponse, error) {
	acc, err := s.ownedAccount(ctx, callerID, accountID)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range end precedes start", apperrors.ErrValidation)
	}

	var all []domain.LedgerEntry
	var token *string
	filter := domain.EntryFilter{From: &from, To: &to}
	for {
		page, next, err := s.ledgerRepo.ListEntries(ctx, accountID, filter, maxPageLimit, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == nil {
			break
		}
		token = next
	}

	stmt := &dto.StatementResponse{
		AccountID:      acc.AccountID,
		AccountNumber:  acc.AccountNumber,
		CurrencyCode:   acc.CurrencyCode,
		From:           from,
		To:             to,
		OpeningBalance: acc.Balance,
		ClosingBalance: acc.Balance,
		Entries:        dto.ToLedgerEntryResponseSlice(all),
	}
	if len(all) > 0 {
		// Entries arrive newest first: the first row closes the range,
		// the last one opens it once its own movement is backed out.
		newest, oldest := all[0], all[len(all)-1]
		stmt.ClosingBalance = newest.RunningBalance
		stmt.OpeningBalance = oldest.RunningBalance.Sub(oldest.SignedAmount())
	}
	return stmt, nil
}

func (s *queryService) ownedAccount(ctx context.Context, callerID, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.OwnerID != callerID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return acc, nil
}
