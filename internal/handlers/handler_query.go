package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finhorizon/ledgercore/internal/apperrors"
	"github.com/finhorizon/ledgercore/internal/core/domain"
	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
	"github.com/finhorizon/ledgercore/internal/dto"
	"github.com/finhorizon/ledgercore/internal/middleware"
)

// queryHandler serves the read-only projections.
type queryHandler struct {
	queryService portssvc.QuerySvcFacade
}

func newQueryHandler(qs portssvc.QuerySvcFacade) *queryHandler {
	return &queryHandler{queryService: qs}
}

// registerQueryRoutes registers the read-side routes.
func registerQueryRoutes(rg *gin.RouterGroup, queryService portssvc.QuerySvcFacade) {
	h := newQueryHandler(queryService)

	rg.GET("/summary", h.balanceSummary)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/:id/entries", h.listEntries)
		accounts.GET("/:id/statement", h.statement)
	}
}

// balanceSummary godoc
// @Summary Get the caller's balance summary
// @Description Returns committed balances of active accounts grouped by currency
// @Tags queries
// @Produce  json
// @Success 200 {object} dto.BalanceSummaryResponse
// @Router /summary [get]
func (h *queryHandler) balanceSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	summary, err := h.queryService.GetBalanceSummary(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listEntries godoc
// @Summary List ledger entries for an account
// @Description Returns a filtered, reverse-chronological page of an account's ledger entries
// @Tags queries
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   from query string false "Range start (RFC 3339 or YYYY-MM-DD)"
// @Param   to query string false "Range end (RFC 3339 or YYYY-MM-DD)"
// @Param   direction query string false "DEBIT or CREDIT"
// @Param   search query string false "Case-insensitive description or counterparty match"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Opaque pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id}/entries [get]
func (h *queryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	params, err := parseListParams(c)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	page, err := h.queryService.ListAccountEntries(c.Request.Context(), callerID, c.Param("id"), params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// statement godoc
// @Summary Get an account statement
// @Description Returns the entries of a date range with opening and closing balances
// @Tags queries
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   from query string true "Range start (RFC 3339 or YYYY-MM-DD)"
// @Param   to query string true "Range end (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {object} dto.StatementResponse
// @Failure 400 {object} map[string]string "Missing or invalid date range"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id}/statement [get]
func (h *queryHandler) statement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	from, err := parseTimeParam(c.Query("from"), false)
	if err != nil || from == nil {
		respondError(c, logger, fmt.Errorf("%w: from is required and must be RFC 3339 or YYYY-MM-DD", apperrors.ErrValidation))
		return
	}
	to, err := parseTimeParam(c.Query("to"), true)
	if err != nil || to == nil {
		respondError(c, logger, fmt.Errorf("%w: to is required and must be RFC 3339 or YYYY-MM-DD", apperrors.ErrValidation))
		return
	}

	stmt, err := h.queryService.GetStatement(c.Request.Context(), callerID, c.Param("id"), *from, *to)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, stmt)
}

func parseListParams(c *gin.Context) (dto.ListEntriesParams, error) {
	var params dto.ListEntriesParams

	from, err := parseTimeParam(c.Query("from"), false)
	if err != nil {
		return params, err
	}
	params.From = from

	to, err := parseTimeParam(c.Query("to"), true)
	if err != nil {
		return params, err
	}
	params.To = to

	if raw := c.Query("direction"); raw != "" {
		d := domain.EntryDirection(raw)
		if d != domain.Debit && d != domain.Credit {
			return params, fmt.Errorf("%w: direction must be DEBIT or CREDIT, got %q", apperrors.ErrValidation, raw)
		}
		params.Direction = &d
	}

	params.Search = c.Query("search")

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return params, fmt.Errorf("%w: limit must be a positive integer, got %q", apperrors.ErrValidation, raw)
		}
		params.Limit = limit
	}

	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}
	return params, nil
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. A bare date as
// a range end covers the whole day.
func parseTimeParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time %q, want RFC 3339 or YYYY-MM-DD", apperrors.ErrValidation, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	t = t.UTC()
	return &t, nil
}
