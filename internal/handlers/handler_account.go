package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
	"github.com/finhorizon/ledgercore/internal/dto"
	"github.com/finhorizon/ledgercore/internal/middleware"
)

// accountHandler handles HTTP requests for the account lifecycle.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.DELETE("/:id", h.closeAccount)
	}
}

// openAccount godoc
// @Summary Open a new account
// @Description Opens an account for the caller, optionally funding it with an initial deposit
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.OpenAccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Router /accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("caller_id", callerID))
	logger.Info("Received request to open account",
		slog.String("account_name", req.Name),
		slog.String("account_type", string(req.AccountType)),
		slog.String("currency_code", req.CurrencyCode))

	account, deposit, err := h.accountService.OpenAccount(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	resp := dto.OpenAccountResponse{Account: dto.ToAccountResponse(account)}
	if deposit != nil {
		d := dto.ToTransferResultResponse(deposit)
		resp.InitialDeposit = &d
	}
	logger.Info("Account opened successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, resp)
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves one of the caller's accounts
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	accountID := c.Param("id")
	logger = logger.With(slog.String("caller_id", callerID), slog.String("account_id", accountID))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), callerID, accountID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List the caller's accounts
// @Description Returns all accounts owned by the caller, newest first
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponseSlice(accounts))
}

// closeAccount godoc
// @Summary Close an account
// @Description Marks one of the caller's accounts inactive. The row is retained for audit.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 204 "Account closed"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id} [delete]
func (h *accountHandler) closeAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	accountID := c.Param("id")
	logger = logger.With(slog.String("caller_id", callerID), slog.String("account_id", accountID))

	if err := h.accountService.CloseAccount(c.Request.Context(), callerID, accountID); err != nil {
		respondError(c, logger, err)
		return
	}
	logger.Info("Account closed successfully")
	c.Status(http.StatusNoContent)
}
