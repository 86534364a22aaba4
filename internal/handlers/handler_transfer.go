package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	portssvc "github.com/finhorizon/ledgercore/internal/core/ports/services"
	"github.com/finhorizon/ledgercore/internal/dto"
	"github.com/finhorizon/ledgercore/internal/middleware"
)

// transferHandler exposes the three money operations.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// registerTransferRoutes registers the money operation routes.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/deposit", h.deposit)
		transactions.POST("/withdraw", h.withdraw)
		transactions.POST("/transfer", h.transfer)
	}
}

// deposit godoc
// @Summary Deposit into an account
// @Description Credits one of the caller's accounts and records a ledger entry
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   deposit body dto.DepositRequest true "Deposit details"
// @Success 200 {object} dto.TransferResultResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account inactive or version conflict"
// @Router /transactions/deposit [post]
func (h *transferHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("caller_id", callerID), slog.String("to_account_id", req.ToAccountID))
	result, err := h.transferService.Deposit(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	respondResult(c, logger, result)
}

// withdraw godoc
// @Summary Withdraw from an account
// @Description Debits one of the caller's accounts, subject to its balance floor
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Success 200 {object} dto.TransferResultResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Insufficient funds, inactive account or version conflict"
// @Router /transactions/withdraw [post]
func (h *transferHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("caller_id", callerID), slog.String("from_account_id", req.FromAccountID))
	result, err := h.transferService.Withdraw(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	respondResult(c, logger, result)
}

// transfer godoc
// @Summary Transfer between accounts
// @Description Atomically moves money from one of the caller's accounts to another same-currency account
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResultResponse
// @Failure 400 {object} map[string]string "Invalid input, validation error or currency mismatch"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Insufficient funds, inactive account or version conflict"
// @Failure 500 {object} map[string]string "Compensation failed, manual intervention required"
// @Router /transactions/transfer [post]
func (h *transferHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED"})
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(
		slog.String("caller_id", callerID),
		slog.String("from_account_id", req.FromAccountID),
		slog.String("to_account_id", req.ToAccountID))
	result, err := h.transferService.Transfer(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	respondResult(c, logger, result)
}

func respondResult(c *gin.Context, logger *slog.Logger, result *domain.TransferResult) {
	logger.Info("Money operation succeeded",
		slog.String("transaction_id", result.TransactionID),
		slog.Bool("replayed", result.Replayed),
		slog.Bool("ledger_lagged", result.LedgerLagged))
	c.JSON(http.StatusOK, dto.ToTransferResultResponse(result))
}
