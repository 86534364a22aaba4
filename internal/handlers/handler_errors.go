package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhorizon/ledgercore/internal/apperrors"
)

// respondError maps a service error onto the HTTP surface. The body always
// carries the stable error code plus the human-readable detail.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrCurrencyMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicateIdempotencyKey):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": apperrors.Kind(err), "message": "internal error"})
		return
	}
	logger.Warn("Request rejected", slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": apperrors.Kind(err), "message": err.Error()})
}

func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.Kind(apperrors.ErrValidation), "message": "Invalid request format: " + err.Error()})
}
