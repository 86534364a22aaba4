package dto

import (
	"time"

	"github.com/finhorizon/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest defines the data needed to open a new account.
// A non-zero initial deposit is executed as a real deposit transaction.
type OpenAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=SAVINGS CHECKING INVESTMENT CREDIT"`
	CurrencyCode   string             `json:"currencyCode" binding:"required,iso4217"`
	InitialDeposit decimal.Decimal    `json:"initialDeposit"` // Optional, zero means none
	IdempotencyKey string             `json:"idempotencyKey" binding:"required"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	OwnerID       string             `json:"ownerID"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	AccountNumber string             `json:"accountNumber"`
	CurrencyCode  string             `json:"currencyCode"`
	Balance       decimal.Decimal    `json:"balance"`
	IsActive      bool               `json:"isActive"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// OpenAccountResponse pairs the new account with the initial deposit
// result, when one was requested.
type OpenAccountResponse struct {
	Account        AccountResponse         `json:"account"`
	InitialDeposit *TransferResultResponse `json:"initialDeposit,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		OwnerID:       acc.OwnerID,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		AccountNumber: acc.AccountNumber,
		CurrencyCode:  acc.CurrencyCode,
		Balance:       acc.Balance,
		IsActive:      acc.IsActive,
		Version:       acc.Version,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToAccountResponseSlice converts domain accounts to response DTOs.
func ToAccountResponseSlice(accs []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accs))
	for i := range accs {
		out[i] = ToAccountResponse(&accs[i])
	}
	return out
}
