package models

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies a customer account.
type AccountType string

const (
	AccountSavings    AccountType = "SAVINGS"
	AccountChecking   AccountType = "CHECKING"
	AccountInvestment AccountType = "INVESTMENT"
	AccountCredit     AccountType = "CREDIT"
)

// Account represents an account row in the store.
type Account struct {
	AccountID     string          `db:"account_id"`
	OwnerID       string          `db:"owner_id"`
	Name          string          `db:"name"`
	AccountType   AccountType     `db:"account_type"`
	AccountNumber string          `db:"account_number"`
	CurrencyCode  string          `db:"currency_code"`
	Balance       decimal.Decimal `db:"balance"`
	IsActive      bool            `db:"is_active"`
	Version       int64           `db:"version"`
	AuditFields                   // Embed common audit fields
}
