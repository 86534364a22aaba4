package domain

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

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountSavings, AccountChecking, AccountInvestment, AccountCredit:
		return true
	}
	return false
}

// AllowsNegativeBalance reports whether the account type may hold a balance
// below zero. Only credit accounts are exempt from the non-negative floor.
func (t AccountType) AllowsNegativeBalance() bool {
	return t == AccountCredit
}

// Account represents a customer account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID     string          `json:"accountID"`     // Primary Key (UUID)
	OwnerID       string          `json:"ownerID"`       // Owning caller, immutable
	Name          string          `json:"name"`          // User-defined name
	AccountType   AccountType     `json:"accountType"`   // SAVINGS, CHECKING, etc.
	AccountNumber string          `json:"accountNumber"` // Display identifier, immutable once issued
	CurrencyCode  string          `json:"currencyCode"`  // ISO 4217, immutable
	Balance       decimal.Decimal `json:"balance"`       // Committed balance
	IsActive      bool            `json:"isActive"`      // Inactive accounts reject mutations
	Version       int64           `json:"version"`       // Incremented on every committed mutation
	AuditFields
}

// CanApplyDelta reports whether adding delta to the committed balance keeps
// the account within its balance floor.
func (a Account) CanApplyDelta(delta decimal.Decimal) bool {
	if a.AccountType.AllowsNegativeBalance() {
		return true
	}
	return a.Balance.Add(delta).GreaterThanOrEqual(decimal.Zero)
}
