package domain

import "github.com/shopspring/decimal"

// CurrencyTotal is the committed balance of one currency across a caller's
// active accounts. Totals are never summed across currencies.
type CurrencyTotal struct {
	CurrencyCode string          `json:"currencyCode"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
	AccountCount int             `json:"accountCount"`
}
