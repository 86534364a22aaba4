package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
// It is also returned when a caller asks for an account they do not own,
// to avoid leaking the account's existence.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrAccountInactive indicates a mutation was attempted on a closed account.
var ErrAccountInactive = errors.New("account is inactive")

// ErrInsufficientFunds indicates a debit would take the balance below the
// floor allowed for the account type.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrCurrencyMismatch indicates the accounts of a transfer do not share a currency.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrConflict indicates an optimistic concurrency check failed. It is
// transient: the transfer engine retries it internally before surfacing it.
var ErrConflict = errors.New("concurrent update conflict")

// ErrDuplicateIdempotencyKey indicates an entry group was already committed
// under the same idempotency key. Callers treat this as a success replay.
var ErrDuplicateIdempotencyKey = errors.New("idempotency key already committed")

// ErrManualIntervention indicates a compensation failed after a committed
// debit leg. The account state needs operator attention.
var ErrManualIntervention = errors.New("manual intervention required")

// Kind maps an error chain to a stable, enumerable code for API consumers.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrAccountInactive):
		return "INACTIVE_ACCOUNT"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrCurrencyMismatch):
		return "CURRENCY_MISMATCH"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrDuplicateIdempotencyKey):
		return "DUPLICATE_IDEMPOTENCY_KEY"
	case errors.Is(err, ErrManualIntervention):
		return "MANUAL_INTERVENTION_REQUIRED"
	default:
		return "INTERNAL"
	}
}
