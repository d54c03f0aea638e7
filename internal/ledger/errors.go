package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common errors shared by the ledger engine. Validation errors are
// detected before any persistent write and returned to the caller
// unmodified; the HTTP layer maps them to status codes.
var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDebtNotFound     = errors.New("debt not found")
	ErrPaymentNotFound  = errors.New("payment not found")

	ErrSupplierMismatch     = errors.New("debt does not belong to the given supplier")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrAlreadySettled       = errors.New("debt has no remaining balance")
	ErrConfirmationRequired = errors.New("confirmation number is required for this payment method")
	ErrAlreadyDeleted       = errors.New("payment has already been deleted")
	ErrNoChanges            = errors.New("no changes provided")
)

// OverpaymentError is returned when a payment amount exceeds the
// debt's available balance. It carries the maximum allowed amount so
// callers can report it.
type OverpaymentError struct {
	MaxAllowed decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("amount exceeds remaining balance: maximum allowed is %s", e.MaxAllowed.StringFixed(2))
}
