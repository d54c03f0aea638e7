package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/dcontreras/payables/internal/store"
)

// pq error codes
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// confirmationIndexName is the partial unique index guarding active
// confirmation numbers; see schema.sql.
const confirmationIndexName = "uq_payments_active_confirmation"

// taxIDConstraintName is the default name postgres gives the tax_id
// unique constraint on suppliers.
const taxIDConstraintName = "suppliers_tax_id_key"

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}

// mapPaymentError translates the confirmation-number constraint
// violation into the store sentinel so callers never see pq internals.
func mapPaymentError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation && pqErr.Constraint == confirmationIndexName {
		return store.ErrDuplicateConfirmation
	}
	return err
}

// mapSupplierError translates the tax-id constraint violation into the
// store sentinel. Racing creates with the same tax id both pass the
// pre-flight lookup; the constraint is the authoritative guard.
func mapSupplierError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation && pqErr.Constraint == taxIDConstraintName {
		return store.ErrDuplicateTaxID
	}
	return err
}
