package store

import (
	"context"
	"errors"

	"github.com/dcontreras/payables/internal/model"
)

// Common errors surfaced by store implementations
var (
	// ErrDuplicateConfirmation is returned when inserting or updating a
	// payment whose confirmation number collides with another active
	// payment. The postgres store enforces this with a partial unique
	// index; application-level checks are a pre-flight optimization only.
	ErrDuplicateConfirmation = errors.New("confirmation number already used by an active payment")

	// ErrDuplicateTaxID is returned when inserting or updating a supplier
	// whose tax id collides with another supplier. The postgres store
	// enforces this with the tax_id unique constraint; the supplier
	// service's lookup is a pre-flight optimization only.
	ErrDuplicateTaxID = errors.New("tax id already registered to another supplier")

	// ErrConcurrencyConflict is returned when a transaction could not be
	// committed after the bounded number of retries.
	ErrConcurrencyConflict = errors.New("transaction conflict: could not commit after retries")
)

// SupplierFilter narrows supplier listings.
type SupplierFilter struct {
	Status model.SupplierStatus // empty = all
	Limit  int
	Offset int
}

// Store is the persistence boundary of the ledger engine. All getters
// return (nil, nil) when the row does not exist; services translate
// that into their own not-found errors.
//
// Every multi-row mutation must run inside WithinTx. The callback
// receives a Store bound to the transaction; a returned error rolls
// the whole transaction back. Implementations must make concurrent
// read-validate-write sequences on the same Debt or Supplier safe,
// either by serializable isolation with bounded retry or by a global
// mutex (the in-memory store).
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	GetSupplier(ctx context.Context, id int64) (*model.Supplier, error)
	GetSupplierByTaxID(ctx context.Context, taxID string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, filter SupplierFilter) ([]*model.Supplier, int, error)
	InsertSupplier(ctx context.Context, s *model.Supplier) error
	UpdateSupplier(ctx context.Context, s *model.Supplier) error

	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	InsertOrder(ctx context.Context, o *model.Order) error
	UpdateOrder(ctx context.Context, o *model.Order) error

	GetDebt(ctx context.Context, id int64) (*model.Debt, error)
	GetDebtByOrderID(ctx context.Context, orderID int64) (*model.Debt, error)
	ListDebtsForSupplier(ctx context.Context, supplierID int64) ([]*model.Debt, error)
	InsertDebt(ctx context.Context, d *model.Debt) error
	UpdateDebt(ctx context.Context, d *model.Debt) error

	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	// ListActivePaymentsForDebt returns the debt's payments whose
	// deleted_at is unset, ordered by id.
	ListActivePaymentsForDebt(ctx context.Context, debtID int64) ([]*model.Payment, error)
	// ListPaymentsForDebt returns all payments for the debt, optionally
	// including soft-deleted rows, ordered by id.
	ListPaymentsForDebt(ctx context.Context, debtID int64, includeDeleted bool) ([]*model.Payment, error)
	// FindActivePaymentByConfirmation looks up an active payment holding
	// the given (already trimmed, non-empty) confirmation number,
	// skipping the payment with excludeID when non-zero.
	FindActivePaymentByConfirmation(ctx context.Context, confirmation string, excludeID int64) (*model.Payment, error)
	InsertPayment(ctx context.Context, p *model.Payment) error
	UpdatePayment(ctx context.Context, p *model.Payment) error
}
