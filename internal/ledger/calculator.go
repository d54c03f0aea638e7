// Package ledger owns the derived aggregates of the payables ledger:
// a debt's remaining amount and status, and a supplier's total debt
// and status. The calculator is the only writer of these fields.
// Derived values are always recomputed in full from their source rows,
// never adjusted incrementally, so repeated application cannot drift.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

// Recomputer is the narrow surface services depend on to refresh
// aggregates after a mutation. Both methods must be called on the same
// transactional store that performed the mutation.
type Recomputer interface {
	RecomputeDebt(ctx context.Context, st store.Store, debtID int64) (*model.Debt, error)
	RecomputeSupplier(ctx context.Context, st store.Store, supplierID int64) (*model.Supplier, error)
}

// Calculator recomputes derived balances. It is stateless; the store
// (usually a transaction) is supplied per call.
type Calculator struct{}

// NewCalculator creates a new aggregate calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// RecomputeDebt reloads the debt's active payments and rewrites
// remaining_amount and status. Idempotent: with no intervening
// mutation a second call yields the same result.
func (c *Calculator) RecomputeDebt(ctx context.Context, st store.Store, debtID int64) (*model.Debt, error) {
	debt, err := st.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, ErrDebtNotFound
	}

	payments, err := st.ListActivePaymentsForDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	raw := debt.InitialAmount.Sub(paid)
	debt.RemainingAmount = raw
	if raw.Sign() < 0 {
		debt.RemainingAmount = decimal.Zero
	}
	if raw.Sign() <= 0 {
		debt.Status = model.DebtStatusPaid
	} else {
		debt.Status = model.DebtStatusPending
	}

	if err := st.UpdateDebt(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}

// RecomputeSupplier reloads all of the supplier's debts and rewrites
// total_debt and status. Idempotent.
func (c *Calculator) RecomputeSupplier(ctx context.Context, st store.Store, supplierID int64) (*model.Supplier, error) {
	supplier, err := st.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, ErrSupplierNotFound
	}

	debts, err := st.ListDebtsForSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, d := range debts {
		if d.RemainingAmount.Sign() > 0 {
			total = total.Add(d.RemainingAmount)
		}
	}

	supplier.TotalDebt = total
	if total.Sign() > 0 {
		supplier.Status = model.SupplierStatusPending
	} else {
		supplier.Status = model.SupplierStatusCompleted
	}

	if err := st.UpdateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

var _ Recomputer = (*Calculator)(nil)
