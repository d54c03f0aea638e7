package debt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

// Service handles direct debt mutations and debt queries
type Service struct {
	store store.Store
	calc  ledger.Recomputer
}

// NewService creates a new debt service
func NewService(st store.Store, calc ledger.Recomputer) *Service {
	return &Service{store: st, calc: calc}
}

// GetByID retrieves a debt by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*model.Debt, error) {
	d, err := s.store.GetDebt(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ledger.ErrDebtNotFound
	}
	return d, nil
}

// ListPayments retrieves the debt's payments, optionally including
// soft-deleted rows for audit views.
func (s *Service) ListPayments(ctx context.Context, debtID int64, includeDeleted bool) ([]*model.Payment, error) {
	d, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ledger.ErrDebtNotFound
	}
	return s.store.ListPaymentsForDebt(ctx, debtID, includeDeleted)
}

// Update edits a debt's principal and/or due date directly. A principal
// change shifts the remaining amount by the same delta (clamped at
// zero) and ends with a full recomputation of the supplier's total.
func (s *Service) Update(ctx context.Context, debtID int64, req *UpdateDebtRequest) (*model.Debt, error) {
	var newDueDate *time.Time
	if req.DueDate != nil {
		parsed, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return nil, ledger.ErrInvalidDate
		}
		newDueDate = &parsed
	}

	var newInitial *decimal.Decimal
	if req.InitialAmount != nil {
		rounded := req.InitialAmount.Round(2)
		if rounded.Sign() <= 0 {
			return nil, ledger.ErrInvalidAmount
		}
		newInitial = &rounded
	}

	var updated *model.Debt
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		d, err := tx.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if d == nil {
			return ledger.ErrDebtNotFound
		}

		changed := false
		if newInitial != nil && !newInitial.Equal(d.InitialAmount) {
			changed = true
		}
		if newDueDate != nil && !newDueDate.Equal(d.DueDate) {
			changed = true
		}
		if !changed {
			return ledger.ErrNoChanges
		}

		if newInitial != nil && !newInitial.Equal(d.InitialAmount) {
			ApplyPrincipalDelta(d, newInitial.Sub(d.InitialAmount))
		}
		if newDueDate != nil {
			d.DueDate = *newDueDate
		}

		if err := tx.UpdateDebt(ctx, d); err != nil {
			return err
		}

		// Full supplier recompute, never a raw increment, so repeated
		// edits cannot accumulate drift.
		if _, err := s.calc.RecomputeSupplier(ctx, tx, d.SupplierID); err != nil {
			return err
		}

		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyPrincipalDelta shifts a debt's principal by delta, moving the
// remaining amount with it and re-deriving the status.
func ApplyPrincipalDelta(d *model.Debt, delta decimal.Decimal) {
	d.InitialAmount = d.InitialAmount.Add(delta)
	raw := d.RemainingAmount.Add(delta)
	d.RemainingAmount = raw
	if raw.Sign() < 0 {
		d.RemainingAmount = decimal.Zero
	}
	if raw.Sign() <= 0 {
		d.Status = model.DebtStatusPaid
	} else {
		d.Status = model.DebtStatusPending
	}
}
