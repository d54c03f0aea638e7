package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/debt"
	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

// OrderWithDebt pairs an order with its linked debt
type OrderWithDebt struct {
	Order *model.Order
	Debt  *model.Debt
}

// Service handles order business logic
type Service struct {
	store store.Store
	calc  ledger.Recomputer
}

// NewService creates a new order service
func NewService(st store.Store, calc ledger.Recomputer) *Service {
	return &Service{store: st, calc: calc}
}

// Create registers an order and its debt atomically. Exactly one debt
// is created per order; the pair is never separated.
func (s *Service) Create(ctx context.Context, actor string, req *CreateOrderRequest) (*OrderWithDebt, error) {
	dispatchDate, err := time.Parse(dateLayout, req.DispatchDate)
	if err != nil {
		return nil, ledger.ErrInvalidDate
	}

	amount := req.Amount.Round(2)
	if amount.Sign() <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	var created *OrderWithDebt
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		sup, err := tx.GetSupplier(ctx, req.SupplierID)
		if err != nil {
			return err
		}
		if sup == nil {
			return ledger.ErrSupplierNotFound
		}

		o := &model.Order{
			SupplierID:   req.SupplierID,
			Amount:       amount,
			DispatchDate: dispatchDate,
			CreditDays:   req.CreditDays,
			DueDate:      model.DeriveDueDate(dispatchDate, req.CreditDays),
			Title:        req.Title,
			CreatedBy:    actor,
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}

		d := &model.Debt{
			OrderID:         o.ID,
			SupplierID:      o.SupplierID,
			InitialAmount:   amount,
			RemainingAmount: amount,
			Status:          model.DebtStatusPending,
			DueDate:         o.DueDate,
			Title:           req.Title,
		}
		if err := tx.InsertDebt(ctx, d); err != nil {
			return err
		}

		if _, err := s.calc.RecomputeSupplier(ctx, tx, o.SupplierID); err != nil {
			return err
		}

		created = &OrderWithDebt{Order: o, Debt: d}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an order together with its linked debt
func (s *Service) GetByID(ctx context.Context, id int64) (*OrderWithDebt, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ledger.ErrOrderNotFound
	}

	d, err := s.store.GetDebtByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &OrderWithDebt{Order: o, Debt: d}, nil
}

// Update edits an order's dispatch date, credit term, amount or title.
// The due date is re-derived from the new (or carried-over) dispatch
// date and credit days and propagated to the linked debt; an amount
// change shifts the debt's principal and remaining amount by the same
// delta. Ends with a full supplier recomputation.
func (s *Service) Update(ctx context.Context, orderID int64, req *UpdateOrderRequest) (*OrderWithDebt, error) {
	var newDispatch *time.Time
	if req.DispatchDate != nil {
		parsed, err := time.Parse(dateLayout, *req.DispatchDate)
		if err != nil {
			return nil, ledger.ErrInvalidDate
		}
		newDispatch = &parsed
	}

	var newAmount *decimal.Decimal
	if req.Amount != nil {
		rounded := req.Amount.Round(2)
		if rounded.Sign() <= 0 {
			return nil, ledger.ErrInvalidAmount
		}
		newAmount = &rounded
	}

	var updated *OrderWithDebt
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ledger.ErrOrderNotFound
		}

		d, err := tx.GetDebtByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if d == nil {
			return ledger.ErrDebtNotFound
		}

		changed := false
		if newDispatch != nil && !newDispatch.Equal(o.DispatchDate) {
			changed = true
		}
		if req.CreditDays != nil && *req.CreditDays != o.CreditDays {
			changed = true
		}
		if newAmount != nil && !newAmount.Equal(o.Amount) {
			changed = true
		}
		if req.Title != nil && (o.Title == nil || *o.Title != *req.Title) {
			changed = true
		}
		if !changed {
			return ledger.ErrNoChanges
		}

		if newDispatch != nil {
			o.DispatchDate = *newDispatch
		}
		if req.CreditDays != nil {
			o.CreditDays = *req.CreditDays
		}
		o.DueDate = model.DeriveDueDate(o.DispatchDate, o.CreditDays)
		d.DueDate = o.DueDate

		if req.Title != nil {
			o.Title = req.Title
			d.Title = req.Title
		}

		if newAmount != nil && !newAmount.Equal(o.Amount) {
			delta := newAmount.Sub(o.Amount)
			o.Amount = *newAmount
			debt.ApplyPrincipalDelta(d, delta)
		}

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateDebt(ctx, d); err != nil {
			return err
		}

		// Full recompute across all of the supplier's debts, not just
		// this delta, to avoid compounding drift across repeated edits.
		if _, err := s.calc.RecomputeSupplier(ctx, tx, o.SupplierID); err != nil {
			return err
		}

		updated = &OrderWithDebt{Order: o, Debt: d}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
