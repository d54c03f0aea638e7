package supplier

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

// Common errors
var (
	ErrTaxIDAlreadyInUse = errors.New("tax id already registered to another supplier")
)

// openingBalanceTitle labels the Order+Debt pair synthesized when a
// supplier is created with a pre-existing balance.
const openingBalanceTitle = "Saldo inicial"

// Service handles supplier business logic
type Service struct {
	store store.Store
	calc  ledger.Recomputer
}

// NewService creates a new supplier service
func NewService(st store.Store, calc ledger.Recomputer) *Service {
	return &Service{store: st, calc: calc}
}

// Create registers a supplier. An optional opening balance synthesizes
// an Order+Debt pair in the same transaction, so the supplier's
// total-debt invariant holds from the first row.
func (s *Service) Create(ctx context.Context, actor string, req *CreateSupplierRequest) (*model.Supplier, error) {
	if req.OpeningBalance != nil && req.OpeningBalance.Sign() <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	var created *model.Supplier
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		existing, err := tx.GetSupplierByTaxID(ctx, req.TaxID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrTaxIDAlreadyInUse
		}

		sup := &model.Supplier{
			CompanyName: req.CompanyName,
			TaxID:       req.TaxID,
			Phone:       req.Phone,
			ContactName: req.ContactName,
			Email:       req.Email,
			TotalDebt:   decimal.Zero,
			Status:      model.SupplierStatusCompleted,
		}
		if err := tx.InsertSupplier(ctx, sup); err != nil {
			// The store constraint catches creates that raced past the
			// pre-flight lookup.
			if errors.Is(err, store.ErrDuplicateTaxID) {
				return ErrTaxIDAlreadyInUse
			}
			return err
		}
		created = sup

		if req.OpeningBalance == nil {
			return nil
		}

		amount := req.OpeningBalance.Round(2)
		title := openingBalanceTitle
		today := time.Now().UTC().Truncate(24 * time.Hour)

		order := &model.Order{
			SupplierID:   sup.ID,
			Amount:       amount,
			DispatchDate: today,
			CreditDays:   0,
			DueDate:      model.DeriveDueDate(today, 0),
			Title:        &title,
			CreatedBy:    actor,
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		debt := &model.Debt{
			OrderID:         order.ID,
			SupplierID:      sup.ID,
			InitialAmount:   amount,
			RemainingAmount: amount,
			Status:          model.DebtStatusPending,
			DueDate:         order.DueDate,
			Title:           &title,
		}
		if err := tx.InsertDebt(ctx, debt); err != nil {
			return err
		}

		created, err = s.calc.RecomputeSupplier(ctx, tx, sup.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a supplier by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*model.Supplier, error) {
	sup, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, ledger.ErrSupplierNotFound
	}
	return sup, nil
}

// List retrieves suppliers with an optional status filter
func (s *Service) List(ctx context.Context, status model.SupplierStatus, page, perPage int) ([]*model.Supplier, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := store.SupplierFilter{
		Status: status,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	return s.store.ListSuppliers(ctx, filter)
}

// ListDebts retrieves all debts belonging to a supplier
func (s *Service) ListDebts(ctx context.Context, supplierID int64) ([]*model.Debt, error) {
	sup, err := s.store.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, ledger.ErrSupplierNotFound
	}
	return s.store.ListDebtsForSupplier(ctx, supplierID)
}
