package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store/memory"
)

func seedDebt(t *testing.T, st *memory.Memory, initial string) (*model.Supplier, *model.Debt) {
	t.Helper()
	ctx := context.Background()

	sup := &model.Supplier{
		CompanyName: "Acme Foods",
		TaxID:       "J-12345678-9",
		Phone:       "+58 212 555 0100",
		Status:      model.SupplierStatusCompleted,
		TotalDebt:   decimal.Zero,
	}
	require.NoError(t, st.InsertSupplier(ctx, sup))

	amount := decimal.RequireFromString(initial)
	o := &model.Order{
		SupplierID:   sup.ID,
		Amount:       amount,
		DispatchDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreditDays:   30,
		DueDate:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CreatedBy:    "tester",
	}
	require.NoError(t, st.InsertOrder(ctx, o))

	d := &model.Debt{
		OrderID:         o.ID,
		SupplierID:      sup.ID,
		InitialAmount:   amount,
		RemainingAmount: amount,
		Status:          model.DebtStatusPending,
		DueDate:         o.DueDate,
	}
	require.NoError(t, st.InsertDebt(ctx, d))
	return sup, d
}

func addPayment(t *testing.T, st *memory.Memory, d *model.Debt, amount string, deleted bool) *model.Payment {
	t.Helper()
	p := &model.Payment{
		DebtID:      d.ID,
		SupplierID:  d.SupplierID,
		Amount:      decimal.RequireFromString(amount),
		Method:      model.PaymentMethodCash,
		SenderName:  "Maria",
		PaymentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "tester",
	}
	if deleted {
		now := time.Now().UTC()
		p.DeletedAt = &now
	}
	require.NoError(t, st.InsertPayment(context.Background(), p))
	return p
}

func TestRecomputeDebt(t *testing.T) {
	ctx := context.Background()
	calc := ledger.NewCalculator()

	t.Run("sums active payments only", func(t *testing.T) {
		st := memory.New()
		_, d := seedDebt(t, st, "1000.00")
		addPayment(t, st, d, "400.00", false)
		addPayment(t, st, d, "100.00", true) // deleted, must not count

		got, err := calc.RecomputeDebt(ctx, st, d.ID)
		require.NoError(t, err)
		assert.True(t, got.RemainingAmount.Equal(decimal.RequireFromString("600.00")))
		assert.Equal(t, model.DebtStatusPending, got.Status)
	})

	t.Run("settles at exactly zero", func(t *testing.T) {
		st := memory.New()
		_, d := seedDebt(t, st, "500.00")
		addPayment(t, st, d, "200.00", false)
		addPayment(t, st, d, "300.00", false)

		got, err := calc.RecomputeDebt(ctx, st, d.ID)
		require.NoError(t, err)
		assert.True(t, got.RemainingAmount.IsZero())
		assert.Equal(t, model.DebtStatusPaid, got.Status)
	})

	t.Run("clamps negative remaining to zero", func(t *testing.T) {
		st := memory.New()
		_, d := seedDebt(t, st, "500.00")
		addPayment(t, st, d, "600.00", false)

		got, err := calc.RecomputeDebt(ctx, st, d.ID)
		require.NoError(t, err)
		assert.True(t, got.RemainingAmount.IsZero())
		assert.Equal(t, model.DebtStatusPaid, got.Status)
	})

	t.Run("idempotent", func(t *testing.T) {
		st := memory.New()
		_, d := seedDebt(t, st, "1000.00")
		addPayment(t, st, d, "250.00", false)

		first, err := calc.RecomputeDebt(ctx, st, d.ID)
		require.NoError(t, err)
		second, err := calc.RecomputeDebt(ctx, st, d.ID)
		require.NoError(t, err)

		assert.True(t, first.RemainingAmount.Equal(second.RemainingAmount))
		assert.Equal(t, first.Status, second.Status)
	})

	t.Run("unknown debt", func(t *testing.T) {
		st := memory.New()
		_, err := calc.RecomputeDebt(ctx, st, 999)
		assert.ErrorIs(t, err, ledger.ErrDebtNotFound)
	})
}

func TestRecomputeSupplier(t *testing.T) {
	ctx := context.Background()
	calc := ledger.NewCalculator()

	t.Run("sums outstanding debts", func(t *testing.T) {
		st := memory.New()
		sup, d1 := seedDebt(t, st, "1000.00")

		// second debt for the same supplier
		o := &model.Order{
			SupplierID:   sup.ID,
			Amount:       decimal.RequireFromString("250.00"),
			DispatchDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			DueDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			CreatedBy:    "tester",
		}
		require.NoError(t, st.InsertOrder(ctx, o))
		d2 := &model.Debt{
			OrderID:         o.ID,
			SupplierID:      sup.ID,
			InitialAmount:   o.Amount,
			RemainingAmount: o.Amount,
			Status:          model.DebtStatusPending,
			DueDate:         o.DueDate,
		}
		require.NoError(t, st.InsertDebt(ctx, d2))

		addPayment(t, st, d1, "400.00", false)
		_, err := calc.RecomputeDebt(ctx, st, d1.ID)
		require.NoError(t, err)

		got, err := calc.RecomputeSupplier(ctx, st, sup.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalDebt.Equal(decimal.RequireFromString("850.00")))
		assert.Equal(t, model.SupplierStatusPending, got.Status)
	})

	t.Run("completed when nothing outstanding", func(t *testing.T) {
		st := memory.New()
		sup, d := seedDebt(t, st, "500.00")
		addPayment(t, st, d, "500.00", false)

		_, err := calc.RecomputeDebt(ctx, st, d.ID)
		require.NoError(t, err)

		got, err := calc.RecomputeSupplier(ctx, st, sup.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalDebt.IsZero())
		assert.Equal(t, model.SupplierStatusCompleted, got.Status)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		st := memory.New()
		_, err := calc.RecomputeSupplier(ctx, st, 42)
		assert.ErrorIs(t, err, ledger.ErrSupplierNotFound)
	})
}
