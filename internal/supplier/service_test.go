package supplier_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store/memory"
	"github.com/dcontreras/payables/internal/supplier"
)

func newService(t *testing.T) (*supplier.Service, *memory.Memory) {
	t.Helper()
	st := memory.New()
	return supplier.NewService(st, ledger.NewCalculator()), st
}

func decptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateSupplier(t *testing.T) {
	ctx := context.Background()

	t.Run("starts with zero debt", func(t *testing.T) {
		svc, _ := newService(t)

		sup, err := svc.Create(ctx, "carlos", &supplier.CreateSupplierRequest{
			CompanyName: "Alimentos Delta",
			TaxID:       "J-40100200-3",
			Phone:       "+58 212 555 0103",
		})
		require.NoError(t, err)
		assert.True(t, sup.TotalDebt.IsZero())
		assert.Equal(t, model.SupplierStatusCompleted, sup.Status)
	})

	t.Run("opening balance synthesizes an order and debt", func(t *testing.T) {
		svc, st := newService(t)

		sup, err := svc.Create(ctx, "carlos", &supplier.CreateSupplierRequest{
			CompanyName:    "Alimentos Delta",
			TaxID:          "J-40100200-3",
			Phone:          "+58 212 555 0103",
			OpeningBalance: decptr("2500.00"),
		})
		require.NoError(t, err)
		assert.True(t, sup.TotalDebt.Equal(decimal.RequireFromString("2500.00")))
		assert.Equal(t, model.SupplierStatusPending, sup.Status)

		debts, err := st.ListDebtsForSupplier(ctx, sup.ID)
		require.NoError(t, err)
		require.Len(t, debts, 1)
		assert.True(t, debts[0].InitialAmount.Equal(decimal.RequireFromString("2500.00")))
		require.NotNil(t, debts[0].Title)
		assert.Equal(t, "Saldo inicial", *debts[0].Title)

		o, err := st.GetOrder(ctx, debts[0].OrderID)
		require.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, 0, o.CreditDays)
	})

	t.Run("rejects non-positive opening balance", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Create(ctx, "carlos", &supplier.CreateSupplierRequest{
			CompanyName:    "Alimentos Delta",
			TaxID:          "J-40100200-3",
			Phone:          "+58 212 555 0103",
			OpeningBalance: decptr("0"),
		})
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})

	t.Run("rejects duplicate tax id", func(t *testing.T) {
		svc, _ := newService(t)
		req := &supplier.CreateSupplierRequest{
			CompanyName: "Alimentos Delta",
			TaxID:       "J-40100200-3",
			Phone:       "+58 212 555 0103",
		}
		_, err := svc.Create(ctx, "carlos", req)
		require.NoError(t, err)

		_, err = svc.Create(ctx, "carlos", req)
		assert.ErrorIs(t, err, supplier.ErrTaxIDAlreadyInUse)
	})
}

func TestListSuppliers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for i, tc := range []struct {
		name    string
		taxID   string
		balance *decimal.Decimal
	}{
		{"Alimentos Delta", "J-1", decptr("100.00")},
		{"Importadora Sur", "J-2", nil},
		{"Proveeduria Andina", "J-3", decptr("50.00")},
	} {
		_, err := svc.Create(ctx, "carlos", &supplier.CreateSupplierRequest{
			CompanyName:    tc.name,
			TaxID:          tc.taxID,
			Phone:          "+58 212 555 010" + string(rune('0'+i)),
			OpeningBalance: tc.balance,
		})
		require.NoError(t, err)
	}

	all, total, err := svc.List(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	pending, total, err := svc.List(ctx, model.SupplierStatusPending, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, pending, 2)

	// pagination
	page, total, err := svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}

func TestListDebts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	sup, err := svc.Create(ctx, "carlos", &supplier.CreateSupplierRequest{
		CompanyName:    "Alimentos Delta",
		TaxID:          "J-40100200-3",
		Phone:          "+58 212 555 0103",
		OpeningBalance: decptr("300.00"),
	})
	require.NoError(t, err)

	debts, err := svc.ListDebts(ctx, sup.ID)
	require.NoError(t, err)
	assert.Len(t, debts, 1)

	_, err = svc.ListDebts(ctx, sup.ID+10)
	assert.ErrorIs(t, err, ledger.ErrSupplierNotFound)
}
