package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
	"github.com/dcontreras/payables/internal/store/memory"
)

func newSupplier() *model.Supplier {
	return &model.Supplier{
		CompanyName: "Acme Foods",
		TaxID:       "J-12345678-9",
		Phone:       "+58 212 555 0100",
		Status:      model.SupplierStatusCompleted,
		TotalDebt:   decimal.Zero,
	}
}

func newPayment(debtID, supplierID int64, confirmation string) *model.Payment {
	p := &model.Payment{
		DebtID:      debtID,
		SupplierID:  supplierID,
		Amount:      decimal.RequireFromString("100.00"),
		Method:      model.PaymentMethodTransfer,
		SenderName:  "Maria",
		PaymentDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "maria",
	}
	if confirmation != "" {
		p.ConfirmationNumber = &confirmation
	}
	return p
}

func TestWithinTxRollback(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	sup := newSupplier()
	require.NoError(t, st.InsertSupplier(ctx, sup))

	boom := errors.New("boom")
	err := st.WithinTx(ctx, func(tx store.Store) error {
		other := newSupplier()
		other.TaxID = "J-0"
		if err := tx.InsertSupplier(ctx, other); err != nil {
			return err
		}
		sup.CompanyName = "Renamed"
		if err := tx.UpdateSupplier(ctx, sup); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// both writes rolled back
	got, err := st.GetSupplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Foods", got.CompanyName)

	_, total, err := st.ListSuppliers(ctx, store.SupplierFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestWithinTxCommit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	err := st.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.InsertSupplier(ctx, newSupplier()); err != nil {
			return err
		}
		// nested call joins the open transaction
		return tx.WithinTx(ctx, func(inner store.Store) error {
			s := newSupplier()
			s.TaxID = "J-0"
			return inner.InsertSupplier(ctx, s)
		})
	})
	require.NoError(t, err)

	_, total, err := st.ListSuppliers(ctx, store.SupplierFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestWithinTxConcurrentReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	sup := newSupplier()
	require.NoError(t, st.InsertSupplier(ctx, sup))

	// Each worker runs a full read-validate-write sequence; without the
	// transaction serializing them, increments would be lost.
	const workers = 50
	one := decimal.New(1, 0)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.WithinTx(ctx, func(tx store.Store) error {
				s, err := tx.GetSupplier(ctx, sup.ID)
				if err != nil {
					return err
				}
				s.TotalDebt = s.TotalDebt.Add(one)
				return tx.UpdateSupplier(ctx, s)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := st.GetSupplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalDebt.Equal(decimal.New(workers, 0)))
}

func TestGettersReturnNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	sup, err := st.GetSupplier(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, sup)

	d, err := st.GetDebt(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, d)

	p, err := st.GetPayment(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRowsAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	sup := newSupplier()
	require.NoError(t, st.InsertSupplier(ctx, sup))

	got, err := st.GetSupplier(ctx, sup.ID)
	require.NoError(t, err)
	got.CompanyName = "Mutated"

	again, err := st.GetSupplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Foods", again.CompanyName)
}

func TestConfirmationUniqueness(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	require.NoError(t, st.InsertPayment(ctx, newPayment(1, 1, "TX-1")))

	t.Run("insert conflicts with active row", func(t *testing.T) {
		err := st.InsertPayment(ctx, newPayment(2, 1, "TX-1"))
		assert.ErrorIs(t, err, store.ErrDuplicateConfirmation)
	})

	t.Run("update conflicts with active row", func(t *testing.T) {
		p := newPayment(2, 1, "TX-2")
		require.NoError(t, st.InsertPayment(ctx, p))

		conf := "TX-1"
		p.ConfirmationNumber = &conf
		err := st.UpdatePayment(ctx, p)
		assert.ErrorIs(t, err, store.ErrDuplicateConfirmation)
	})

	t.Run("deleted rows do not block", func(t *testing.T) {
		first, err := st.FindActivePaymentByConfirmation(ctx, "TX-1", 0)
		require.NoError(t, err)
		require.NotNil(t, first)

		now := time.Now().UTC()
		first.DeletedAt = &now
		require.NoError(t, st.UpdatePayment(ctx, first))

		err = st.InsertPayment(ctx, newPayment(3, 1, "TX-1"))
		assert.NoError(t, err)
	})
}

func TestTaxIDUniqueness(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	first := newSupplier()
	require.NoError(t, st.InsertSupplier(ctx, first))

	t.Run("insert conflicts", func(t *testing.T) {
		err := st.InsertSupplier(ctx, newSupplier())
		assert.ErrorIs(t, err, store.ErrDuplicateTaxID)
	})

	t.Run("update conflicts", func(t *testing.T) {
		other := newSupplier()
		other.TaxID = "J-0"
		require.NoError(t, st.InsertSupplier(ctx, other))

		other.TaxID = first.TaxID
		err := st.UpdateSupplier(ctx, other)
		assert.ErrorIs(t, err, store.ErrDuplicateTaxID)
	})

	t.Run("updating own row is fine", func(t *testing.T) {
		first.Phone = "+58 212 555 0177"
		assert.NoError(t, st.UpdateSupplier(ctx, first))
	})
}

func TestFindActivePaymentByConfirmation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	p := newPayment(1, 1, "TX-9")
	require.NoError(t, st.InsertPayment(ctx, p))

	found, err := st.FindActivePaymentByConfirmation(ctx, "TX-9", 0)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)

	// excluding the row itself finds nothing
	found, err = st.FindActivePaymentByConfirmation(ctx, "TX-9", p.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListPaymentsForDebt(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	require.NoError(t, st.InsertPayment(ctx, newPayment(1, 1, "TX-1")))
	deleted := newPayment(1, 1, "")
	now := time.Now().UTC()
	deleted.DeletedAt = &now
	require.NoError(t, st.InsertPayment(ctx, deleted))
	require.NoError(t, st.InsertPayment(ctx, newPayment(2, 1, "")))

	active, err := st.ListActivePaymentsForDebt(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := st.ListPaymentsForDebt(ctx, 1, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
