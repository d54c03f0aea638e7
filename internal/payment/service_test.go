package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/payment"
	"github.com/dcontreras/payables/internal/store"
	"github.com/dcontreras/payables/internal/store/memory"
)

// fakeFiles records deletions instead of touching the filesystem.
type fakeFiles struct {
	deleted []string
}

func (f *fakeFiles) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeFiles) Exists(name string) bool { return false }

type fixture struct {
	store   *memory.Memory
	files   *fakeFiles
	service *payment.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	fs := &fakeFiles{}
	svc := payment.NewService(st, ledger.NewCalculator(), fs, zerolog.Nop())
	return &fixture{store: st, files: fs, service: svc}
}

// seedDebt creates a supplier with one open debt of the given amount
// and returns both, with the supplier aggregate already consistent.
func (f *fixture) seedDebt(t *testing.T, initial string) (*model.Supplier, *model.Debt) {
	t.Helper()
	ctx := context.Background()

	sup := &model.Supplier{
		CompanyName: "Distribuidora Central",
		TaxID:       "J-98765432-1",
		Phone:       "+58 212 555 0199",
		Status:      model.SupplierStatusPending,
		TotalDebt:   decimal.RequireFromString(initial),
	}
	require.NoError(t, f.store.InsertSupplier(ctx, sup))
	return sup, f.seedDebtFor(t, sup, initial)
}

func (f *fixture) seedDebtFor(t *testing.T, sup *model.Supplier, initial string) *model.Debt {
	t.Helper()
	ctx := context.Background()

	amount := decimal.RequireFromString(initial)
	o := &model.Order{
		SupplierID:   sup.ID,
		Amount:       amount,
		DispatchDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CreditDays:   15,
		DueDate:      time.Date(2026, 5, 16, 0, 0, 0, 0, time.UTC),
		CreatedBy:    "tester",
	}
	require.NoError(t, f.store.InsertOrder(ctx, o))

	d := &model.Debt{
		OrderID:         o.ID,
		SupplierID:      sup.ID,
		InitialAmount:   amount,
		RemainingAmount: amount,
		Status:          model.DebtStatusPending,
		DueDate:         o.DueDate,
	}
	require.NoError(t, f.store.InsertDebt(ctx, d))
	return d
}

func createReq(d *model.Debt, amount string) *payment.CreatePaymentRequest {
	return &payment.CreatePaymentRequest{
		DebtID:      d.ID,
		SupplierID:  d.SupplierID,
		Amount:      decimal.RequireFromString(amount),
		Method:      "CASH",
		SenderName:  "Maria Lopez",
		PaymentDate: "2026-05-10",
	}
}

func strptr(s string) *string { return &s }

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("updates debt and supplier aggregates", func(t *testing.T) {
		f := newFixture(t)
		sup, d := f.seedDebt(t, "1000.00")

		p, err := f.service.Create(ctx, "maria", createReq(d, "400.00"))
		require.NoError(t, err)
		assert.Equal(t, "maria", p.CreatedBy)

		gotDebt, err := f.store.GetDebt(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, gotDebt.RemainingAmount.Equal(decimal.RequireFromString("600.00")))
		assert.Equal(t, model.DebtStatusPending, gotDebt.Status)

		gotSup, err := f.store.GetSupplier(ctx, sup.ID)
		require.NoError(t, err)
		assert.True(t, gotSup.TotalDebt.Equal(decimal.RequireFromString("600.00")))
		require.NotNil(t, gotSup.LastPaymentDate)
		assert.Equal(t, p.PaymentDate, *gotSup.LastPaymentDate)
	})

	t.Run("final payment settles debt and supplier", func(t *testing.T) {
		f := newFixture(t)
		sup, d := f.seedDebt(t, "1000.00")

		_, err := f.service.Create(ctx, "maria", createReq(d, "400.00"))
		require.NoError(t, err)
		_, err = f.service.Create(ctx, "maria", createReq(d, "600.00"))
		require.NoError(t, err)

		gotDebt, _ := f.store.GetDebt(ctx, d.ID)
		assert.True(t, gotDebt.RemainingAmount.IsZero())
		assert.Equal(t, model.DebtStatusPaid, gotDebt.Status)

		gotSup, _ := f.store.GetSupplier(ctx, sup.ID)
		assert.Equal(t, model.SupplierStatusCompleted, gotSup.Status)
	})

	t.Run("rejects overpayment with max allowed", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "1000.00")

		_, err := f.service.Create(ctx, "maria", createReq(d, "400.00"))
		require.NoError(t, err)

		_, err = f.service.Create(ctx, "maria", createReq(d, "600.01"))
		var opErr *ledger.OverpaymentError
		require.ErrorAs(t, err, &opErr)
		assert.True(t, opErr.MaxAllowed.Equal(decimal.RequireFromString("600.00")))

		// nothing was written
		gotDebt, _ := f.store.GetDebt(ctx, d.ID)
		assert.True(t, gotDebt.RemainingAmount.Equal(decimal.RequireFromString("600.00")))
	})

	t.Run("rejects payment to settled debt", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		_, err := f.service.Create(ctx, "maria", createReq(d, "500.00"))
		require.NoError(t, err)

		_, err = f.service.Create(ctx, "maria", createReq(d, "1.00"))
		assert.ErrorIs(t, err, ledger.ErrAlreadySettled)
	})

	t.Run("rejects supplier mismatch", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.SupplierID = d.SupplierID + 100
		_, err := f.service.Create(ctx, "maria", req)
		assert.ErrorIs(t, err, ledger.ErrSupplierMismatch)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		_, err := f.service.Create(ctx, "maria", createReq(d, "0.00"))
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})

	t.Run("rejects unknown debt", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.DebtID = 999
		_, err := f.service.Create(ctx, "maria", req)
		assert.ErrorIs(t, err, ledger.ErrDebtNotFound)
	})

	t.Run("rejects malformed payment date", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.PaymentDate = "10/05/2026"
		_, err := f.service.Create(ctx, "maria", req)
		assert.ErrorIs(t, err, ledger.ErrInvalidDate)
	})

	t.Run("electronic methods require confirmation", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.Method = "ZELLE"
		_, err := f.service.Create(ctx, "maria", req)
		assert.ErrorIs(t, err, ledger.ErrConfirmationRequired)

		// whitespace-only confirmation counts as missing
		req.ConfirmationNumber = strptr("   ")
		_, err = f.service.Create(ctx, "maria", req)
		assert.ErrorIs(t, err, ledger.ErrConfirmationRequired)

		req.ConfirmationNumber = strptr("ZL-1001")
		_, err = f.service.Create(ctx, "maria", req)
		assert.NoError(t, err)
	})

	t.Run("duplicate confirmation rejected across debts", func(t *testing.T) {
		f := newFixture(t)
		sup, d1 := f.seedDebt(t, "500.00")
		d2 := f.seedDebtFor(t, sup, "800.00")

		req1 := createReq(d1, "100.00")
		req1.Method = "TRANSFER"
		req1.ConfirmationNumber = strptr("TX-42")
		_, err := f.service.Create(ctx, "maria", req1)
		require.NoError(t, err)

		req2 := createReq(d2, "200.00")
		req2.Method = "TRANSFER"
		req2.ConfirmationNumber = strptr("TX-42")
		_, err = f.service.Create(ctx, "maria", req2)
		assert.ErrorIs(t, err, store.ErrDuplicateConfirmation)
	})
}

func TestUpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("amount change recomputes balances", func(t *testing.T) {
		f := newFixture(t)
		sup, d := f.seedDebt(t, "1000.00")

		p, err := f.service.Create(ctx, "maria", createReq(d, "400.00"))
		require.NoError(t, err)

		newAmount := decimal.RequireFromString("250.00")
		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{Amount: &newAmount})
		require.NoError(t, err)

		gotDebt, _ := f.store.GetDebt(ctx, d.ID)
		assert.True(t, gotDebt.RemainingAmount.Equal(decimal.RequireFromString("750.00")))
		gotSup, _ := f.store.GetSupplier(ctx, sup.ID)
		assert.True(t, gotSup.TotalDebt.Equal(decimal.RequireFromString("750.00")))
	})

	t.Run("own amount does not count against the bound", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "1000.00")

		p, err := f.service.Create(ctx, "maria", createReq(d, "400.00"))
		require.NoError(t, err)
		_, err = f.service.Create(ctx, "maria", createReq(d, "300.00"))
		require.NoError(t, err)

		// 1000 - 300 (the other payment) = 700 is the ceiling
		ok := decimal.RequireFromString("700.00")
		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{Amount: &ok})
		require.NoError(t, err)

		over := decimal.RequireFromString("700.01")
		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{Amount: &over})
		var opErr *ledger.OverpaymentError
		require.ErrorAs(t, err, &opErr)
		assert.True(t, opErr.MaxAllowed.Equal(ok))
	})

	t.Run("moving to another debt recomputes both sides", func(t *testing.T) {
		f := newFixture(t)
		sup, d1 := f.seedDebt(t, "500.00")
		d2 := f.seedDebtFor(t, sup, "800.00")

		p, err := f.service.Create(ctx, "maria", createReq(d1, "200.00"))
		require.NoError(t, err)

		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{DebtID: &d2.ID})
		require.NoError(t, err)

		got1, _ := f.store.GetDebt(ctx, d1.ID)
		assert.True(t, got1.RemainingAmount.Equal(decimal.RequireFromString("500.00")))
		got2, _ := f.store.GetDebt(ctx, d2.ID)
		assert.True(t, got2.RemainingAmount.Equal(decimal.RequireFromString("600.00")))
	})

	t.Run("move bounded by target debt", func(t *testing.T) {
		f := newFixture(t)
		sup, d1 := f.seedDebt(t, "500.00")
		d2 := f.seedDebtFor(t, sup, "100.00")

		p, err := f.service.Create(ctx, "maria", createReq(d1, "200.00"))
		require.NoError(t, err)

		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{DebtID: &d2.ID})
		var opErr *ledger.OverpaymentError
		require.ErrorAs(t, err, &opErr)
		assert.True(t, opErr.MaxAllowed.Equal(decimal.RequireFromString("100.00")))

		// rolled back: the payment still counts against the old debt
		got1, _ := f.store.GetDebt(ctx, d1.ID)
		assert.True(t, got1.RemainingAmount.Equal(decimal.RequireFromString("300.00")))
	})

	t.Run("replaced receipts are deleted after commit", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.ReceiptFileNames = []string{"a.png", "b.png"}
		p, err := f.service.Create(ctx, "maria", req)
		require.NoError(t, err)

		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{
			ReceiptFileNames: []string{"b.png", "c.png"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.png"}, f.files.deleted)
	})

	t.Run("orphans survive a failed transaction", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.ReceiptFileNames = []string{"a.png"}
		p, err := f.service.Create(ctx, "maria", req)
		require.NoError(t, err)

		bad := decimal.RequireFromString("9999.00")
		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{
			ReceiptFileNames: []string{},
			Amount:           &bad,
		})
		require.Error(t, err)
		assert.Empty(t, f.files.deleted)
	})

	t.Run("deleted payment cannot be edited", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		p, err := f.service.Create(ctx, "maria", createReq(d, "100.00"))
		require.NoError(t, err)
		_, err = f.service.SoftDelete(ctx, "admin", p.ID, nil)
		require.NoError(t, err)

		amount := decimal.RequireFromString("50.00")
		_, err = f.service.Update(ctx, p.ID, &payment.UpdatePaymentRequest{Amount: &amount})
		assert.ErrorIs(t, err, ledger.ErrAlreadyDeleted)
	})
}

func TestSoftDeletePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("restores balance and keeps the row", func(t *testing.T) {
		f := newFixture(t)
		sup, d := f.seedDebt(t, "500.00")

		p, err := f.service.Create(ctx, "maria", createReq(d, "500.00"))
		require.NoError(t, err)

		gotDebt, _ := f.store.GetDebt(ctx, d.ID)
		require.Equal(t, model.DebtStatusPaid, gotDebt.Status)

		reason := "wrong supplier"
		deleted, err := f.service.SoftDelete(ctx, "admin", p.ID, &reason)
		require.NoError(t, err)
		require.NotNil(t, deleted.DeletedAt)
		assert.Equal(t, "admin", *deleted.DeletedBy)
		assert.Equal(t, reason, *deleted.DeletionReason)

		gotDebt, _ = f.store.GetDebt(ctx, d.ID)
		assert.True(t, gotDebt.RemainingAmount.Equal(decimal.RequireFromString("500.00")))
		assert.Equal(t, model.DebtStatusPending, gotDebt.Status)

		gotSup, _ := f.store.GetSupplier(ctx, sup.ID)
		assert.Equal(t, model.SupplierStatusPending, gotSup.Status)

		// audit row still fetchable
		got, err := f.service.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.Active())
	})

	t.Run("second delete rejected", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		p, err := f.service.Create(ctx, "maria", createReq(d, "100.00"))
		require.NoError(t, err)

		_, err = f.service.SoftDelete(ctx, "admin", p.ID, nil)
		require.NoError(t, err)
		_, err = f.service.SoftDelete(ctx, "admin", p.ID, nil)
		assert.ErrorIs(t, err, ledger.ErrAlreadyDeleted)
	})

	t.Run("frees the confirmation number for reuse", func(t *testing.T) {
		f := newFixture(t)
		_, d := f.seedDebt(t, "500.00")

		req := createReq(d, "100.00")
		req.Method = "ZELLE"
		req.ConfirmationNumber = strptr("ZL-7")
		p, err := f.service.Create(ctx, "maria", req)
		require.NoError(t, err)

		_, err = f.service.SoftDelete(ctx, "admin", p.ID, nil)
		require.NoError(t, err)

		// the tombstone no longer blocks the number
		_, err = f.service.Create(ctx, "maria", req)
		assert.NoError(t, err)
	})
}

func TestConcurrentCreatesNeverOverpay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, d := f.seedDebt(t, "1000.00")

	// 20 workers race 150.00 payments against a 1000.00 debt; at most
	// six can commit before the balance check rejects the rest.
	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.service.Create(ctx, "maria", createReq(d, "150.00"))
		}()
	}
	wg.Wait()

	committed, err := f.store.ListActivePaymentsForDebt(ctx, d.ID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, p := range committed {
		total = total.Add(p.Amount)
	}
	assert.True(t, total.LessThanOrEqual(d.InitialAmount),
		"committed %s against principal %s", total, d.InitialAmount)
	assert.Len(t, committed, 6)

	gotDebt, err := f.store.GetDebt(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, gotDebt.RemainingAmount.Equal(d.InitialAmount.Sub(total)))
}

func TestMarkShared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, d := f.seedDebt(t, "500.00")

	p, err := f.service.Create(ctx, "maria", createReq(d, "100.00"))
	require.NoError(t, err)

	first, err := f.service.MarkShared(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, first.Shared)
	require.NotNil(t, first.SharedAt)

	second, err := f.service.MarkShared(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.SharedAt, second.SharedAt)
}
