package payment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/files"
	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

// Service orchestrates the payment lifecycle: none -> active ->
// deleted (terminal, no resurrection). Every mutation commits the
// payment row together with the recomputed debt and supplier
// aggregates, or not at all.
type Service struct {
	store store.Store
	calc  ledger.Recomputer
	files files.Store
	log   zerolog.Logger
}

// NewService creates a new payment service
func NewService(st store.Store, calc ledger.Recomputer, fs files.Store, log zerolog.Logger) *Service {
	return &Service{store: st, calc: calc, files: fs, log: log}
}

// Create records a payment against a debt. The validation ladder runs
// before any write; the insert, debt recomputation, supplier
// recomputation and last-payment-date update form one transaction.
func (s *Service) Create(ctx context.Context, actor string, req *CreatePaymentRequest) (*model.Payment, error) {
	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		return nil, ledger.ErrInvalidDate
	}

	amount := req.Amount.Round(2)
	method := model.PaymentMethod(req.Method)
	confirmation := trimmedOrNil(req.ConfirmationNumber)

	var created *model.Payment
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		debt, err := tx.GetDebt(ctx, req.DebtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return ledger.ErrDebtNotFound
		}
		if debt.SupplierID != req.SupplierID {
			return ledger.ErrSupplierMismatch
		}
		if amount.Sign() <= 0 {
			return ledger.ErrInvalidAmount
		}
		if debt.Settled() {
			return ledger.ErrAlreadySettled
		}
		if amount.GreaterThan(debt.RemainingAmount) {
			return &ledger.OverpaymentError{MaxAllowed: debt.RemainingAmount}
		}
		if method.RequiresConfirmation() && confirmation == nil {
			return ledger.ErrConfirmationRequired
		}
		// Pre-flight duplicate check; the store's unique constraint on
		// active rows remains the authoritative guard.
		if confirmation != nil {
			existing, err := tx.FindActivePaymentByConfirmation(ctx, *confirmation, 0)
			if err != nil {
				return err
			}
			if existing != nil {
				return store.ErrDuplicateConfirmation
			}
		}

		p := &model.Payment{
			DebtID:             req.DebtID,
			SupplierID:         req.SupplierID,
			Amount:             amount,
			Method:             method,
			SenderName:         req.SenderName,
			SenderEmail:        req.SenderEmail,
			ConfirmationNumber: confirmation,
			PaymentDate:        paymentDate,
			ExchangeRate:       req.ExchangeRate,
			AmountInBolivares:  roundOrNil(req.AmountInBolivares),
			ReceiptFileNames:   req.ReceiptFileNames,
			CreatedBy:          actor,
		}
		if err := tx.InsertPayment(ctx, p); err != nil {
			return err
		}

		if _, err := s.calc.RecomputeDebt(ctx, tx, p.DebtID); err != nil {
			return err
		}
		sup, err := s.calc.RecomputeSupplier(ctx, tx, p.SupplierID)
		if err != nil {
			return err
		}

		sup.LastPaymentDate = &p.PaymentDate
		if err := tx.UpdateSupplier(ctx, sup); err != nil {
			return err
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a payment by its ID, including soft-deleted rows
// (audit history stays fetchable).
func (s *Service) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ledger.ErrPaymentNotFound
	}
	return p, nil
}

// Update edits an active payment. Moving it to another debt releases
// the amount on the old debt and claims it on the new one; both sides
// (and both suppliers, when they differ) are recomputed after the row
// is durably updated. Replaced receipt files are deleted best-effort
// after the transaction commits.
func (s *Service) Update(ctx context.Context, paymentID int64, req *UpdatePaymentRequest) (*model.Payment, error) {
	var newPaymentDate *time.Time
	if req.PaymentDate != nil {
		parsed, err := time.Parse(dateLayout, *req.PaymentDate)
		if err != nil {
			return nil, ledger.ErrInvalidDate
		}
		newPaymentDate = &parsed
	}

	var updated *model.Payment
	var orphans []string
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		orphans = nil

		p, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return ledger.ErrPaymentNotFound
		}
		if !p.Active() {
			return ledger.ErrAlreadyDeleted
		}

		oldDebtID := p.DebtID
		oldSupplierID := p.SupplierID

		targetDebtID := p.DebtID
		if req.DebtID != nil {
			targetDebtID = *req.DebtID
		}
		targetDebt, err := tx.GetDebt(ctx, targetDebtID)
		if err != nil {
			return err
		}
		if targetDebt == nil {
			return ledger.ErrDebtNotFound
		}
		if req.SupplierID != nil && *req.SupplierID != targetDebt.SupplierID {
			return ledger.ErrSupplierMismatch
		}

		newAmount := p.Amount
		if req.Amount != nil {
			newAmount = req.Amount.Round(2)
		}
		if newAmount.Sign() <= 0 {
			return ledger.ErrInvalidAmount
		}

		// Bound against the other active payments of the target debt:
		// the payment's own current amount never counts against itself.
		others, err := tx.ListActivePaymentsForDebt(ctx, targetDebtID)
		if err != nil {
			return err
		}
		maxAllowed := targetDebt.InitialAmount
		for _, other := range others {
			if other.ID == p.ID {
				continue
			}
			maxAllowed = maxAllowed.Sub(other.Amount)
		}
		if newAmount.GreaterThan(maxAllowed) {
			return &ledger.OverpaymentError{MaxAllowed: maxAllowed}
		}

		method := p.Method
		if req.Method != nil {
			method = model.PaymentMethod(*req.Method)
		}
		confirmation := p.ConfirmationNumber
		if req.ConfirmationNumber != nil {
			confirmation = trimmedOrNil(req.ConfirmationNumber)
		}
		if method.RequiresConfirmation() && confirmation == nil {
			return ledger.ErrConfirmationRequired
		}
		if req.ConfirmationNumber != nil && confirmation != nil {
			existing, err := tx.FindActivePaymentByConfirmation(ctx, *confirmation, p.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return store.ErrDuplicateConfirmation
			}
		}

		if req.ReceiptFileNames != nil {
			orphans = missingFrom(p.ReceiptFileNames, req.ReceiptFileNames)
			p.ReceiptFileNames = req.ReceiptFileNames
		}

		p.DebtID = targetDebtID
		p.SupplierID = targetDebt.SupplierID
		p.Amount = newAmount
		p.Method = method
		p.ConfirmationNumber = confirmation
		if req.SenderName != nil {
			p.SenderName = *req.SenderName
		}
		if req.SenderEmail != nil {
			p.SenderEmail = trimmedOrNil(req.SenderEmail)
		}
		if newPaymentDate != nil {
			p.PaymentDate = *newPaymentDate
		}
		if req.ExchangeRate != nil {
			p.ExchangeRate = req.ExchangeRate
		}
		if req.AmountInBolivares != nil {
			p.AmountInBolivares = roundOrNil(req.AmountInBolivares)
		}
		if req.Verified != nil {
			p.Verified = *req.Verified
		}

		if err := tx.UpdatePayment(ctx, p); err != nil {
			return err
		}

		// Aggregates are recomputed only after the row is durably
		// updated: old debt first (releases the amount), then the new
		// one (claims it).
		if _, err := s.calc.RecomputeDebt(ctx, tx, oldDebtID); err != nil {
			return err
		}
		if targetDebtID != oldDebtID {
			if _, err := s.calc.RecomputeDebt(ctx, tx, targetDebtID); err != nil {
				return err
			}
		}
		if _, err := s.calc.RecomputeSupplier(ctx, tx, oldSupplierID); err != nil {
			return err
		}
		if targetDebt.SupplierID != oldSupplierID {
			if _, err := s.calc.RecomputeSupplier(ctx, tx, targetDebt.SupplierID); err != nil {
				return err
			}
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteOrphans(orphans)
	return updated, nil
}

// SoftDelete retracts a payment. The row is kept for audit but stops
// counting toward its debt, whose balance (and the supplier's total)
// is recomputed in the same transaction.
func (s *Service) SoftDelete(ctx context.Context, actor string, paymentID int64, reason *string) (*model.Payment, error) {
	var deleted *model.Payment
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		p, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return ledger.ErrPaymentNotFound
		}
		if !p.Active() {
			return ledger.ErrAlreadyDeleted
		}

		now := time.Now().UTC()
		p.DeletedAt = &now
		p.DeletedBy = &actor
		p.DeletionReason = reason
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return err
		}

		if _, err := s.calc.RecomputeDebt(ctx, tx, p.DebtID); err != nil {
			return err
		}
		if _, err := s.calc.RecomputeSupplier(ctx, tx, p.SupplierID); err != nil {
			return err
		}

		deleted = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// MarkShared stamps shared/shared_at the first time a payment is
// shared; later calls are no-ops.
func (s *Service) MarkShared(ctx context.Context, paymentID int64) (*model.Payment, error) {
	var shared *model.Payment
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		p, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return ledger.ErrPaymentNotFound
		}
		if !p.Active() {
			return ledger.ErrAlreadyDeleted
		}

		if !p.Shared {
			now := time.Now().UTC()
			p.Shared = true
			p.SharedAt = &now
			if err := tx.UpdatePayment(ctx, p); err != nil {
				return err
			}
		}

		shared = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shared, nil
}

// deleteOrphans removes replaced receipt files. Best-effort: a failure
// is logged, never surfaced as a ledger error.
func (s *Service) deleteOrphans(names []string) {
	for _, name := range names {
		if err := s.files.Delete(name); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("failed to delete orphaned receipt")
		}
	}
}

// missingFrom returns the entries of old that do not appear in new.
func missingFrom(old, new []string) []string {
	kept := make(map[string]bool, len(new))
	for _, name := range new {
		kept[name] = true
	}
	var missing []string
	for _, name := range old {
		if !kept[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func roundOrNil(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	rounded := d.Round(2)
	return &rounded
}
