package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/dcontreras/payables/internal/model"
)

const paymentColumns = `id, debt_id, supplier_id, amount, payment_method, sender_name, sender_email,
	confirmation_number, payment_date, exchange_rate, amount_in_bolivares, receipt_file_names,
	verified, shared, shared_at, created_by, created_at, updated_at, deleted_at, deleted_by, deletion_reason`

func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	p := &model.Payment{}
	err := row.Scan(
		&p.ID,
		&p.DebtID,
		&p.SupplierID,
		&p.Amount,
		&p.Method,
		&p.SenderName,
		&p.SenderEmail,
		&p.ConfirmationNumber,
		&p.PaymentDate,
		&p.ExchangeRate,
		&p.AmountInBolivares,
		(*pq.StringArray)(&p.ReceiptFileNames),
		&p.Verified,
		&p.Shared,
		&p.SharedAt,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
		&p.DeletedBy,
		&p.DeletionReason,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPayment retrieves a payment by ID regardless of deletion state;
// (nil, nil) when absent.
func (st *Store) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(st.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListActivePaymentsForDebt retrieves the debt's non-deleted payments.
func (st *Store) ListActivePaymentsForDebt(ctx context.Context, debtID int64) ([]*model.Payment, error) {
	return st.ListPaymentsForDebt(ctx, debtID, false)
}

// ListPaymentsForDebt retrieves the debt's payments, optionally
// including soft-deleted rows.
func (st *Store) ListPaymentsForDebt(ctx context.Context, debtID int64, includeDeleted bool) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE debt_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY id`

	rows, err := st.q.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

// FindActivePaymentByConfirmation looks up an active payment holding
// the given confirmation number, skipping excludeID when non-zero.
func (st *Store) FindActivePaymentByConfirmation(ctx context.Context, confirmation string, excludeID int64) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE deleted_at IS NULL
		  AND TRIM(confirmation_number) = $1
		  AND id <> $2
		LIMIT 1
	`

	p, err := scanPayment(st.q.QueryRowContext(ctx, query, confirmation, excludeID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment by confirmation: %w", err)
	}
	return p, nil
}

// InsertPayment inserts a new payment, filling generated fields. A
// confirmation-number collision with another active payment surfaces
// as store.ErrDuplicateConfirmation.
func (st *Store) InsertPayment(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (debt_id, supplier_id, amount, payment_method, sender_name, sender_email,
			confirmation_number, payment_date, exchange_rate, amount_in_bolivares, receipt_file_names,
			verified, shared, shared_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		p.DebtID, p.SupplierID, p.Amount, p.Method, p.SenderName, p.SenderEmail,
		p.ConfirmationNumber, p.PaymentDate, p.ExchangeRate, p.AmountInBolivares,
		pq.StringArray(p.ReceiptFileNames), p.Verified, p.Shared, p.SharedAt, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", mapPaymentError(err))
	}
	return nil
}

// UpdatePayment persists all mutable payment fields, including the
// soft-delete marker.
func (st *Store) UpdatePayment(ctx context.Context, p *model.Payment) error {
	query := `
		UPDATE payments
		SET debt_id = $2, supplier_id = $3, amount = $4, payment_method = $5, sender_name = $6,
		    sender_email = $7, confirmation_number = $8, payment_date = $9, exchange_rate = $10,
		    amount_in_bolivares = $11, receipt_file_names = $12, verified = $13, shared = $14,
		    shared_at = $15, deleted_at = $16, deleted_by = $17, deletion_reason = $18, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		p.ID, p.DebtID, p.SupplierID, p.Amount, p.Method, p.SenderName,
		p.SenderEmail, p.ConfirmationNumber, p.PaymentDate, p.ExchangeRate,
		p.AmountInBolivares, pq.StringArray(p.ReceiptFileNames), p.Verified, p.Shared,
		p.SharedAt, p.DeletedAt, p.DeletedBy, p.DeletionReason,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", mapPaymentError(err))
	}
	return nil
}
