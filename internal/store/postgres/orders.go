package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dcontreras/payables/internal/model"
)

const orderColumns = `id, supplier_id, amount, dispatch_date, credit_days, due_date, title, created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID,
		&o.SupplierID,
		&o.Amount,
		&o.DispatchDate,
		&o.CreditDays,
		&o.DueDate,
		&o.Title,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder retrieves an order by ID; (nil, nil) when absent.
func (st *Store) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(st.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// InsertOrder inserts a new order, filling generated fields.
func (st *Store) InsertOrder(ctx context.Context, o *model.Order) error {
	query := `
		INSERT INTO orders (supplier_id, amount, dispatch_date, credit_days, due_date, title, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		o.SupplierID, o.Amount, o.DispatchDate, o.CreditDays, o.DueDate, o.Title, o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// UpdateOrder persists all mutable order fields.
func (st *Store) UpdateOrder(ctx context.Context, o *model.Order) error {
	query := `
		UPDATE orders
		SET amount = $2, dispatch_date = $3, credit_days = $4, due_date = $5, title = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		o.ID, o.Amount, o.DispatchDate, o.CreditDays, o.DueDate, o.Title,
	).Scan(&o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}
