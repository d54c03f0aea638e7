package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dcontreras/payables/internal/model"
)

const debtColumns = `id, order_id, supplier_id, initial_amount, remaining_amount, status, due_date, title, created_at, updated_at`

func scanDebt(row interface{ Scan(...any) error }) (*model.Debt, error) {
	d := &model.Debt{}
	err := row.Scan(
		&d.ID,
		&d.OrderID,
		&d.SupplierID,
		&d.InitialAmount,
		&d.RemainingAmount,
		&d.Status,
		&d.DueDate,
		&d.Title,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDebt retrieves a debt by ID; (nil, nil) when absent.
func (st *Store) GetDebt(ctx context.Context, id int64) (*model.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1`

	d, err := scanDebt(st.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return d, nil
}

// GetDebtByOrderID retrieves the debt linked 1:1 to an order.
func (st *Store) GetDebtByOrderID(ctx context.Context, orderID int64) (*model.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE order_id = $1`

	d, err := scanDebt(st.q.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get debt by order: %w", err)
	}
	return d, nil
}

// ListDebtsForSupplier retrieves all debts belonging to a supplier.
func (st *Store) ListDebtsForSupplier(ctx context.Context, supplierID int64) ([]*model.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE supplier_id = $1 ORDER BY id`

	rows, err := st.q.QueryContext(ctx, query, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []*model.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}

	return debts, nil
}

// InsertDebt inserts a new debt, filling generated fields.
func (st *Store) InsertDebt(ctx context.Context, d *model.Debt) error {
	query := `
		INSERT INTO debts (order_id, supplier_id, initial_amount, remaining_amount, status, due_date, title)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		d.OrderID, d.SupplierID, d.InitialAmount, d.RemainingAmount, d.Status, d.DueDate, d.Title,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

// UpdateDebt persists all mutable debt fields.
func (st *Store) UpdateDebt(ctx context.Context, d *model.Debt) error {
	query := `
		UPDATE debts
		SET initial_amount = $2, remaining_amount = $3, status = $4, due_date = $5, title = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		d.ID, d.InitialAmount, d.RemainingAmount, d.Status, d.DueDate, d.Title,
	).Scan(&d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return nil
}
