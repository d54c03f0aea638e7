package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

const supplierColumns = `id, company_name, tax_id, phone, contact_name, email, total_debt, status, last_payment_date, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (*model.Supplier, error) {
	s := &model.Supplier{}
	err := row.Scan(
		&s.ID,
		&s.CompanyName,
		&s.TaxID,
		&s.Phone,
		&s.ContactName,
		&s.Email,
		&s.TotalDebt,
		&s.Status,
		&s.LastPaymentDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSupplier retrieves a supplier by ID; (nil, nil) when absent.
func (st *Store) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

	s, err := scanSupplier(st.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return s, nil
}

// GetSupplierByTaxID retrieves a supplier by tax ID; (nil, nil) when absent.
func (st *Store) GetSupplierByTaxID(ctx context.Context, taxID string) (*model.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE tax_id = $1`

	s, err := scanSupplier(st.q.QueryRowContext(ctx, query, taxID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get supplier by tax id: %w", err)
	}
	return s, nil
}

// ListSuppliers retrieves suppliers with an optional status filter.
func (st *Store) ListSuppliers(ctx context.Context, filter store.SupplierFilter) ([]*model.Supplier, int, error) {
	where := ``
	args := []any{}
	if filter.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM suppliers` + where
	if err := st.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count suppliers: %w", err)
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers` + where +
		fmt.Sprintf(` ORDER BY company_name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := st.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*model.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return suppliers, total, nil
}

// InsertSupplier inserts a new supplier, filling generated fields.
func (st *Store) InsertSupplier(ctx context.Context, s *model.Supplier) error {
	query := `
		INSERT INTO suppliers (company_name, tax_id, phone, contact_name, email, total_debt, status, last_payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		s.CompanyName, s.TaxID, s.Phone, s.ContactName, s.Email, s.TotalDebt, s.Status, s.LastPaymentDate,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert supplier: %w", mapSupplierError(err))
	}
	return nil
}

// UpdateSupplier persists all mutable supplier fields.
func (st *Store) UpdateSupplier(ctx context.Context, s *model.Supplier) error {
	query := `
		UPDATE suppliers
		SET company_name = $2, tax_id = $3, phone = $4, contact_name = $5, email = $6,
		    total_debt = $7, status = $8, last_payment_date = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := st.q.QueryRowContext(ctx, query,
		s.ID, s.CompanyName, s.TaxID, s.Phone, s.ContactName, s.Email, s.TotalDebt, s.Status, s.LastPaymentDate,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", mapSupplierError(err))
	}
	return nil
}
