package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierStatus represents the payable status of a supplier
type SupplierStatus string

const (
	SupplierStatusPending   SupplierStatus = "PENDING"   // has outstanding debt
	SupplierStatusCompleted SupplierStatus = "COMPLETED" // fully paid up
)

// Supplier represents a counterparty the business owes money to.
// TotalDebt and Status are derived aggregates owned by the ledger
// calculator; nothing else writes them.
type Supplier struct {
	ID              int64           `json:"id"`
	CompanyName     string          `json:"company_name"`
	TaxID           string          `json:"tax_id"`
	Phone           string          `json:"phone"`
	ContactName     *string         `json:"contact_name,omitempty"`
	Email           *string         `json:"email,omitempty"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	Status          SupplierStatus  `json:"status"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
