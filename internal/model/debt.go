package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus represents the status of a debt
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "PENDING"
	DebtStatusPaid    DebtStatus = "PAID"

	// Declared for wire compatibility; the status calculator only ever
	// assigns PENDING or PAID.
	DebtStatusPartiallyPaid DebtStatus = "PARTIALLY_PAID"
	DebtStatusOverdue       DebtStatus = "OVERDUE"
)

// Debt is the payable obligation derived 1:1 from an Order.
// RemainingAmount and Status are derived by the ledger calculator from
// the debt's active payments; nothing else writes them.
type Debt struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	SupplierID      int64           `json:"supplier_id"`
	InitialAmount   decimal.Decimal `json:"initial_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          DebtStatus      `json:"status"`
	DueDate         time.Time       `json:"due_date"`
	Title           *string         `json:"title,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Settled reports whether the debt has no remaining balance.
func (d *Debt) Settled() bool {
	return d.Status == DebtStatusPaid || d.RemainingAmount.Sign() <= 0
}
