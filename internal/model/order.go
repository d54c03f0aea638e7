package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a dispatch of goods or services that creates an
// obligation. Exactly one Debt is created per Order at creation time;
// the pair is never separated.
type Order struct {
	ID           int64           `json:"id"`
	SupplierID   int64           `json:"supplier_id"`
	Amount       decimal.Decimal `json:"amount"`
	DispatchDate time.Time       `json:"dispatch_date"`
	CreditDays   int             `json:"credit_days"`
	DueDate      time.Time       `json:"due_date"`
	Title        *string         `json:"title,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DeriveDueDate returns the dispatch date shifted by the credit term.
func DeriveDueDate(dispatchDate time.Time, creditDays int) time.Time {
	return dispatchDate.AddDate(0, 0, creditDays)
}
