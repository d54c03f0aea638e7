package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/debt"
)

const dateLayout = "2006-01-02"

// CreateOrderRequest represents the request to create an order
type CreateOrderRequest struct {
	SupplierID   int64           `json:"supplier_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	DispatchDate string          `json:"dispatch_date" validate:"required"` // YYYY-MM-DD
	CreditDays   int             `json:"credit_days" validate:"gte=0"`
	Title        *string         `json:"title,omitempty" validate:"omitempty,max=255"`
}

// UpdateOrderRequest represents the request to edit an order
type UpdateOrderRequest struct {
	DispatchDate *string          `json:"dispatch_date,omitempty"` // YYYY-MM-DD
	CreditDays   *int             `json:"credit_days,omitempty" validate:"omitempty,gte=0"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Title        *string          `json:"title,omitempty" validate:"omitempty,max=255"`
}

// OrderResponse represents the response for an order
type OrderResponse struct {
	ID           int64              `json:"id"`
	SupplierID   int64              `json:"supplier_id"`
	Amount       decimal.Decimal    `json:"amount"`
	DispatchDate string             `json:"dispatch_date"`
	CreditDays   int                `json:"credit_days"`
	DueDate      string             `json:"due_date"`
	Title        *string            `json:"title,omitempty"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    string             `json:"created_at"`
	Debt         *debt.DebtResponse `json:"debt,omitempty"`
}

// NewOrderResponse converts an order and its debt to a response DTO
func NewOrderResponse(ow *OrderWithDebt) *OrderResponse {
	o := ow.Order
	resp := &OrderResponse{
		ID:           o.ID,
		SupplierID:   o.SupplierID,
		Amount:       o.Amount,
		DispatchDate: o.DispatchDate.Format(dateLayout),
		CreditDays:   o.CreditDays,
		DueDate:      o.DueDate.Format(dateLayout),
		Title:        o.Title,
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
	if ow.Debt != nil {
		resp.Debt = debt.NewDebtResponse(ow.Debt)
	}
	return resp
}
