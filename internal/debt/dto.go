package debt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/model"
)

const dateLayout = "2006-01-02"

// UpdateDebtRequest represents a direct edit of a debt
type UpdateDebtRequest struct {
	InitialAmount *decimal.Decimal `json:"initial_amount,omitempty"`
	DueDate       *string          `json:"due_date,omitempty"` // YYYY-MM-DD
}

// DebtResponse represents the response for a debt
type DebtResponse struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"order_id"`
	SupplierID      int64            `json:"supplier_id"`
	InitialAmount   decimal.Decimal  `json:"initial_amount"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	Status          model.DebtStatus `json:"status"`
	DueDate         string           `json:"due_date"`
	Title           *string          `json:"title,omitempty"`
	CreatedAt       string           `json:"created_at"`
}

// NewDebtResponse converts a Debt model to its response DTO
func NewDebtResponse(d *model.Debt) *DebtResponse {
	return &DebtResponse{
		ID:              d.ID,
		OrderID:         d.OrderID,
		SupplierID:      d.SupplierID,
		InitialAmount:   d.InitialAmount,
		RemainingAmount: d.RemainingAmount,
		Status:          d.Status,
		DueDate:         d.DueDate.Format(dateLayout),
		Title:           d.Title,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
}
