package supplier

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/model"
)

// CreateSupplierRequest represents the request to create a supplier
type CreateSupplierRequest struct {
	CompanyName    string           `json:"company_name" validate:"required,min=1,max=255"`
	TaxID          string           `json:"tax_id" validate:"required,min=1,max=50"`
	Phone          string           `json:"phone" validate:"required,min=1,max=30"`
	ContactName    *string          `json:"contact_name,omitempty" validate:"omitempty,max=255"`
	Email          *string          `json:"email,omitempty" validate:"omitempty,email"`
	OpeningBalance *decimal.Decimal `json:"opening_balance,omitempty"`
}

// SupplierResponse represents the response for a supplier
type SupplierResponse struct {
	ID              int64                `json:"id"`
	CompanyName     string               `json:"company_name"`
	TaxID           string               `json:"tax_id"`
	Phone           string               `json:"phone"`
	ContactName     *string              `json:"contact_name,omitempty"`
	Email           *string              `json:"email,omitempty"`
	TotalDebt       decimal.Decimal      `json:"total_debt"`
	Status          model.SupplierStatus `json:"status"`
	LastPaymentDate *string              `json:"last_payment_date,omitempty"`
	CreatedAt       string               `json:"created_at"`
}

// NewSupplierResponse converts a Supplier model to its response DTO
func NewSupplierResponse(s *model.Supplier) *SupplierResponse {
	resp := &SupplierResponse{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		TaxID:       s.TaxID,
		Phone:       s.Phone,
		ContactName: s.ContactName,
		Email:       s.Email,
		TotalDebt:   s.TotalDebt,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
	if s.LastPaymentDate != nil {
		formatted := s.LastPaymentDate.Format(time.RFC3339)
		resp.LastPaymentDate = &formatted
	}
	return resp
}
