package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcontreras/payables/internal/model"
)

const dateLayout = "2006-01-02"

// CreatePaymentRequest represents the request to record a payment
type CreatePaymentRequest struct {
	DebtID             int64            `json:"debt_id" validate:"required"`
	SupplierID         int64            `json:"supplier_id" validate:"required"`
	Amount             decimal.Decimal  `json:"amount" validate:"required"`
	Method             string           `json:"payment_method" validate:"required,oneof=ZELLE TRANSFER CASH"`
	SenderName         string           `json:"sender_name" validate:"required,min=1,max=255"`
	SenderEmail        *string          `json:"sender_email,omitempty" validate:"omitempty,email"`
	ConfirmationNumber *string          `json:"confirmation_number,omitempty" validate:"omitempty,max=100"`
	PaymentDate        string           `json:"payment_date" validate:"required"` // YYYY-MM-DD
	ExchangeRate       *decimal.Decimal `json:"exchange_rate,omitempty"`
	AmountInBolivares  *decimal.Decimal `json:"amount_in_bolivares,omitempty"`
	ReceiptFileNames   []string         `json:"receipt_file_names,omitempty" validate:"omitempty,dive,min=1,max=255"`
}

// UpdatePaymentRequest represents a partial edit of a payment. Nil
// fields are left untouched; a non-nil receipt list replaces the
// stored one and orphaned files are deleted.
type UpdatePaymentRequest struct {
	DebtID             *int64           `json:"debt_id,omitempty"`
	SupplierID         *int64           `json:"supplier_id,omitempty"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Method             *string          `json:"payment_method,omitempty" validate:"omitempty,oneof=ZELLE TRANSFER CASH"`
	SenderName         *string          `json:"sender_name,omitempty" validate:"omitempty,min=1,max=255"`
	SenderEmail        *string          `json:"sender_email,omitempty" validate:"omitempty,email"`
	ConfirmationNumber *string          `json:"confirmation_number,omitempty" validate:"omitempty,max=100"`
	PaymentDate        *string          `json:"payment_date,omitempty"` // YYYY-MM-DD
	ExchangeRate       *decimal.Decimal `json:"exchange_rate,omitempty"`
	AmountInBolivares  *decimal.Decimal `json:"amount_in_bolivares,omitempty"`
	ReceiptFileNames   []string         `json:"receipt_file_names,omitempty" validate:"omitempty,dive,min=1,max=255"`
	Verified           *bool            `json:"verified,omitempty"`
}

// DeletePaymentRequest carries the optional reason for a soft delete
type DeletePaymentRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// PaymentResponse represents the response for a payment
type PaymentResponse struct {
	ID                 int64               `json:"id"`
	DebtID             int64               `json:"debt_id"`
	SupplierID         int64               `json:"supplier_id"`
	Amount             decimal.Decimal     `json:"amount"`
	Method             model.PaymentMethod `json:"payment_method"`
	SenderName         string              `json:"sender_name"`
	SenderEmail        *string             `json:"sender_email,omitempty"`
	ConfirmationNumber *string             `json:"confirmation_number,omitempty"`
	PaymentDate        string              `json:"payment_date"`
	ExchangeRate       *decimal.Decimal    `json:"exchange_rate,omitempty"`
	AmountInBolivares  *decimal.Decimal    `json:"amount_in_bolivares,omitempty"`
	ReceiptFileNames   []string            `json:"receipt_file_names"`
	Verified           bool                `json:"verified"`
	Shared             bool                `json:"shared"`
	SharedAt           *string             `json:"shared_at,omitempty"`
	CreatedBy          string              `json:"created_by"`
	CreatedAt          string              `json:"created_at"`
	DeletedAt          *string             `json:"deleted_at,omitempty"`
	DeletedBy          *string             `json:"deleted_by,omitempty"`
	DeletionReason     *string             `json:"deletion_reason,omitempty"`
}

// NewPaymentResponse converts a Payment model to its response DTO
func NewPaymentResponse(p *model.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:                 p.ID,
		DebtID:             p.DebtID,
		SupplierID:         p.SupplierID,
		Amount:             p.Amount,
		Method:             p.Method,
		SenderName:         p.SenderName,
		SenderEmail:        p.SenderEmail,
		ConfirmationNumber: p.ConfirmationNumber,
		PaymentDate:        p.PaymentDate.Format(dateLayout),
		ExchangeRate:       p.ExchangeRate,
		AmountInBolivares:  p.AmountInBolivares,
		ReceiptFileNames:   p.ReceiptFileNames,
		Verified:           p.Verified,
		Shared:             p.Shared,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		DeletedBy:          p.DeletedBy,
		DeletionReason:     p.DeletionReason,
	}
	if p.SharedAt != nil {
		formatted := p.SharedAt.Format(time.RFC3339)
		resp.SharedAt = &formatted
	}
	if p.DeletedAt != nil {
		formatted := p.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &formatted
	}
	return resp
}
