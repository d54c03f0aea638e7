package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was remitted
type PaymentMethod string

const (
	PaymentMethodZelle    PaymentMethod = "ZELLE"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCash     PaymentMethod = "CASH"
)

// RequiresConfirmation reports whether the method needs a bank
// confirmation number.
func (m PaymentMethod) RequiresConfirmation() bool {
	return m == PaymentMethodZelle || m == PaymentMethodTransfer
}

// Payment is a recorded remittance against a Debt. Rows are
// append-mostly: soft delete is the only mutation that removes a
// payment's effect, and the row is kept for audit history.
type Payment struct {
	ID                 int64            `json:"id"`
	DebtID             int64            `json:"debt_id"`
	SupplierID         int64            `json:"supplier_id"`
	Amount             decimal.Decimal  `json:"amount"`
	Method             PaymentMethod    `json:"payment_method"`
	SenderName         string           `json:"sender_name"`
	SenderEmail        *string          `json:"sender_email,omitempty"`
	ConfirmationNumber *string          `json:"confirmation_number,omitempty"`
	PaymentDate        time.Time        `json:"payment_date"`
	ExchangeRate       *decimal.Decimal `json:"exchange_rate,omitempty"`
	AmountInBolivares  *decimal.Decimal `json:"amount_in_bolivares,omitempty"`
	ReceiptFileNames   []string         `json:"receipt_file_names"`
	Verified           bool             `json:"verified"`
	Shared             bool             `json:"shared"`
	SharedAt           *time.Time       `json:"shared_at,omitempty"`
	CreatedBy          string           `json:"created_by"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          *time.Time       `json:"deleted_at,omitempty"`
	DeletedBy          *string          `json:"deleted_by,omitempty"`
	DeletionReason     *string          `json:"deletion_reason,omitempty"`
}

// Active reports whether the payment still counts toward its debt.
func (p *Payment) Active() bool {
	return p.DeletedAt == nil
}

// TrimmedConfirmation returns the confirmation number without
// surrounding whitespace, or "" when unset.
func (p *Payment) TrimmedConfirmation() string {
	if p.ConfirmationNumber == nil {
		return ""
	}
	return strings.TrimSpace(*p.ConfirmationNumber)
}
