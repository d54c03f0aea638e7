package memory

import (
	"time"

	"github.com/dcontreras/payables/internal/model"
	"github.com/shopspring/decimal"
)

// Clones keep stored rows isolated from caller mutations.

func cloneSupplier(s *model.Supplier) *model.Supplier {
	c := *s
	c.ContactName = cloneString(s.ContactName)
	c.Email = cloneString(s.Email)
	c.LastPaymentDate = cloneTime(s.LastPaymentDate)
	return &c
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Title = cloneString(o.Title)
	return &c
}

func cloneDebt(d *model.Debt) *model.Debt {
	c := *d
	c.Title = cloneString(d.Title)
	return &c
}

func clonePayment(p *model.Payment) *model.Payment {
	c := *p
	c.SenderEmail = cloneString(p.SenderEmail)
	c.ConfirmationNumber = cloneString(p.ConfirmationNumber)
	c.ExchangeRate = cloneDecimal(p.ExchangeRate)
	c.AmountInBolivares = cloneDecimal(p.AmountInBolivares)
	c.DeletedBy = cloneString(p.DeletedBy)
	c.DeletionReason = cloneString(p.DeletionReason)
	c.DeletedAt = cloneTime(p.DeletedAt)
	c.SharedAt = cloneTime(p.SharedAt)
	if p.ReceiptFileNames != nil {
		c.ReceiptFileNames = append([]string(nil), p.ReceiptFileNames...)
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
