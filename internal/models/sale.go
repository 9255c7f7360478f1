package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	InvoiceTypeA InvoiceType = "A" // registered customer required
	InvoiceTypeB InvoiceType = "B" // walk-in allowed
)

func (t InvoiceType) Valid() bool {
	return t == InvoiceTypeA || t == InvoiceTypeB
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentDebit    PaymentMethod = "DEBIT"
	PaymentCredit   PaymentMethod = "CREDIT"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentTransfer:
		return true
	}
	return false
}

// Sale is written once together with its items and never updated.
type Sale struct {
	ID            uint `gorm:"primaryKey"`
	CustomerID    uint `gorm:"index;not null"`
	Customer      Customer
	InvoiceType   InvoiceType     `gorm:"size:10;not null;default:'B'"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null;default:'CASH'"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"index:idx_sales_created_at;not null"`
	Items         []SaleItem      `gorm:"constraint:OnDelete:CASCADE"`
}

type SaleItem struct {
	ID        uint `gorm:"primaryKey"`
	SaleID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"` // sale price at the moment of the sale
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// ComputedTotal returns the stored total, or the sum of the item lines when
// no total was stored.
func (s *Sale) ComputedTotal() decimal.Decimal {
	if !s.Total.IsZero() {
		return s.Total
	}
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
