package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrStockInsufficient is returned by DecreaseStock when the requested
// quantity exceeds what is on hand.
var ErrStockInsufficient = errors.New("product stock insufficient")

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	SKU         string          `gorm:"column:sku;size:60;not null;uniqueIndex:uk_products_sku"`
	Name        string          `gorm:"size:150;not null;index:idx_products_name"`
	Category    string          `gorm:"size:100;index:idx_products_category"`
	Description string          `gorm:"type:text"`
	Barcode     string          `gorm:"size:100"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	StockMin    int             `gorm:"not null;default:0"`
	Active      bool            `gorm:"not null"`
	Version     int64           `gorm:"not null;default:0"` // bumped by every compare-and-swap write
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DecreaseStock removes qty units, leaving the product untouched when the
// result would go negative.
func (p *Product) DecreaseStock(qty int) error {
	remaining := p.Stock - qty
	if remaining < 0 {
		return ErrStockInsufficient
	}
	p.Stock = remaining
	return nil
}

func (p *Product) SupportsSoftDelete() bool { return true }
