package sales

import (
	"time"

	"erp-backend/internal/models"

	"github.com/shopspring/decimal"
)

type ReceiptItem struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Receipt is the outward view of a persisted sale.
type Receipt struct {
	SaleID        uint                 `json:"saleId"`
	CustomerID    uint                 `json:"customerId"`
	CustomerName  string               `json:"customerName"`
	InvoiceType   models.InvoiceType   `json:"invoiceType"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time            `json:"createdAt"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Total         decimal.Decimal      `json:"total"`
	Items         []ReceiptItem        `json:"items"`
}

// NewReceipt expects s.Customer and every item's Product to be loaded.
func NewReceipt(s *models.Sale) Receipt {
	items := make([]ReceiptItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ReceiptItem{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return Receipt{
		SaleID:        s.ID,
		CustomerID:    s.CustomerID,
		CustomerName:  s.Customer.Name,
		InvoiceType:   s.InvoiceType,
		PaymentMethod: s.PaymentMethod,
		CreatedAt:     s.CreatedAt,
		Subtotal:      s.Subtotal,
		Total:         s.Total,
		Items:         items,
	}
}
