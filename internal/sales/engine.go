package sales

import (
	"context"
	"errors"
	"strings"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/catalog"
	"erp-backend/internal/customer"
	"erp-backend/internal/database"
	"erp-backend/internal/metrics"
	"erp-backend/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gte=1"`
}

type CreateSaleRequest struct {
	CustomerName  string        `json:"customerName" validate:"max=120"`
	CustomerID    *uint         `json:"customerId"`
	InvoiceType   string        `json:"invoiceType"`
	PaymentMethod string        `json:"paymentMethod"`
	Items         []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r *CreateSaleRequest) invoiceType() (models.InvoiceType, error) {
	v := strings.ToUpper(strings.TrimSpace(r.InvoiceType))
	if v == "" {
		return models.InvoiceTypeB, nil
	}
	t := models.InvoiceType(v)
	if !t.Valid() {
		return "", apperr.Invalid("INVALID_INVOICE_TYPE", "invoiceType must be A or B")
	}
	return t, nil
}

func (r *CreateSaleRequest) paymentMethod() (models.PaymentMethod, error) {
	v := strings.ToUpper(strings.TrimSpace(r.PaymentMethod))
	if v == "" {
		return models.PaymentCash, nil
	}
	m := models.PaymentMethod(v)
	if !m.Valid() {
		return "", apperr.Invalid("INVALID_PAYMENT_METHOD", "paymentMethod must be one of CASH, DEBIT, CREDIT, TRANSFER")
	}
	return m, nil
}

// Engine creates sales. It is safe for concurrent use; all shared state lives
// in the Store.
type Engine struct {
	store    Store
	resolver *customer.Resolver
	retries  int
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine builds an engine that re-reads a product up to retries times after
// losing a version race on it.
func NewEngine(store Store, resolver *customer.Resolver, retries int, logger *zap.Logger) *Engine {
	if retries < 0 {
		retries = 0
	}
	return &Engine{
		store:    store,
		resolver: resolver,
		retries:  retries,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSale validates req, resolves the customer, reserves stock line by line
// and stores the sale. Nothing is persisted unless every step succeeds.
func (e *Engine) CreateSale(ctx context.Context, req CreateSaleRequest) (*Receipt, error) {
	if err := apperr.Validate(&req); err != nil {
		return nil, err
	}
	invoiceType, err := req.invoiceType()
	if err != nil {
		return nil, err
	}
	paymentMethod, err := req.paymentMethod()
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = e.store.WithinTx(ctx, func(tx Tx) error {
		cust, err := e.resolver.Resolve(tx, invoiceType, req.CustomerID, req.CustomerName)
		if err != nil {
			return err
		}

		s := &models.Sale{
			CustomerID:    cust.ID,
			Customer:      *cust,
			InvoiceType:   invoiceType,
			PaymentMethod: paymentMethod,
			Items:         make([]models.SaleItem, 0, len(req.Items)),
		}
		subtotal := decimal.Zero
		for _, it := range req.Items {
			p, err := e.reserve(tx, it)
			if err != nil {
				return err
			}
			line := p.SalePrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			s.Items = append(s.Items, models.SaleItem{
				ProductID: p.ID,
				Product:   *p,
				Quantity:  it.Quantity,
				UnitPrice: p.SalePrice,
				Subtotal:  line,
			})
			subtotal = subtotal.Add(line)
		}
		s.Subtotal = subtotal
		s.Total = subtotal
		s.CreatedAt = e.now()

		if err := tx.CreateSale(s); err != nil {
			return apperr.Internal(err, "persist sale")
		}
		sale = s
		return nil
	})
	if err != nil {
		err = saleError(err)
		metrics.SaleOutcome(apperr.KindOf(err).String())
		return nil, err
	}
	metrics.SaleOutcome("ok")

	e.logger.Info("sale created",
		zap.Uint("sale_id", sale.ID),
		zap.Uint("customer_id", sale.CustomerID),
		zap.String("invoice_type", string(sale.InvoiceType)),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	receipt := NewReceipt(sale)
	return &receipt, nil
}

// saleError maps a failed unit of work onto the error taxonomy. A transaction
// the database aborted is a conflict the caller can submit again.
func saleError(err error) error {
	if errors.Is(err, database.ErrSerializationFailure) {
		metrics.StockConflict()
		return apperr.Conflict("CONFLICT", "the sale collided with a concurrent sale, please retry")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err, "create sale")
}

// reserve runs the read-decrement-write cycle for one line, re-reading the
// product after a version conflict until the retry budget is spent.
func (e *Engine) reserve(tx Tx, it ItemRequest) (*models.Product, error) {
	for attempt := 0; ; attempt++ {
		p, err := tx.ProductByID(it.ProductID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, apperr.NotFound("PRODUCT_NOT_FOUND", "product not found: %d", it.ProductID)
		}
		if err != nil {
			return nil, apperr.Internal(err, "load product %d", it.ProductID)
		}

		if err := p.DecreaseStock(it.Quantity); err != nil {
			return nil, apperr.InsufficientStock(p.Name)
		}

		err = tx.SaveProduct(p)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, database.ErrSerializationFailure) {
			// the transaction is gone, retrying inside it cannot succeed
			return nil, err
		}
		if !errors.Is(err, catalog.ErrConcurrentModification) {
			return nil, apperr.Internal(err, "save product %d", p.ID)
		}
		metrics.StockConflict()
		if attempt >= e.retries {
			return nil, apperr.Conflict("CONFLICT", "product %s was modified concurrently, please retry", p.Name)
		}
		e.logger.Debug("stock version conflict, retrying",
			zap.Uint("product_id", p.ID),
			zap.Int("attempt", attempt+1),
		)
	}
}
