package catalog

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/paging"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID          uint            `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Barcode     string          `json:"barcode"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	SalePrice   decimal.Decimal `json:"salePrice"`
	Stock       int             `json:"stock"`
	StockMin    int             `json:"stockMin"`
	Active      bool            `json:"active"`
	Version     int64           `json:"version"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	SKU         string          `json:"sku" validate:"required,max=60"`
	Category    string          `json:"category" validate:"max=100"`
	Description string          `json:"description" validate:"max=10000"`
	Barcode     string          `json:"barcode" validate:"max=100"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	SalePrice   decimal.Decimal `json:"salePrice"`
	Stock       *int            `json:"stock" validate:"required,gte=0"`
	StockMin    int             `json:"stockMin" validate:"gte=0"`
	Active      *bool           `json:"active"`
	// Version read by the client; when present an update fails with 409 if
	// the product changed in the meantime.
	Version *int64 `json:"version"`
}

func (r *ProductRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.SKU = strings.TrimSpace(r.SKU)
	r.Category = strings.TrimSpace(r.Category)
	r.Barcode = strings.TrimSpace(r.Barcode)
	if err := apperr.Validate(r); err != nil {
		return err
	}
	if r.CostPrice.IsNegative() {
		return apperr.Invalid("VALIDATION_ERROR", "costPrice must be >= 0")
	}
	if r.SalePrice.IsNegative() {
		return apperr.Invalid("VALIDATION_ERROR", "salePrice must be >= 0")
	}
	return nil
}

func (r *ProductRequest) apply(p *models.Product) {
	p.Name = r.Name
	p.SKU = r.SKU
	p.Category = r.Category
	p.Description = r.Description
	p.Barcode = r.Barcode
	p.CostPrice = r.CostPrice
	p.SalePrice = r.SalePrice
	p.Stock = *r.Stock
	p.StockMin = r.StockMin
	if r.Active != nil {
		p.Active = *r.Active
	}
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Barcode:     p.Barcode,
		CostPrice:   p.CostPrice,
		SalePrice:   p.SalePrice,
		Stock:       p.Stock,
		StockMin:    p.StockMin,
		Active:      p.Active,
		Version:     p.Version,
		UpdatedAt:   p.UpdatedAt,
	}
}

var productSortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"sku":       "sku",
	"category":  "category",
	"salePrice": "sale_price",
	"stock":     "stock",
	"createdAt": "created_at",
}

// GET /api/products?page&size&sort&q&minStock&active
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pr := paging.FromQuery(c, 20)
		dbq := db.WithContext(c.UserContext()).Model(&models.Product{})

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := database.ContainsPattern(q)
			dbq = dbq.Where("LOWER(name) LIKE ?"+database.LikeEscape+" OR LOWER(sku) LIKE ?"+database.LikeEscape, like, like)
		}
		if v := c.Query("minStock"); v != "" {
			minStock, err := strconv.Atoi(v)
			if err != nil {
				return apperr.Invalid("TYPE_MISMATCH", "minStock must be an integer")
			}
			dbq = dbq.Where("stock >= ?", minStock)
		}
		if v := c.Query("active"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				return apperr.Invalid("TYPE_MISMATCH", "active must be true or false")
			}
			dbq = dbq.Where("active = ?", active)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return apperr.Internal(err, "count products")
		}

		order := "id asc"
		if col, ok := productSortColumns[c.Query("sort")]; ok {
			order = col + " asc, id asc"
		}

		var products []models.Product
		if err := dbq.Order(order).Offset(pr.Offset()).Limit(pr.Size).Find(&products).Error; err != nil {
			return apperr.Internal(err, "list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(paging.New(res, pr.Page, pr.Size, total))
	}
}

// GET /api/products/low-stock?threshold=5
func LowStockHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := c.QueryInt("threshold", 5)
		if threshold < 0 {
			threshold = 0
		}

		var products []models.Product
		err := db.WithContext(c.UserContext()).
			Where("stock < ?", threshold).
			Order("stock asc, name asc").
			Find(&products).Error
		if err != nil {
			return apperr.Internal(err, "list low-stock products")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := productIDParam(c)
		if err != nil {
			return err
		}
		p, err := NewGormStore(db.WithContext(c.UserContext())).ProductByID(id)
		if err != nil {
			return productLookupError(err, id)
		}
		return c.JSON(toProductResponse(p))
	}
}

// POST /api/products
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		store := NewGormStore(db.WithContext(c.UserContext()))
		exists, err := store.SKUExists(body.SKU, 0)
		if err != nil {
			return apperr.Internal(err, "create product")
		}
		if exists {
			return apperr.Conflict("SKU_EXISTS", "sku %s is already in use", body.SKU)
		}

		p := models.Product{Active: true}
		body.apply(&p)
		if err := store.CreateProduct(&p); err != nil {
			return apperr.Internal(err, "create product")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := productIDParam(c)
		if err != nil {
			return err
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		store := NewGormStore(db.WithContext(c.UserContext()))
		p, err := store.ProductByID(id)
		if err != nil {
			return productLookupError(err, id)
		}
		if body.Version != nil && *body.Version != p.Version {
			return apperr.Conflict("CONFLICT", "product %d was modified, reload and retry", id)
		}

		exists, err := store.SKUExists(body.SKU, p.ID)
		if err != nil {
			return apperr.Internal(err, "update product")
		}
		if exists {
			return apperr.Conflict("SKU_EXISTS", "sku %s is already in use", body.SKU)
		}

		body.apply(p)
		if err := store.SaveProduct(p); err != nil {
			if isWriteConflict(err) {
				return apperr.Conflict("CONFLICT", "product %d was modified, reload and retry", id)
			}
			return apperr.Internal(err, "update product")
		}
		return c.JSON(toProductResponse(p))
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := productIDParam(c)
		if err != nil {
			return err
		}
		store := NewGormStore(db.WithContext(c.UserContext()))
		p, err := store.ProductByID(id)
		if err != nil {
			return productLookupError(err, id)
		}
		if err := store.Delete(p); err != nil {
			if isWriteConflict(err) {
				return apperr.Conflict("CONFLICT", "product %d was modified, reload and retry", id)
			}
			return apperr.Internal(err, "delete product")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func productIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("INVALID_ID", "invalid product id")
	}
	return uint(id), nil
}

func isWriteConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, database.ErrSerializationFailure)
}

func productLookupError(err error, id uint) error {
	if errors.Is(err, ErrProductNotFound) {
		return apperr.NotFound("PRODUCT_NOT_FOUND", "product not found: %d", id)
	}
	return apperr.Internal(err, "load product")
}
