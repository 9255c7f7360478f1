package catalog

import (
	"errors"
	"fmt"
	"time"

	"erp-backend/internal/database"
	"erp-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrConcurrentModification means the stored version no longer matches
	// the one the caller read. Postgres deadlock and serialization aborts come
	// back wrapped in database.ErrSerializationFailure instead.
	ErrConcurrentModification = errors.New("product modified concurrently")
)

// Store is the product contract the sale engine consumes.
type Store interface {
	ProductByID(id uint) (*models.Product, error)
	// SaveProduct writes p only if the stored version still equals
	// p.Version. On success p.Version is advanced.
	SaveProduct(p *models.Product) error
}

// GormStore implements Store on a *gorm.DB, which may be a transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ProductByID(id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, database.TranslateError(err))
	}
	return &p, nil
}

func (s *GormStore) SaveProduct(p *models.Product) error {
	now := time.Now()
	res := s.db.Model(&models.Product{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"sku":         p.SKU,
			"name":        p.Name,
			"category":    p.Category,
			"description": p.Description,
			"barcode":     p.Barcode,
			"cost_price":  p.CostPrice,
			"sale_price":  p.SalePrice,
			"stock":       p.Stock,
			"stock_min":   p.StockMin,
			"active":      p.Active,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("save product %d: %w", p.ID, database.TranslateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

func (s *GormStore) CreateProduct(p *models.Product) error {
	p.Version = 0
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *GormStore) SKUExists(sku string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.Model(&models.Product{}).Where("sku = ?", sku)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check sku: %w", err)
	}
	return count > 0, nil
}

// Delete deactivates the product when the model supports soft delete and
// removes the row otherwise.
func (s *GormStore) Delete(p *models.Product) error {
	if p.SupportsSoftDelete() {
		p.Active = false
		return s.SaveProduct(p)
	}
	if err := s.db.Delete(&models.Product{}, p.ID).Error; err != nil {
		return fmt.Errorf("delete product %d: %w", p.ID, err)
	}
	return nil
}
