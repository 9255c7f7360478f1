package sales

import (
	"context"
	"fmt"

	"erp-backend/internal/catalog"
	"erp-backend/internal/customer"
	"erp-backend/internal/database"
	"erp-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx is everything a sale touches inside one unit of work.
type Tx interface {
	catalog.Store
	customer.Store
	// CreateSale inserts the sale and its items.
	CreateSale(s *models.Sale) error
}

// Store runs fn atomically: every write made through tx commits together when
// fn returns nil and is discarded otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// WithinTx also translates an aborted commit into
// database.ErrSerializationFailure.
func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{
			Store:         catalog.NewGormStore(tx),
			customerStore: customer.NewGormStore(tx),
			db:            tx,
		})
	})
	return database.TranslateError(err)
}

type customerStore = customer.Store

type gormTx struct {
	catalog.Store
	customerStore
	db *gorm.DB
}

func (t *gormTx) CreateSale(s *models.Sale) error {
	if err := t.db.Omit(clause.Associations).Create(s).Error; err != nil {
		return fmt.Errorf("insert sale: %w", database.TranslateError(err))
	}
	if len(s.Items) == 0 {
		return nil
	}
	for i := range s.Items {
		s.Items[i].SaleID = s.ID
	}
	if err := t.db.Omit(clause.Associations).Create(&s.Items).Error; err != nil {
		return fmt.Errorf("insert sale items: %w", database.TranslateError(err))
	}
	return nil
}
