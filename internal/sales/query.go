package sales

import (
	"context"
	"errors"
	"strings"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/paging"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Filter narrows the sale list. From and To are calendar days, both
// inclusive.
type Filter struct {
	From     *time.Time
	To       *time.Time
	Customer string
}

// ParseFilter reads yyyy-mm-dd bounds and rejects a range that ends before it
// starts.
func ParseFilter(from, to, customer string) (Filter, error) {
	var f Filter
	var err error
	if f.From, err = parseDay("startDate", from); err != nil {
		return Filter{}, err
	}
	if f.To, err = parseDay("endDate", to); err != nil {
		return Filter{}, err
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return Filter{}, apperr.Invalid("INVALID_DATE_RANGE", "endDate must not be before startDate")
	}
	f.Customer = strings.TrimSpace(customer)
	return f, nil
}

func parseDay(name, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return nil, apperr.Invalid("INVALID_DATE", "%s must be formatted as yyyy-mm-dd", name)
	}
	return &d, nil
}

// Service answers read-side sale queries straight from the database.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Sale{})
	if f.From != nil {
		q = q.Where("sales.created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("sales.created_at < ?", f.To.AddDate(0, 0, 1).UTC())
	}
	if f.Customer != "" {
		matching := s.db.Model(&models.Customer{}).
			Select("id").
			Where("LOWER(name) LIKE ?"+database.LikeEscape, database.ContainsPattern(f.Customer))
		q = q.Where("sales.customer_id IN (?)", matching)
	}
	return q
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id asc") }).
		Preload("Items.Product").
		Order("sales.created_at desc, sales.id desc")
}

// ListSales returns one page of receipts, newest first.
func (s *Service) ListSales(ctx context.Context, f Filter, pr paging.Request) (paging.Page[Receipt], error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return paging.Page[Receipt]{}, apperr.Internal(err, "count sales")
	}

	var rows []models.Sale
	err := withDetails(s.filtered(ctx, f)).
		Offset(pr.Offset()).
		Limit(pr.Size).
		Find(&rows).Error
	if err != nil {
		return paging.Page[Receipt]{}, apperr.Internal(err, "list sales")
	}

	content := make([]Receipt, 0, len(rows))
	for i := range rows {
		content = append(content, NewReceipt(&rows[i]))
	}
	return paging.New(content, pr.Page, pr.Size, total), nil
}

// SaleByID loads one sale with its customer and items.
func (s *Service) SaleByID(ctx context.Context, id uint) (*Receipt, error) {
	var row models.Sale
	err := withDetails(s.db.WithContext(ctx).Model(&models.Sale{})).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("SALE_NOT_FOUND", "sale not found: %d", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load sale %d", id)
	}
	r := NewReceipt(&row)
	return &r, nil
}

// FindSales returns every sale matching f with customer and items loaded.
func (s *Service) FindSales(ctx context.Context, f Filter) ([]models.Sale, error) {
	var rows []models.Sale
	if err := withDetails(s.filtered(ctx, f)).Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "find sales")
	}
	return rows, nil
}
