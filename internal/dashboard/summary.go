package dashboard

import (
	"context"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Summary struct {
	MonthSalesCount int64           `json:"monthSalesCount"`
	MonthSalesTotal decimal.Decimal `json:"monthSalesTotal"`
	Last7DaysCount  int64           `json:"last7DaysCount"`
}

// Summarize reports the current calendar month [1st 00:00, next 1st 00:00)
// and the trailing week [today-6 00:00, tomorrow 00:00), both relative to now.
func Summarize(ctx context.Context, db *gorm.DB, now time.Time) (Summary, error) {
	loc := now.Location()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	weekEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	weekStart := weekEnd.AddDate(0, 0, -7)

	var s Summary
	var err error
	if s.MonthSalesCount, err = countBetween(ctx, db, monthStart, monthEnd); err != nil {
		return Summary{}, err
	}
	if s.Last7DaysCount, err = countBetween(ctx, db, weekStart, weekEnd); err != nil {
		return Summary{}, err
	}

	// aggregation result row
	var row struct {
		Total decimal.NullDecimal `gorm:"column:total"`
	}
	err = db.WithContext(ctx).Raw(`
		SELECT SUM(sale_items.unit_price * sale_items.quantity) AS total
		FROM sale_items
		JOIN sales ON sales.id = sale_items.sale_id
		WHERE sales.created_at >= ? AND sales.created_at < ?`,
		monthStart.UTC(), monthEnd.UTC(),
	).Scan(&row).Error
	if err != nil {
		return Summary{}, apperr.Internal(err, "sum month sales")
	}
	s.MonthSalesTotal = decimal.Zero
	if row.Total.Valid {
		s.MonthSalesTotal = row.Total.Decimal.Round(2)
	}
	return s, nil
}

func countBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Sale{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, apperr.Internal(err, "count sales")
	}
	return n, nil
}

// GET /api/dashboard/summary
func SummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := Summarize(c.UserContext(), db, time.Now())
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}
