package main

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/auth"
	"erp-backend/internal/config"
	"erp-backend/internal/customer"
	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver:   "sqlite",
		DatabaseDSN:      "file::memory:",
		JWTSecret:        "0123456789abcdef0123456789abcdef",
		JWTTTLMinutes:    60,
		WalkInCustomerID: 1,
		SaleStockRetries: 1,
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, cfg))

	engine := sales.NewEngine(sales.NewGormStore(db), customer.NewResolver(1), 1, zap.NewNop())
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(zap.NewNop())})
	registerRoutes(app, cfg, db, engine, sales.NewService(db))
	return app, cfg
}

func token(t *testing.T, cfg *config.Config, role models.UserRole) string {
	t.Helper()
	tok, err := auth.GenerateToken(cfg.JWTSecret, time.Hour, &models.User{ID: 1, Username: "u", Role: role})
	require.NoError(t, err)
	return tok
}

func status(t *testing.T, app *fiber.App, method, target, tok, body string) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRoutePolicy(t *testing.T) {
	app, cfg := newTestServer(t)
	user := token(t, cfg, models.RoleUser)
	admin := token(t, cfg, models.RoleAdmin)

	assert.Equal(t, 200, status(t, app, "GET", "/api/health", "", ""))
	assert.Equal(t, 200, status(t, app, "GET", "/api/products", "", ""))
	assert.Equal(t, 200, status(t, app, "GET", "/api/customers/1", "", ""))

	assert.Equal(t, 401, status(t, app, "GET", "/api/products/low-stock", "", ""))
	assert.Equal(t, 403, status(t, app, "GET", "/api/products/low-stock", user, ""))
	assert.Equal(t, 200, status(t, app, "GET", "/api/products/low-stock", admin, ""))

	product := `{"name":"Yerba","sku":"YER-1","salePrice":"3500.00","stock":10}`
	assert.Equal(t, 401, status(t, app, "POST", "/api/products", "", product))
	assert.Equal(t, 201, status(t, app, "POST", "/api/products", user, product))

	sale := `{"items":[{"productId":1,"quantity":2}]}`
	assert.Equal(t, 401, status(t, app, "POST", "/api/sales", "", sale))
	assert.Equal(t, 403, status(t, app, "POST", "/api/sales", user, sale))
	assert.Equal(t, 201, status(t, app, "POST", "/api/sales", admin, sale))
	assert.Equal(t, 200, status(t, app, "GET", "/api/sales", admin, ""))
	assert.Equal(t, 200, status(t, app, "GET", "/api/sales/1", admin, ""))
	assert.Equal(t, 200, status(t, app, "GET", "/api/sales/export.pdf", admin, ""))
	assert.Equal(t, 403, status(t, app, "GET", "/api/reports/sales/export?format=csv", user, ""))
	assert.Equal(t, 200, status(t, app, "GET", "/api/reports/sales/export?format=csv", admin, ""))

	assert.Equal(t, 200, status(t, app, "GET", "/api/dashboard/summary", user, ""))
}

func TestRequestDeadlineReachesHandlers(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(zap.NewNop())})
	app.Use(requestDeadline(50 * time.Millisecond))
	app.Get("/deadline", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/slow", func(c *fiber.Ctx) error {
		<-c.UserContext().Done()
		return fmt.Errorf("list sales: %w", c.UserContext().Err())
	})

	assert.Equal(t, 200, status(t, app, "GET", "/deadline", "", ""))

	resp, err := app.Test(httptest.NewRequest("GET", "/slow", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "TIMEOUT")
}
