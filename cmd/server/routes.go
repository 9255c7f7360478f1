package main

import (
	"context"
	"time"

	"erp-backend/internal/auth"
	"erp-backend/internal/catalog"
	"erp-backend/internal/config"
	"erp-backend/internal/customer"
	"erp-backend/internal/dashboard"
	"erp-backend/internal/metrics"
	"erp-backend/internal/models"
	"erp-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func registerRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, engine *sales.Engine, salesSvc *sales.Service) {
	authn := auth.JWTMiddleware(cfg.JWTSecret)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	api := app.Group("/api")

	// Public
	api.Get("/health", healthHandler())
	if cfg.PrometheusEnabled {
		app.Get("/metrics", metrics.Handler())
	}
	api.Post("/auth/register", auth.RegisterHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))
	api.Post("/auth/logout", auth.LogoutHandler())

	// must precede /products/:id
	api.Get("/products/low-stock", authn, adminOnly, catalog.LowStockHandler(db))
	api.Get("/products", catalog.ListProductsHandler(db))
	api.Get("/products/:id", catalog.GetProductHandler(db))
	api.Get("/customers", customer.ListCustomersHandler(db))
	api.Get("/customers/:id", customer.GetCustomerHandler(db))

	// Protected
	protected := api.Group("")
	protected.Use(authn)

	protected.Get("/auth/me", auth.MeHandler(db))

	protected.Post("/products", catalog.CreateProductHandler(db))
	protected.Put("/products/:id", catalog.UpdateProductHandler(db))
	protected.Delete("/products/:id", catalog.DeleteProductHandler(db))

	protected.Post("/customers", customer.CreateCustomerHandler(db))
	protected.Put("/customers/:id", customer.UpdateCustomerHandler(db))
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler(db, cfg.WalkInCustomerID))

	protected.Get("/dashboard/summary", dashboard.SummaryHandler(db))

	// Admin
	salesRoutes := protected.Group("/sales")
	salesRoutes.Use(adminOnly)
	salesRoutes.Post("", sales.CreateSaleHandler(engine))
	salesRoutes.Get("", sales.ListSalesHandler(salesSvc))
	salesRoutes.Get("/export.csv", sales.ExportSalesHandler(salesSvc, sales.FormatCSV))
	salesRoutes.Get("/export.pdf", sales.ExportSalesHandler(salesSvc, sales.FormatPDF))
	salesRoutes.Get("/export.xlsx", sales.ExportSalesHandler(salesSvc, sales.FormatXLSX))
	salesRoutes.Get("/:id", sales.GetSaleHandler(salesSvc))

	protected.Get("/reports/sales/export", adminOnly, sales.ReportExportHandler(salesSvc))
}

// requestDeadline bounds the context every handler passes to storage.
func requestDeadline(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// GET /api/health
func healthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "UP",
			"time":    time.Now().UTC(),
			"service": serviceName,
		})
	}
}
