package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/config"
	"erp-backend/internal/customer"
	"erp-backend/internal/database"
	"erp-backend/internal/logging"
	"erp-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const serviceName = "erp-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}
	if err := database.Seed(db, cfg); err != nil {
		logger.Fatal("seed database", zap.Error(err))
	}
	if err := customer.VerifyWalkIn(customer.NewGormStore(db), cfg.WalkInCustomerID); err != nil {
		logger.Fatal("walk-in customer is not configured", zap.Error(err))
	}

	engine := sales.NewEngine(
		sales.NewGormStore(db),
		customer.NewResolver(cfg.WalkInCustomerID),
		cfg.SaleStockRetries,
		logger.Named("sales"),
	)

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: apperr.ErrorHandler(logger),
	})
	app.Use(logging.RequestLogger(logger))
	app.Use(recover.New())
	app.Use(requestDeadline(cfg.RequestTimeout()))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins(),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	}))

	registerRoutes(app, cfg, db, engine, sales.NewService(db))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", zap.String("port", cfg.HTTPPort))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
