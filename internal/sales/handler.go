package sales

import (
	"fmt"
	"strconv"

	"erp-backend/internal/apperr"
	"erp-backend/internal/paging"

	"github.com/gofiber/fiber/v2"
)

// POST /api/sales
func CreateSaleHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		receipt, err := engine.CreateSale(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(receipt)
	}
}

// GET /api/sales?page&size&customer&startDate&endDate
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := ParseFilter(c.Query("startDate"), c.Query("endDate"), c.Query("customer"))
		if err != nil {
			return err
		}
		page, err := svc.ListSales(c.UserContext(), f, paging.FromQuery(c, 10))
		if err != nil {
			return err
		}
		return c.JSON(page)
	}
}

// GET /api/sales/:id
func GetSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || id == 0 {
			return apperr.Invalid("INVALID_ID", "invalid sale id")
		}
		receipt, err := svc.SaleByID(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		return c.JSON(receipt)
	}
}

// ExportSalesHandler serves /api/sales/export.<format>.
func ExportSalesHandler(svc *Service, format Format) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := ParseFilter(c.Query("startDate"), c.Query("endDate"), c.Query("customer"))
		if err != nil {
			return err
		}
		return sendExport(c, svc, format, f)
	}
}

// GET /api/reports/sales/export?format=csv|pdf|xlsx&from&to&customer
func ReportExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := ParseFormat(c.Query("format"))
		if err != nil {
			return err
		}
		f, err := ParseFilter(c.Query("from"), c.Query("to"), c.Query("customer"))
		if err != nil {
			return err
		}
		return sendExport(c, svc, format, f)
	}
}

func sendExport(c *fiber.Ctx, svc *Service, format Format, f Filter) error {
	doc, err := svc.Export(c.UserContext(), format, f)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	return c.Send(doc.Body)
}
