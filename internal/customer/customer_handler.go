package customer

import (
	"errors"
	"strconv"
	"strings"

	"erp-backend/internal/apperr"
	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/paging"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CustomerResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"omitempty,email,max=160"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=255"`
	Active  *bool  `json:"active" validate:"required"`
}

func (r *CustomerRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	return apperr.Validate(r)
}

func (r *CustomerRequest) apply(c *models.Customer) {
	c.Name = r.Name
	c.Email = r.Email
	c.Phone = r.Phone
	c.Address = r.Address
	c.Active = *r.Active
}

func toCustomerResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		Active:  c.Active,
	}
}

var customerSortColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"email": "email",
}

// GET /api/customers?page&size&sort&q&active
func ListCustomersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pr := paging.FromQuery(c, 20)
		dbq := db.WithContext(c.UserContext()).Model(&models.Customer{})

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := database.ContainsPattern(q)
			dbq = dbq.Where("LOWER(name) LIKE ?"+database.LikeEscape+" OR LOWER(email) LIKE ?"+database.LikeEscape, like, like)
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
			return apperr.Internal(err, "count customers")
		}

		order := "id asc"
		if col, ok := customerSortColumns[c.Query("sort")]; ok {
			order = col + " asc, id asc"
		}

		var customers []models.Customer
		if err := dbq.Order(order).Offset(pr.Offset()).Limit(pr.Size).Find(&customers).Error; err != nil {
			return apperr.Internal(err, "list customers")
		}

		res := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			res = append(res, toCustomerResponse(&customers[i]))
		}
		return c.JSON(paging.New(res, pr.Page, pr.Size, total))
	}
}

// GET /api/customers/:id
func GetCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cust, err := loadCustomer(c, db)
		if err != nil {
			return err
		}
		return c.JSON(toCustomerResponse(cust))
	}
}

// POST /api/customers
func CreateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		var cust models.Customer
		body.apply(&cust)
		if err := NewGormStore(db.WithContext(c.UserContext())).CreateCustomer(&cust); err != nil {
			return apperr.Internal(err, "create customer")
		}
		return c.Status(fiber.StatusCreated).JSON(toCustomerResponse(&cust))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cust, err := loadCustomer(c, db)
		if err != nil {
			return err
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		body.apply(cust)
		if err := NewGormStore(db.WithContext(c.UserContext())).Save(cust); err != nil {
			return apperr.Internal(err, "update customer")
		}
		return c.JSON(toCustomerResponse(cust))
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler(db *gorm.DB, walkInID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cust, err := loadCustomer(c, db)
		if err != nil {
			return err
		}
		if cust.ID == walkInID {
			return apperr.Invalid("WALK_IN_CUSTOMER", "the walk-in customer cannot be deleted")
		}
		if err := NewGormStore(db.WithContext(c.UserContext())).Delete(cust); err != nil {
			return apperr.Internal(err, "delete customer")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func loadCustomer(c *fiber.Ctx, db *gorm.DB) (*models.Customer, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, apperr.Invalid("INVALID_ID", "invalid customer id")
	}
	cust, err := NewGormStore(db.WithContext(c.UserContext())).CustomerByID(uint(id))
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, apperr.NotFound("CUSTOMER_NOT_FOUND", "customer not found: %d", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load customer")
	}
	return cust, nil
}
