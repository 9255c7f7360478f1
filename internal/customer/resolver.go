package customer

import (
	"errors"
	"fmt"
	"strings"

	"erp-backend/internal/apperr"
	"erp-backend/internal/models"
)

// Resolver picks the billing party of a sale.
type Resolver struct {
	walkInID uint
}

func NewResolver(walkInID uint) *Resolver {
	return &Resolver{walkInID: walkInID}
}

// Resolve applies the invoice rules: an A invoice needs an explicit customer
// id; a B invoice takes the id, else a name (found case-insensitively or
// created), else the walk-in customer. s must be bound to the caller's
// transaction so a created customer commits or rolls back with the sale.
func (r *Resolver) Resolve(s Store, invoiceType models.InvoiceType, customerID *uint, customerName string) (*models.Customer, error) {
	if invoiceType == models.InvoiceTypeA {
		if customerID == nil {
			return nil, apperr.Invalid("CUSTOMER_REQUIRED", "an A invoice requires a customer")
		}
		return byID(s, *customerID)
	}

	if customerID != nil {
		return byID(s, *customerID)
	}

	if name := strings.TrimSpace(customerName); name != "" {
		c, err := s.CustomerByName(name)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCustomerNotFound) {
			return nil, apperr.Internal(err, "find customer by name")
		}
		c = &models.Customer{Name: name, Active: true}
		if err := s.CreateCustomer(c); err != nil {
			return nil, apperr.Internal(err, "create customer")
		}
		return c, nil
	}

	c, err := s.CustomerByID(r.walkInID)
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, apperr.Internal(fmt.Errorf("%w (id=%d)", ErrWalkInMissing, r.walkInID), "resolve walk-in customer")
	}
	if err != nil {
		return nil, apperr.Internal(err, "resolve walk-in customer")
	}
	return c, nil
}

func byID(s Store, id uint) (*models.Customer, error) {
	c, err := s.CustomerByID(id)
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, apperr.Invalid("CUSTOMER_NOT_FOUND", "customer not found with id %d", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load customer")
	}
	return c, nil
}
