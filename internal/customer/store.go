package customer

import (
	"errors"
	"fmt"
	"strings"

	"erp-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrWalkInMissing means the reserved walk-in row is absent, which is a
	// deployment problem rather than a bad request.
	ErrWalkInMissing = errors.New("walk-in customer record is missing")
)

// Store is the customer contract used while resolving the billing party of a
// sale.
type Store interface {
	CustomerByID(id uint) (*models.Customer, error)
	// CustomerByName matches name case-insensitively and exactly.
	CustomerByName(name string) (*models.Customer, error)
	CreateCustomer(c *models.Customer) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CustomerByID(id uint) (*models.Customer, error) {
	var c models.Customer
	err := s.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load customer %d: %w", id, err)
	}
	return &c, nil
}

func (s *GormStore) CustomerByName(name string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(name)).Order("id asc").Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer by name: %w", err)
	}
	return &c, nil
}

func (s *GormStore) CreateCustomer(c *models.Customer) error {
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *GormStore) Save(c *models.Customer) error {
	if err := s.db.Save(c).Error; err != nil {
		return fmt.Errorf("save customer %d: %w", c.ID, err)
	}
	return nil
}

func (s *GormStore) Delete(c *models.Customer) error {
	if c.SupportsSoftDelete() {
		c.Active = false
		return s.Save(c)
	}
	if err := s.db.Delete(&models.Customer{}, c.ID).Error; err != nil {
		return fmt.Errorf("delete customer %d: %w", c.ID, err)
	}
	return nil
}

// VerifyWalkIn fails when the configured walk-in customer does not exist.
// The server refuses to start in that case.
func VerifyWalkIn(s Store, id uint) error {
	if _, err := s.CustomerByID(id); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return fmt.Errorf("%w (id=%d)", ErrWalkInMissing, id)
		}
		return err
	}
	return nil
}
