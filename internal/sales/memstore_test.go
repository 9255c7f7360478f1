package sales

import (
	"context"
	"maps"
	"strings"
	"sync"

	"erp-backend/internal/catalog"
	"erp-backend/internal/customer"
	"erp-backend/internal/models"

	"github.com/shopspring/decimal"
)

// interference simulates another writer committing a product between this
// transaction's read and write: the version moves and steal units leave.
type interference struct {
	times int
	steal int
}

// memStore is a transactional in-memory Store. Transactions are serialized;
// writes are staged and only become visible on commit.
type memStore struct {
	mu        sync.Mutex
	products  map[uint]models.Product
	customers map[uint]models.Customer
	sales     []models.Sale
	nextID    uint
	interfere map[uint]*interference
	failSale  error
	failSave  error
	saves     int
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[uint]models.Product{},
		customers: map[uint]models.Customer{1: {ID: 1, Name: "Consumidor Final", Active: true}},
		nextID:    100,
		interfere: map[uint]*interference{},
	}
}

func (m *memStore) addProduct(id uint, name string, stock int, price string) {
	m.products[id] = models.Product{
		ID:        id,
		SKU:       "SKU-" + name,
		Name:      name,
		SalePrice: decimal.RequireFromString(price),
		Stock:     stock,
		Active:    true,
	}
}

func (m *memStore) stock(id uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

func (m *memStore) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		m:         m,
		products:  maps.Clone(m.products),
		customers: maps.Clone(m.customers),
		nextID:    m.nextID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.products = tx.products
	m.customers = tx.customers
	m.sales = append(m.sales, tx.sales...)
	m.nextID = tx.nextID
	return nil
}

type memTx struct {
	m         *memStore
	products  map[uint]models.Product
	customers map[uint]models.Customer
	sales     []models.Sale
	nextID    uint
}

var _ Tx = (*memTx)(nil)

func (t *memTx) ProductByID(id uint) (*models.Product, error) {
	p, ok := t.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (t *memTx) SaveProduct(p *models.Product) error {
	t.m.saves++
	if t.m.failSave != nil {
		return t.m.failSave
	}
	if in := t.m.interfere[p.ID]; in != nil && in.times > 0 {
		in.times--
		for _, view := range []map[uint]models.Product{t.products, t.m.products} {
			other := view[p.ID]
			other.Version++
			other.Stock -= in.steal
			view[p.ID] = other
		}
		return catalog.ErrConcurrentModification
	}

	stored, ok := t.products[p.ID]
	if !ok || stored.Version != p.Version {
		return catalog.ErrConcurrentModification
	}
	if p.Stock < 0 {
		panic("stock driven negative")
	}
	p.Version++
	t.products[p.ID] = *p
	return nil
}

func (t *memTx) CustomerByID(id uint) (*models.Customer, error) {
	c, ok := t.customers[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	return &c, nil
}

func (t *memTx) CustomerByName(name string) (*models.Customer, error) {
	var found *models.Customer
	for _, c := range t.customers {
		if strings.EqualFold(c.Name, name) && (found == nil || c.ID < found.ID) {
			cp := c
			found = &cp
		}
	}
	if found == nil {
		return nil, customer.ErrCustomerNotFound
	}
	return found, nil
}

func (t *memTx) CreateCustomer(c *models.Customer) error {
	t.nextID++
	c.ID = t.nextID
	t.customers[c.ID] = *c
	return nil
}

func (t *memTx) CreateSale(s *models.Sale) error {
	if t.m.failSale != nil {
		return t.m.failSale
	}
	t.nextID++
	s.ID = t.nextID
	for i := range s.Items {
		t.nextID++
		s.Items[i].ID = t.nextID
		s.Items[i].SaleID = s.ID
	}
	t.sales = append(t.sales, *s)
	return nil
}
