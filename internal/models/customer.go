package models

import "time"

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:120;not null;index:idx_customers_name"`
	Email     string `gorm:"size:160"`
	Phone     string `gorm:"size:40"`
	Address   string `gorm:"size:255"`
	Active    bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Customer) SupportsSoftDelete() bool { return true }
