package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:200;not null"`
	Role         UserRole `gorm:"size:16;not null;default:'USER'"`
	Active       bool     `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
