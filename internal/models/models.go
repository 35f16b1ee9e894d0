package models

import (
	"time"
)

const (
	RoleBuyer = "buyer"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"unique;not null"          json:"email"`
	Password  string    `gorm:"not null"                 json:"-"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Answer    string    `gorm:"not null"                 json:"-"`
	Role      string    `gorm:"not null;default:buyer"   json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
	Slug string `gorm:"index"                    json:"slug"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  uint      `gorm:"index"                    json:"category_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Slug        string    `gorm:"index"                    json:"slug"`
	Description string    `gorm:"not null"                 json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Quantity    uint      `json:"quantity"`
	Shipping    bool      `json:"shipping"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
