package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Phone        string `gorm:"size:20"`
	Address      string `gorm:"type:text"`
	Role         Role   `gorm:"type:varchar(20);not null"`
	Active       bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
	Slug string `gorm:"size:100;not null;uniqueIndex"`
}

// Product references its seller and category by ID only. Callers that need
// the seller or category resolve them through the user or catalog store.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Brand       string          `gorm:"size:100"`
	ImageURL    string
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;check:stock >= 0"`
	Active      bool            `gorm:"not null;index"`
	SellerID    uint            `gorm:"index;not null"`
	CategoryID  *uint           `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Quantity  int  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shipping is copied by value onto the order at checkout time.
type Shipping struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type Order struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"index;not null;uniqueIndex:idx_orders_user_idem,priority:1"`
	IdempotencyKey *string         `gorm:"size:255;uniqueIndex:idx_orders_user_idem,priority:2"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null"`
	PaymentMethod  string          `gorm:"size:40;not null"`
	Shipping       Shipping        `gorm:"embedded;embeddedPrefix:ship_"`
	Notes          string          `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	ProductID uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:255;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    ItemStatus      `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
