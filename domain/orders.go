package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
)

// CREATE TABLE orders (
//     id           BIGSERIAL PRIMARY KEY,
//     customer_id  BIGINT NOT NULL,
//     farmer_id    BIGINT NOT NULL,
//     product_id   BIGINT NOT NULL,
//     quantity     INTEGER NOT NULL,
//     total_price  NUMERIC(12,2),
//     address      TEXT,
//     note         TEXT,
//     order_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     status       TEXT NOT NULL DEFAULT 'pending'
// );

type Order struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID uint             `gorm:"column:customer_id;index;not null" json:"customer_id"`
	FarmerID   uint             `gorm:"column:farmer_id;index;not null" json:"farmer_id"`
	ProductID  uint64           `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity   int              `gorm:"column:quantity;not null" json:"quantity"`
	TotalPrice *decimal.Decimal `gorm:"column:total_price;type:numeric(12,2)" json:"total_price"`
	Address    string           `gorm:"column:address;type:text" json:"address"`
	Note       string           `gorm:"column:note;type:text" json:"note"`
	OrderDate  time.Time        `gorm:"column:order_date;autoCreateTime;index" json:"order_date"`
	Status     OrderStatus      `gorm:"column:status;size:16;default:pending;not null" json:"status"`
}

func (Order) TableName() string {
	return "orders"
}

// CustomerOrder is a row of the customer's "my orders" page.
type CustomerOrder struct {
	ID           uint64
	Quantity     int
	TotalPrice   *decimal.Decimal
	OrderDate    time.Time
	Status       OrderStatus
	ProductName  string
	ProductPrice decimal.NullDecimal
}

// FarmerOrder is a row of the farmer's incoming orders page.
type FarmerOrder struct {
	ID               uint64
	CustomerUsername string
	CustomerEmail    string
	CustomerWhatsapp string
	ProductName      string
	Quantity         int
	TotalPrice       *decimal.Decimal
	Address          string
	Note             string
	OrderDate        time.Time
	Status           OrderStatus
}

// AdminOrder is a row of the admin overview.
type AdminOrder struct {
	ID               uint64
	ProductName      string
	CustomerUsername string
	Quantity         int
	OrderDate        time.Time
	Status           OrderStatus
}

// OrderPlacedEvent is published for every order row a checkout commits.
type OrderPlacedEvent struct {
	OrderID    uint64          `json:"order_id"`
	CustomerID uint            `json:"customer_id"`
	FarmerID   uint            `json:"farmer_id"`
	ProductID  uint64          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// AdminDashboard is everything the admin overview page lists.
type AdminDashboard struct {
	Users    []User
	Products []ProductWithOwner
	Orders   []AdminOrder
}
