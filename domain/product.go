package domain

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// CREATE TABLE products (
//     id           BIGSERIAL PRIMARY KEY,
//     farmer_id    BIGINT NOT NULL,
//     name         TEXT NOT NULL,
//     category     TEXT NOT NULL,
//     price        NUMERIC(12,2) NOT NULL,
//     stock        INTEGER NOT NULL DEFAULT 0,
//     location     TEXT,
//     description  TEXT,
//     image        TEXT,
//     created_at   TIMESTAMPTZ,
//     updated_at   TIMESTAMPTZ
// );

type Product struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	FarmerID    uint            `gorm:"column:farmer_id;index;not null"`
	Name        string          `gorm:"column:name;size:200;not null"`
	Category    string          `gorm:"column:category;size:100;index;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	Location    string          `gorm:"column:location;size:150;index"`
	Description string          `gorm:"column:description;type:text"`
	Image       string          `gorm:"column:image;size:255"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter narrows the customer catalog.
// Query is a case-insensitive substring over name or category, the rest are exact matches.
type ProductFilter struct {
	Query    string
	Category string
	Location string
}

// ProductWithOwner is the admin listing row.
type ProductWithOwner struct {
	ID             uint64
	Name           string
	Category       string
	Price          decimal.Decimal
	Stock          int
	FarmerUsername string
}

// ImageUpload is an uploaded product picture before it is stored.
type ImageUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}
