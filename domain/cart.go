package domain

import "github.com/shopspring/decimal"

const (
	DefaultCartMaxLines = 50
	MaxLineQuantity     = 999
)

// CartLine is a product reference held in the session, never persisted to the database.
type CartLine struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart holds at most one line per product.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the quantity held for productID, zero when absent.
func (c Cart) Quantity(productID uint64) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Add merges quantity into an existing line or appends a new one.
// maxLines <= 0 means DefaultCartMaxLines.
func (c *Cart) Add(productID uint64, quantity, maxLines int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if maxLines <= 0 {
		maxLines = DefaultCartMaxLines
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			if c.Lines[i].Quantity+quantity > MaxLineQuantity {
				return ErrInvalidQuantity
			}
			c.Lines[i].Quantity += quantity
			return nil
		}
	}

	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if len(c.Lines) >= maxLines {
		return ErrCartFull
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity})
	return nil
}

// Remove drops the line for productID. Absent ids are a no-op.
func (c *Cart) Remove(productID uint64) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

// CartItemView is a cart line re-joined against the live catalog.
type CartItemView struct {
	ProductID uint64
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int
	Stock     int
	Subtotal  decimal.Decimal
}

func (v CartItemView) InStock() bool {
	return v.Stock >= v.Quantity
}

type CartView struct {
	Items      []CartItemView
	GrandTotal decimal.Decimal
}
