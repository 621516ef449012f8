package domain

import (
	"errors"
	"testing"
)

func TestCartAddMergesLines(t *testing.T) {
	var c Cart

	if err := c.Add(7, 2, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(7, 3, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(c.Lines) != 1 || c.Quantity(7) != 5 {
		t.Fatalf("expected a single line of 5, got %+v", c.Lines)
	}
}

func TestCartAddRejects(t *testing.T) {
	tests := []struct {
		name     string
		start    Cart
		product  uint64
		quantity int
		maxLines int
		want     error
	}{
		{name: "zero quantity", product: 1, quantity: 0, want: ErrInvalidQuantity},
		{name: "negative quantity", product: 1, quantity: -2, want: ErrInvalidQuantity},
		{name: "over line cap", product: 1, quantity: MaxLineQuantity + 1, want: ErrInvalidQuantity},
		{
			name:     "merge over line cap",
			start:    Cart{Lines: []CartLine{{ProductID: 1, Quantity: MaxLineQuantity}}},
			product:  1,
			quantity: 1,
			want:     ErrInvalidQuantity,
		},
		{
			name:     "cart full",
			start:    Cart{Lines: []CartLine{{ProductID: 1, Quantity: 1}}},
			product:  2,
			quantity: 1,
			maxLines: 1,
			want:     ErrCartFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.start
			before := len(c.Lines)
			if err := c.Add(tt.product, tt.quantity, tt.maxLines); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(c.Lines) != before {
				t.Fatalf("cart changed on rejected add: %+v", c.Lines)
			}
		})
	}
}

func TestCartFullStillMergesExistingLine(t *testing.T) {
	c := Cart{Lines: []CartLine{{ProductID: 1, Quantity: 1}}}

	if err := c.Add(1, 4, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.Quantity(1) != 5 {
		t.Fatalf("expected 5, got %d", c.Quantity(1))
	}
}

func TestCartRemove(t *testing.T) {
	c := Cart{Lines: []CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}}}

	c.Remove(1)
	if c.Quantity(1) != 0 || c.Quantity(2) != 3 || len(c.Lines) != 1 {
		t.Fatalf("unexpected lines %+v", c.Lines)
	}

	c.Remove(99)
	if len(c.Lines) != 1 {
		t.Fatalf("removing an absent product changed the cart: %+v", c.Lines)
	}

	c.Remove(2)
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", c.Lines)
	}
}
