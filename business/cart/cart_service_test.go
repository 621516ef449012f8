package cart

import (
	"context"
	"errors"
	"testing"

	"agroMarket/domain"

	"github.com/shopspring/decimal"
)

type fakeProducts map[uint64]domain.Product

func (f fakeProducts) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := f[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f fakeProducts) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSessions struct {
	saved []domain.Cart
	err   error
}

func (f *fakeSessions) Save(_ context.Context, s *domain.Session) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s.Cart)
	return nil
}

func catalog() fakeProducts {
	return fakeProducts{
		1: {ID: 1, Name: "Tomatoes", Price: decimal.RequireFromString("2.50"), Stock: 5},
		2: {ID: 2, Name: "Maize", Price: decimal.RequireFromString("1.00"), Stock: 3},
	}
}

func TestAddToCartMergesQuantities(t *testing.T) {
	sessions := &fakeSessions{}
	svc := NewCartService(catalog(), sessions, 0)
	sess := &domain.Session{ID: "s", UserID: 9, Role: domain.RoleCustomer}

	if err := svc.AddToCart(context.Background(), sess, 1, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.AddToCart(context.Background(), sess, 1, 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(sess.Cart.Lines) != 1 || sess.Cart.Quantity(1) != 5 {
		t.Fatalf("expected one line of 5, got %+v", sess.Cart.Lines)
	}
	if len(sessions.saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(sessions.saved))
	}
}

func TestAddToCartRejectsUnknownProduct(t *testing.T) {
	sessions := &fakeSessions{}
	svc := NewCartService(catalog(), sessions, 0)
	sess := &domain.Session{ID: "s"}

	err := svc.AddToCart(context.Background(), sess, 42, 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if !sess.Cart.IsEmpty() || len(sessions.saved) != 0 {
		t.Fatal("cart changed for unknown product")
	}
}

func TestAddToCartRejectsBadQuantity(t *testing.T) {
	svc := NewCartService(catalog(), &fakeSessions{}, 0)
	sess := &domain.Session{ID: "s"}

	if err := svc.AddToCart(context.Background(), sess, 1, 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestAddToCartKeepsCartWhenSaveFails(t *testing.T) {
	boom := errors.New("redis down")
	svc := NewCartService(catalog(), &fakeSessions{err: boom}, 0)
	sess := &domain.Session{ID: "s", Cart: domain.Cart{Lines: []domain.CartLine{{ProductID: 1, Quantity: 1}}}}

	if err := svc.AddToCart(context.Background(), sess, 1, 2); !errors.Is(err, boom) {
		t.Fatalf("expected save error, got %v", err)
	}
	if sess.Cart.Quantity(1) != 1 {
		t.Fatalf("cart mutated on failed save: %+v", sess.Cart.Lines)
	}
}

func TestAddToCartHonoursLineLimit(t *testing.T) {
	svc := NewCartService(catalog(), &fakeSessions{}, 1)
	sess := &domain.Session{ID: "s"}

	if err := svc.AddToCart(context.Background(), sess, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddToCart(context.Background(), sess, 2, 1); !errors.Is(err, domain.ErrCartFull) {
		t.Fatalf("expected ErrCartFull, got %v", err)
	}
}

func TestRemoveFromCart(t *testing.T) {
	sessions := &fakeSessions{}
	svc := NewCartService(catalog(), sessions, 0)
	sess := &domain.Session{ID: "s", Cart: domain.Cart{Lines: []domain.CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}}}

	if err := svc.RemoveFromCart(context.Background(), sess, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if sess.Cart.Quantity(1) != 0 || sess.Cart.Quantity(2) != 1 {
		t.Fatalf("unexpected cart %+v", sess.Cart.Lines)
	}

	if err := svc.RemoveFromCart(context.Background(), sess, 77); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if len(sessions.saved) != 1 {
		t.Fatalf("absent remove should not save, saves=%d", len(sessions.saved))
	}
}

func TestViewDropsVanishedProducts(t *testing.T) {
	svc := NewCartService(catalog(), &fakeSessions{}, 0)
	cart := domain.Cart{Lines: []domain.CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 99, Quantity: 1},
		{ProductID: 2, Quantity: 4},
	}}

	view, err := svc.View(context.Background(), cart)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(view.Items))
	}
	if !view.GrandTotal.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("unexpected total %s", view.GrandTotal)
	}
	if view.Items[1].InStock() {
		t.Fatal("maize quantity 4 over stock 3 should not be in stock")
	}
	if len(cart.Lines) != 3 {
		t.Fatal("view must not mutate the stored cart")
	}
}
