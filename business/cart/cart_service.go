package cart

import (
	"context"
	"errors"
	"fmt"

	"agroMarket/domain"
	"agroMarket/pkg/logger"

	"github.com/shopspring/decimal"
)

// ProductRepository is the read side of the catalog the cart needs.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

// SessionStore persists the session that owns the cart.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
}

type cartService struct {
	productRepo ProductRepository
	sessions    SessionStore
	maxLines    int
}

func NewCartService(productRepo ProductRepository, sessions SessionStore, maxLines int) *cartService {
	return &cartService{
		productRepo: productRepo,
		sessions:    sessions,
		maxLines:    maxLines,
	}
}

// AddToCart merges quantity into the session cart. Unknown products are rejected.
func (s *cartService) AddToCart(ctx context.Context, session *domain.Session, productID uint64, quantity int) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when add to cart")
		return fmt.Errorf("context error: %w", err)
	}

	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			logger.Error("Failed to find product for cart", err)
		}
		return err
	}

	next := session.Cart
	next.Lines = append([]domain.CartLine(nil), session.Cart.Lines...)
	if err := next.Add(productID, quantity, s.maxLines); err != nil {
		logger.Warn("cart add rejected", "product_id", productID, "quantity", quantity, "error", err.Error())
		return err
	}

	return s.store(ctx, session, next)
}

// RemoveFromCart drops the line for productID. Missing lines are a no-op.
func (s *cartService) RemoveFromCart(ctx context.Context, session *domain.Session, productID uint64) error {
	if session.Cart.Quantity(productID) == 0 {
		return nil
	}

	next := domain.Cart{Lines: append([]domain.CartLine(nil), session.Cart.Lines...)}
	next.Remove(productID)

	return s.store(ctx, session, next)
}

// ReplaceCart stores cart as the session's cart, used after checkout.
func (s *cartService) ReplaceCart(ctx context.Context, session *domain.Session, cart domain.Cart) error {
	return s.store(ctx, session, cart)
}

func (s *cartService) store(ctx context.Context, session *domain.Session, cart domain.Cart) error {
	previous := session.Cart
	session.Cart = cart

	if err := s.sessions.Save(ctx, session); err != nil {
		session.Cart = previous
		logger.Error("failed to save cart", err)
		return err
	}

	return nil
}

// View joins each cart line against the live catalog. Lines whose product is gone are
// left out of the view but stay in the stored cart.
func (s *cartService) View(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	view := domain.CartView{GrandTotal: decimal.Zero}
	if cart.IsEmpty() {
		return view, nil
	}

	ids := make([]uint64, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("Failed to load cart products", err)
		return domain.CartView{}, err
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, l := range cart.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Items = append(view.Items, domain.CartItemView{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     p.Price,
			Quantity:  l.Quantity,
			Stock:     p.Stock,
			Subtotal:  subtotal,
		})
		view.GrandTotal = view.GrandTotal.Add(subtotal)
	}

	return view, nil
}
