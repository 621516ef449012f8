package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"agroMarket/domain"
	"agroMarket/internal/middleware"
	"agroMarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

type CartService interface {
	AddToCart(ctx context.Context, session *domain.Session, productID uint64, quantity int) error
	RemoveFromCart(ctx context.Context, session *domain.Session, productID uint64) error
	ReplaceCart(ctx context.Context, session *domain.Session, cart domain.Cart) error
	View(ctx context.Context, cart domain.Cart) (domain.CartView, error)
}

type CartHandler struct {
	cartService CartService
	timeout     time.Duration
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		timeout:     defaultTimeout,
	}
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	session := middleware.CurrentSession(c)

	productID, err := parseID(c, "product_id")
	if err != nil {
		return redirectWithFlash(c, "/dashboard/customer", domain.FlashDanger, "Product not found.")
	}

	quantity := 1
	if raw := c.FormValue("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			return redirectWithFlash(c, "/dashboard/customer", domain.FlashDanger, "Quantity must be a whole number.")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.AddToCart(ctx, session, productID, quantity); err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return redirectWithFlash(c, "/dashboard/customer", domain.FlashDanger, "Product not found.")
		case errors.Is(err, domain.ErrInvalidQuantity):
			return redirectWithFlash(c, "/dashboard/customer", domain.FlashDanger, "Quantity must be between 1 and 999.")
		case errors.Is(err, domain.ErrCartFull):
			return redirectWithFlash(c, "/cart", domain.FlashWarning, "Your cart is full. Check out or remove something first.")
		case errors.Is(err, domain.ErrSessionNotFound):
			middleware.ClearSessionCookie(c)
			return c.Redirect(http.StatusFound, "/login")
		}
		logger.Error("Failed to add to cart", err)
		return redirectWithFlash(c, "/dashboard/customer", domain.FlashDanger, "Could not update your cart.")
	}

	return redirectWithFlash(c, "/dashboard/customer", domain.FlashSuccess, "Added to cart!")
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	session := middleware.CurrentSession(c)

	productID, err := parseID(c, "product_id")
	if err != nil {
		return c.Redirect(http.StatusFound, "/cart")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.RemoveFromCart(ctx, session, productID); err != nil {
		logger.Error("Failed to remove from cart", err)
		return redirectWithFlash(c, "/cart", domain.FlashDanger, "Could not update your cart.")
	}

	return redirectWithFlash(c, "/cart", domain.FlashInfo, "Item removed from cart.")
}

func (h *CartHandler) ViewCart(c echo.Context) error {
	session := middleware.CurrentSession(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	view, err := h.cartService.View(ctx, session.Cart)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load your cart.")
	}

	return c.Render(http.StatusOK, "cart", view)
}
