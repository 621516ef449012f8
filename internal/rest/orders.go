package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agroMarket/business/orders"
	"agroMarket/domain"
	"agroMarket/internal/middleware"
	"agroMarket/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type OrdersService interface {
	Checkout(ctx context.Context, customerID uint, cart domain.Cart, in orders.CheckoutInput) (domain.CheckoutReport, error)
	MarkDelivered(ctx context.Context, orderID uint64, farmerID uint) error
	GetCustomerOrders(ctx context.Context, customerID uint) ([]domain.CustomerOrder, error)
	GetFarmerOrders(ctx context.Context, farmerID uint) ([]domain.FarmerOrder, error)
}

const (
	cartSaveTimeout = 5 * time.Second

	// flashes share one cookie, keep it well under the browser's 4KB limit
	maxShortageFlashes = 5
	maxFlashNameLen    = 60
)

func shortName(res domain.LineResult) string {
	name := res.ProductName
	if name == "" {
		return fmt.Sprintf("product %d", res.Line.ProductID)
	}
	if r := []rune(name); len(r) > maxFlashNameLen {
		return string(r[:maxFlashNameLen]) + "..."
	}
	return name
}

type OrdersHandler struct {
	ordersService OrdersService
	cartService   CartService
	timeout       time.Duration
}

func NewOrdersHandler(ordersService OrdersService, cartService CartService) *OrdersHandler {
	return &OrdersHandler{
		ordersService: ordersService,
		cartService:   cartService,
		timeout:       defaultTimeout,
	}
}

type CheckoutPage struct {
	Cart  domain.CartView
	Token string
}

type CustomerOrdersPage struct {
	Orders []domain.CustomerOrder
}

type FarmerOrdersPage struct {
	Orders []domain.FarmerOrder
}

type CheckoutRequest struct {
	Address string `form:"address"`
	Note    string `form:"note"`
	Token   string `form:"checkout_token"`
}

func (h *OrdersHandler) ShowCheckout(c echo.Context) error {
	session := middleware.CurrentSession(c)

	if session.Cart.IsEmpty() {
		return redirectWithFlash(c, "/cart", domain.FlashWarning, "Your cart is empty.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	view, err := h.cartService.View(ctx, session.Cart)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load your cart.")
	}

	return c.Render(http.StatusOK, "checkout", CheckoutPage{Cart: view, Token: uuid.NewString()})
}

// Checkout runs the order placement for the whole session cart.
func (h *OrdersHandler) Checkout(c echo.Context) error {
	session := middleware.CurrentSession(c)

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return redirectWithFlash(c, "/checkout", domain.FlashDanger, "Invalid checkout form.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.ordersService.Checkout(ctx, session.UserID, session.Cart, orders.CheckoutInput{
		Address: strings.TrimSpace(req.Address),
		Note:    strings.TrimSpace(req.Note),
		Token:   req.Token,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			return redirectWithFlash(c, "/cart", domain.FlashWarning, "Your cart is empty.")
		case errors.Is(err, domain.ErrDuplicateCheckout):
			return redirectWithFlash(c, "/orders", domain.FlashInfo, "This order was already submitted.")
		}
		logger.Error("Checkout failed", err)
		return redirectWithFlash(c, "/cart", domain.FlashDanger, "Order failed and nothing was placed. Your cart is unchanged, please try again.")
	}

	// orders are committed: the cart update gets its own deadline even if the request's is spent
	saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), cartSaveTimeout)
	defer cancelSave()

	if err := h.cartService.ReplaceCart(saveCtx, session, report.RemainingCart()); err != nil {
		logger.Error("Failed to update cart after checkout", err)
	}

	shortages := report.Shortages()
	for i, res := range shortages {
		if i == maxShortageFlashes {
			middleware.AddFlash(c, domain.FlashDanger,
				fmt.Sprintf("%d more item(s) are short on stock and still in your cart.", len(shortages)-maxShortageFlashes))
			break
		}
		middleware.AddFlash(c, domain.FlashDanger,
			fmt.Sprintf("Not enough stock for %s: %d requested, %d available. It is still in your cart.", shortName(res), res.Line.Quantity, res.Available))
	}

	applied := report.AppliedCount()
	if applied == 0 {
		return redirectWithFlash(c, "/cart", domain.FlashWarning, "No order was placed.")
	}

	return redirectWithFlash(c, "/orders", domain.FlashSuccess,
		fmt.Sprintf("Order placed successfully! %d item(s), total %s. The respective farmer will contact you.", applied, report.Total.StringFixed(2)))
}

// PlaceOrder shares the checkout workflow.
func (h *OrdersHandler) PlaceOrder(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/checkout")
}

func (h *OrdersHandler) CustomerOrders(c echo.Context) error {
	session := middleware.CurrentSession(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.ordersService.GetCustomerOrders(ctx, session.UserID)
	if err != nil {
		logger.Error("Failed to find customer orders", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load your orders.")
	}

	return c.Render(http.StatusOK, "orders", CustomerOrdersPage{Orders: rows})
}

func (h *OrdersHandler) FarmerOrders(c echo.Context) error {
	session := middleware.CurrentSession(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.ordersService.GetFarmerOrders(ctx, session.UserID)
	if err != nil {
		logger.Error("Failed to find farmer orders", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load incoming orders.")
	}

	return c.Render(http.StatusOK, "farmer_orders", FarmerOrdersPage{Orders: rows})
}

func (h *OrdersHandler) MarkDelivered(c echo.Context) error {
	session := middleware.CurrentSession(c)

	id, err := parseID(c, "order_id")
	if err != nil {
		return redirectWithFlash(c, "/farmer-orders", domain.FlashDanger, "Order not found.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.ordersService.MarkDelivered(ctx, id, session.UserID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return redirectWithFlash(c, "/farmer-orders", domain.FlashDanger, "Order not found.")
		}
		logger.Error("Failed to mark order delivered", err)
		return redirectWithFlash(c, "/farmer-orders", domain.FlashDanger, "Could not update the order.")
	}

	return redirectWithFlash(c, "/farmer-orders", domain.FlashSuccess, "Order marked as delivered.")
}
