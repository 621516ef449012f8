package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"agroMarket/domain"
	"agroMarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AdminService interface {
	Dashboard(ctx context.Context) (domain.AdminDashboard, error)
}

type UserAdminService interface {
	DeleteUser(ctx context.Context, id uint) error
}

type ProductAdminService interface {
	DeleteProduct(ctx context.Context, id uint64) error
}

type AdminHandler struct {
	adminService   AdminService
	userService    UserAdminService
	productService ProductAdminService
	timeout        time.Duration
}

func NewAdminHandler(adminService AdminService, userService UserAdminService, productService ProductAdminService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		userService:    userService,
		productService: productService,
		timeout:        defaultTimeout,
	}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	dash, err := h.adminService.Dashboard(ctx)
	if err != nil {
		logger.Error("Failed to load admin dashboard", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load the dashboard.")
	}

	return c.Render(http.StatusOK, "dashboard_admin", dash)
}

// DeleteUser never removes admin accounts.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return redirectWithFlash(c, "/dashboard/admin", domain.FlashDanger, "User not found.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.DeleteUser(ctx, uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrProtectedUser):
			return redirectWithFlash(c, "/dashboard/admin", domain.FlashWarning, "Admin accounts cannot be deleted.")
		case errors.Is(err, domain.ErrUserNotFound):
			return redirectWithFlash(c, "/dashboard/admin", domain.FlashDanger, "User not found.")
		}
		logger.Error("Failed to delete user", err)
		return redirectWithFlash(c, "/dashboard/admin", domain.FlashDanger, "Could not delete the user.")
	}

	return redirectWithFlash(c, "/dashboard/admin", domain.FlashInfo, "User deleted successfully.")
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return redirectWithFlash(c, "/dashboard/admin", domain.FlashDanger, "Product not found.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		logger.Error("Failed to delete product", err)
		return redirectWithFlash(c, "/dashboard/admin", domain.FlashDanger, "Could not delete the product.")
	}

	return redirectWithFlash(c, "/dashboard/admin", domain.FlashInfo, "Product deleted successfully.")
}
