package router

import (
	"agroMarket/domain"
	"agroMarket/internal/middleware"
	"agroMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupPageRoutes(e *echo.Echo, handler *rest.PageHandler) {
	e.GET("/", handler.Home)
	e.GET("/about", handler.About)
	e.GET("/healthz", handler.Healthz)
}

// SetupAuthRoutes registers the account routes. authLimit guards the POST endpoints.
func SetupAuthRoutes(e *echo.Echo, handler *rest.UserHandler, authLimit echo.MiddlewareFunc) {
	e.GET("/register", handler.ShowRegister)
	e.POST("/register", handler.Register, authLimit)
	e.GET("/login", handler.ShowLogin)
	e.POST("/login", handler.Login, authLimit)
	e.GET("/logout", handler.Logout)
}

func SetupFarmerRoutes(e *echo.Echo, products *rest.ProductHandler, orders *rest.OrdersHandler, uploadLimit echo.MiddlewareFunc) {
	farmer := middleware.RequireRole(domain.RoleFarmer)

	e.GET("/dashboard/farmer", products.FarmerDashboard, farmer)
	e.GET("/add-product", products.ShowAddProduct, farmer)
	e.POST("/add-product", products.AddProduct, farmer, uploadLimit)
	e.GET("/edit-product/:id", products.ShowEditProduct, farmer)
	e.POST("/edit-product/:id", products.EditProduct, farmer, uploadLimit)
	e.GET("/delete-product/:id", products.DeleteProduct, farmer)
	e.GET("/farmer-orders", orders.FarmerOrders, farmer)
	e.POST("/order/deliver/:order_id", orders.MarkDelivered, farmer)
}

func SetupCustomerRoutes(e *echo.Echo, products *rest.ProductHandler, cart *rest.CartHandler, orders *rest.OrdersHandler) {
	customer := middleware.RequireRole(domain.RoleCustomer)

	e.GET("/dashboard/customer", products.CustomerDashboard, customer)
	e.POST("/add-to-cart/:product_id", cart.AddToCart, customer)
	e.GET("/remove-from-cart/:product_id", cart.RemoveFromCart, customer)
	e.GET("/cart", cart.ViewCart, customer)
	e.GET("/checkout", orders.ShowCheckout, customer)
	e.POST("/checkout", orders.Checkout, customer)
	e.GET("/place-order", orders.PlaceOrder, customer)
	e.GET("/orders", orders.CustomerOrders, customer)
}

func SetupAdminRoutes(e *echo.Echo, handler *rest.AdminHandler) {
	admin := middleware.RequireRole(domain.RoleAdmin)

	e.GET("/dashboard/admin", handler.Dashboard, admin)
	e.GET("/delete-user/:id", handler.DeleteUser, admin)
	e.GET("/delete-product-admin/:id", handler.DeleteProduct, admin)
}

func SetupAPIRoutes(api *echo.Group, products *rest.ProductHandler) {
	api.GET("/products", products.ListProducts)
}
