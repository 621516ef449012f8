package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"agroMarket/business/product"
	"agroMarket/domain"
	"agroMarket/internal/middleware"
	"agroMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	AddProduct(ctx context.Context, farmerID uint, in product.ProductInput, image *domain.ImageUpload) (*domain.Product, error)
	GetOwnedProduct(ctx context.Context, id uint64, farmerID uint) (*domain.Product, error)
	EditProduct(ctx context.Context, id uint64, farmerID uint, in product.ProductInput, image *domain.ImageUpload) (*domain.Product, error)
	DeleteOwnedProduct(ctx context.Context, id uint64, farmerID uint) error
	GetFarmerProducts(ctx context.Context, farmerID uint) ([]domain.Product, error)
	SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

type CategoryService interface {
	GetFacets(ctx context.Context) (domain.CatalogFacets, error)
}

type ProductHandler struct {
	productService  ProductService
	categoryService CategoryService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewProductHandler(productService ProductService, categoryService CategoryService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		categoryService: categoryService,
		validator:       validator.New(),
		timeout:         defaultTimeout,
	}
}

// ProductRequest is the add and edit form. Numbers stay strings so a rejected form re-renders as typed.
type ProductRequest struct {
	Name        string `form:"name" validate:"required,max=200"`
	Category    string `form:"category" validate:"required,max=100"`
	Price       string `form:"price" validate:"required,numeric"`
	Stock       string `form:"stock" validate:"required,number"`
	Location    string `form:"location" validate:"max=150"`
	Description string `form:"description"`
}

// ProductForm is the data of the add and edit pages.
type ProductForm struct {
	ID uint64
	ProductRequest
	Image string
}

type FarmerDashboard struct {
	Products []domain.Product
}

type CustomerDashboard struct {
	Products  []domain.Product
	Facets    domain.CatalogFacets
	Filter    domain.ProductFilter
	CartCount int
}

func (r ProductRequest) toInput() (product.ProductInput, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return product.ProductInput{}, errors.New("price must be a number")
	}

	stock, err := strconv.Atoi(r.Stock)
	if err != nil {
		return product.ProductInput{}, errors.New("stock must be a whole number")
	}

	return product.ProductInput{
		Name:        r.Name,
		Category:    r.Category,
		Price:       price,
		Stock:       stock,
		Location:    r.Location,
		Description: r.Description,
	}, nil
}

func formFromProduct(p *domain.Product) ProductForm {
	return ProductForm{
		ID: p.ID,
		ProductRequest: ProductRequest{
			Name:        p.Name,
			Category:    p.Category,
			Price:       p.Price.StringFixed(2),
			Stock:       strconv.Itoa(p.Stock),
			Location:    p.Location,
			Description: p.Description,
		},
		Image: p.Image,
	}
}

// imageFromForm returns nil when no file was attached.
func imageFromForm(c echo.Context) (*domain.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Filename == "" {
		return nil, nil
	}

	return &domain.ImageUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}, nil
}

func (h *ProductHandler) bindProduct(c echo.Context) (ProductRequest, product.ProductInput, error) {
	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return req, product.ProductInput{}, errors.New("invalid product form")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product request", err)
		return req, product.ProductInput{}, errors.New("please fill in name, category, price and stock")
	}

	in, err := req.toInput()
	return req, in, err
}

func (h *ProductHandler) FarmerDashboard(c echo.Context) error {
	session := middleware.CurrentSession(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.GetFarmerProducts(ctx, session.UserID)
	if err != nil {
		logger.Error("Failed to find farmer products", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load your products.")
	}

	return c.Render(http.StatusOK, "dashboard_farmer", FarmerDashboard{Products: products})
}

func (h *ProductHandler) ShowAddProduct(c echo.Context) error {
	return c.Render(http.StatusOK, "add_product", ProductForm{})
}

func (h *ProductHandler) AddProduct(c echo.Context) error {
	session := middleware.CurrentSession(c)

	req, in, err := h.bindProduct(c)
	if err != nil {
		middleware.AddFlash(c, domain.FlashDanger, err.Error())
		return c.Render(http.StatusBadRequest, "add_product", ProductForm{ProductRequest: req})
	}

	image, err := imageFromForm(c)
	if err != nil {
		logger.Error("Failed to read uploaded image", err)
		middleware.AddFlash(c, domain.FlashDanger, "Invalid image format!")
		return c.Render(http.StatusBadRequest, "add_product", ProductForm{ProductRequest: req})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.productService.AddProduct(ctx, session.UserID, in, image); err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			middleware.AddFlash(c, domain.FlashDanger, "Invalid image format!")
			return c.Render(http.StatusBadRequest, "add_product", ProductForm{ProductRequest: req})
		}
		logger.Error("Failed to create Product", err)
		middleware.AddFlash(c, domain.FlashDanger, "Could not save the product: "+err.Error())
		return c.Render(http.StatusUnprocessableEntity, "add_product", ProductForm{ProductRequest: req})
	}

	return redirectWithFlash(c, "/dashboard/farmer", domain.FlashSuccess, "Product added!")
}

func (h *ProductHandler) ShowEditProduct(c echo.Context) error {
	session := middleware.CurrentSession(c)

	id, err := parseID(c, "id")
	if err != nil {
		return redirectWithFlash(c, "/dashboard/farmer", domain.FlashDanger, "Product not found or unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.productService.GetOwnedProduct(ctx, id, session.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFoundOrUnauthorized) {
			logger.Error("Failed to load product", err)
		}
		return redirectWithFlash(c, "/dashboard/farmer", domain.FlashDanger, "Product not found or unauthorized")
	}

	return c.Render(http.StatusOK, "edit_product", formFromProduct(p))
}

func (h *ProductHandler) EditProduct(c echo.Context) error {
	session := middleware.CurrentSession(c)

	id, err := parseID(c, "id")
	if err != nil {
		return redirectWithFlash(c, "/dashboard/farmer", domain.FlashDanger, "Product not found or unauthorized")
	}

	req, in, err := h.bindProduct(c)
	if err != nil {
		middleware.AddFlash(c, domain.FlashDanger, err.Error())
		return c.Render(http.StatusBadRequest, "edit_product", ProductForm{ID: id, ProductRequest: req})
	}

	image, err := imageFromForm(c)
	if err != nil {
		logger.Error("Failed to read uploaded image", err)
		middleware.AddFlash(c, domain.FlashDanger, "Invalid image format!")
		return c.Render(http.StatusBadRequest, "edit_product", ProductForm{ID: id, ProductRequest: req})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.productService.EditProduct(ctx, id, session.UserID, in, image); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFoundOrUnauthorized):
			return redirectWithFlash(c, "/dashboard/farmer", domain.FlashDanger, "Product not found or unauthorized")
		case errors.Is(err, domain.ErrInvalidImage):
			middleware.AddFlash(c, domain.FlashDanger, "Invalid image format!")
			return c.Render(http.StatusBadRequest, "edit_product", ProductForm{ID: id, ProductRequest: req})
		}
		logger.Error("Failed to update Product", err)
		middleware.AddFlash(c, domain.FlashDanger, "Could not update the product: "+err.Error())
		return c.Render(http.StatusUnprocessableEntity, "edit_product", ProductForm{ID: id, ProductRequest: req})
	}

	return redirectWithFlash(c, "/dashboard/farmer", domain.FlashSuccess, "Product updated successfully!")
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	session := middleware.CurrentSession(c)

	id, err := parseID(c, "id")
	if err != nil {
		return redirectWithFlash(c, "/dashboard/farmer", domain.FlashDanger, "Product not found or unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteOwnedProduct(ctx, id, session.UserID); err != nil {
		logger.Error("Failed to delete Product", err)
		return redirectWithFlash(c, "/dashboard/farmer", domain.FlashDanger, "Could not delete the product.")
	}

	return redirectWithFlash(c, "/dashboard/farmer", domain.FlashInfo, "Product deleted permanently!")
}

func filterFromQuery(c echo.Context) domain.ProductFilter {
	return domain.ProductFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Location: c.QueryParam("location"),
	}
}

func (h *ProductHandler) CustomerDashboard(c echo.Context) error {
	session := middleware.CurrentSession(c)
	filter := filterFromQuery(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.SearchProducts(ctx, filter)
	if err != nil {
		logger.Error("Failed to search products", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load products.")
	}

	facets, err := h.categoryService.GetFacets(ctx)
	if err != nil {
		// the page still works without the filter options
		logger.Warn("Failed to load catalog facets", err)
	}

	return c.Render(http.StatusOK, "dashboard_customer", CustomerDashboard{
		Products:  products,
		Facets:    facets,
		Filter:    filter,
		CartCount: len(session.Cart.Lines),
	})
}

// ListProducts is the public JSON catalog search.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.SearchProducts(ctx, filterFromQuery(c))
	if err != nil {
		logger.Error("Failed to search products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to list products"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}
