package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agroMarket/domain"
	"agroMarket/pkg/logger"
	"agroMarket/pkg/utils"

	"github.com/shopspring/decimal"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindOwned(ctx context.Context, id uint64, farmerID uint) (domain.Product, error)
	FindByFarmer(ctx context.Context, farmerID uint) ([]domain.Product, error)
	Search(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	UpdateOwned(ctx context.Context, product *domain.Product) error
	DeleteOwned(ctx context.Context, id uint64, farmerID uint) error
	Delete(ctx context.Context, id uint64) error
	FindAllWithOwner(ctx context.Context) ([]domain.ProductWithOwner, error)
}

// ImageStore persists uploaded product pictures
type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}

type productService struct {
	productRepo ProductRepository
	images      ImageStore
}

func NewProductService(productRepo ProductRepository, images ImageStore) *productService {
	return &productService{
		productRepo: productRepo,
		images:      images,
	}
}

// ProductInput carries the editable fields of the add and edit forms.
type ProductInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Location    string
	Description string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("product name is required")
	}

	if strings.TrimSpace(in.Category) == "" {
		return errors.New("product category is required")
	}

	if !in.Price.IsPositive() {
		return errors.New("price must be greater than 0")
	}

	if in.Stock < 0 {
		return errors.New("stock cannot be negative")
	}

	return nil
}

func (in ProductInput) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price.Round(2)
	p.Stock = in.Stock
	p.Location = strings.TrimSpace(in.Location)
	p.Description = strings.TrimSpace(in.Description)
}

func (s *productService) storeImage(ctx context.Context, image *domain.ImageUpload) (string, error) {
	f, err := image.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return s.images.Save(ctx, image.Filename, f)
}

// AddProduct stores the picture and inserts a product owned by farmerID.
// The image is mandatory and must be png, jpg or jpeg.
func (s *productService) AddProduct(ctx context.Context, farmerID uint, in ProductInput, image *domain.ImageUpload) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when add product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := in.validate(); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if image == nil || !utils.AllowedImage(image.Filename) {
		logger.Warn("Rejected product image", "farmer_id", farmerID)
		return nil, domain.ErrInvalidImage
	}

	filename, err := s.storeImage(ctx, image)
	if err != nil {
		logger.Error("failed to store product image", err)
		return nil, err
	}

	product := &domain.Product{FarmerID: farmerID, Image: filename}
	in.apply(product)

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		_ = s.images.Remove(ctx, filename)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created successfully", "product_id", product.ID, "farmer_id", farmerID)

	return product, nil
}

// GetOwnedProduct loads a product for the edit form.
func (s *productService) GetOwnedProduct(ctx context.Context, id uint64, farmerID uint) (*domain.Product, error) {
	product, err := s.productRepo.FindOwned(ctx, id, farmerID)
	if err != nil {
		logger.Warn("product not found or unauthorized", "product_id", id, "farmer_id", farmerID)
		return nil, err
	}

	return &product, nil
}

// EditProduct updates a product owned by farmerID. A nil image keeps the stored picture.
func (s *productService) EditProduct(ctx context.Context, id uint64, farmerID uint, in ProductInput, image *domain.ImageUpload) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	existing, err := s.productRepo.FindOwned(ctx, id, farmerID)
	if err != nil {
		logger.Warn("product not found or unauthorized", "product_id", id, "farmer_id", farmerID)
		return nil, err
	}

	if err := in.validate(); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	updated := existing
	in.apply(&updated)
	updated.Image = ""

	if image != nil {
		if !utils.AllowedImage(image.Filename) {
			logger.Warn("Rejected product image", "farmer_id", farmerID)
			return nil, domain.ErrInvalidImage
		}

		filename, err := s.storeImage(ctx, image)
		if err != nil {
			logger.Error("failed to store product image", err)
			return nil, err
		}
		updated.Image = filename
	}

	if err := s.productRepo.UpdateOwned(ctx, &updated); err != nil {
		logger.Error("failed to update product", err)
		if updated.Image != "" {
			s.removeImage(ctx, updated.Image)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	switch {
	case updated.Image == "":
		updated.Image = existing.Image
	case existing.Image != "":
		s.removeImage(ctx, existing.Image)
	}

	logger.Info("product updated success", "product_id", id)

	return &updated, nil
}

// DeleteOwnedProduct is idempotent: deleting a missing or foreign product does nothing.
func (s *productService) DeleteOwnedProduct(ctx context.Context, id uint64, farmerID uint) error {
	existing, err := s.productRepo.FindOwned(ctx, id, farmerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFoundOrUnauthorized) {
			logger.Warn("product to delete not found or unauthorized", "product_id", id, "farmer_id", farmerID)
			return nil
		}
		logger.Error("failed to find product", err)
		return err
	}

	if err := s.productRepo.DeleteOwned(ctx, id, farmerID); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	s.removeImage(ctx, existing.Image)

	logger.Info("product deleted", "product_id", id, "farmer_id", farmerID)
	return nil
}

// DeleteProduct is the admin path and ignores ownership.
func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("Invalid product id when deleting product")
		return errors.New("invalid product id")
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil
		}
		logger.Error("failed to find product", err)
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	s.removeImage(ctx, existing.Image)

	logger.Info("product deleted by admin", "product_id", id)
	return nil
}

// removeImage drops a stored picture. The product row is already settled, so a failure
// only leaves an orphaned file behind.
func (s *productService) removeImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.images.Remove(ctx, name); err != nil {
		logger.Warn("failed to remove product image", err, "image", name)
	}
}

func (s *productService) GetFarmerProducts(ctx context.Context, farmerID uint) ([]domain.Product, error) {
	products, err := s.productRepo.FindByFarmer(ctx, farmerID)
	if err != nil {
		logger.Error("Failed to find farmer products", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when searching products")
		return nil, fmt.Errorf("context error: %w", err)
	}

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Location = strings.TrimSpace(filter.Location)

	products, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		logger.Error("Failed to search products", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) GetAllWithOwner(ctx context.Context) ([]domain.ProductWithOwner, error) {
	products, err := s.productRepo.FindAllWithOwner(ctx)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	return products, nil
}
