package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agroMarket/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// FindByIDs loads every product in ids, missing ids are simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// FindOwned returns the product only when farmerID owns it.
func (r *ProductRepository) FindOwned(ctx context.Context, id uint64, farmerID uint) (domain.Product, error) {
	var product domain.Product

	err := r.DB.WithContext(ctx).Where("id = ? AND farmer_id = ?", id, farmerID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrNotFoundOrUnauthorized
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) FindByFarmer(ctx context.Context, farmerID uint) ([]domain.Product, error) {
	var products []domain.Product

	err := r.DB.WithContext(ctx).Where("farmer_id = ?", farmerID).Order("id DESC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find farmer products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Search(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Model(&domain.Product{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(category) LIKE ?)", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}

	var products []domain.Product
	if err := query.Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return products, nil
}

// UpdateOwned writes every editable field. An empty image keeps the stored file name.
func (r *ProductRepository) UpdateOwned(ctx context.Context, product *domain.Product) error {
	updateData := map[string]interface{}{
		"name":        product.Name,
		"category":    product.Category,
		"price":       product.Price,
		"stock":       product.Stock,
		"location":    product.Location,
		"description": product.Description,
	}
	if product.Image != "" {
		updateData["image"] = product.Image
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND farmer_id = ?", product.ID, product.FarmerID).
		Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}

	return nil
}

// DeleteOwned is a no-op when nothing matches.
func (r *ProductRepository) DeleteOwned(ctx context.Context, id uint64, farmerID uint) error {
	result := r.DB.WithContext(ctx).Where("id = ? AND farmer_id = ?", id, farmerID).Delete(&domain.Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}

	return nil
}

// FindAllWithOwner joins every product to its farmer's username for the admin overview.
func (r *ProductRepository) FindAllWithOwner(ctx context.Context) ([]domain.ProductWithOwner, error) {
	var rows []domain.ProductWithOwner

	err := r.DB.WithContext(ctx).
		Table("products p").
		Select("p.id, p.name, p.category, p.price, p.stock, COALESCE(u.username, '') AS farmer_username").
		Joins("LEFT JOIN users u ON u.id = p.farmer_id").
		Order("p.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return rows, nil
}
