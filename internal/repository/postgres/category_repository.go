package postgres

import (
	"context"
	"fmt"

	"agroMarket/domain"

	"gorm.io/gorm"
)

// CategoryRepository derives catalog facets from the products table. Categories are free
// text on each product, so there is no table of their own.
type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{
		DB: db,
	}
}

func (r *CategoryRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *CategoryRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "location")
}

func (r *CategoryRepository) distinct(ctx context.Context, column string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var values []string
	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where(column+" <> ''").
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", column, err)
	}

	return values, nil
}
