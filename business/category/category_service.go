package category

import (
	"context"
	"fmt"

	"agroMarket/domain"
	"agroMarket/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctLocations(ctx context.Context) ([]string, error)
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

// GetFacets returns the category and location values offered by the search form.
func (s *categoryService) GetFacets(ctx context.Context) (domain.CatalogFacets, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get catalog facets")
		return domain.CatalogFacets{}, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.DistinctCategories(ctx)
	if err != nil {
		logger.Error("Failed to find categories", err)
		return domain.CatalogFacets{}, err
	}

	locations, err := s.categoryRepo.DistinctLocations(ctx)
	if err != nil {
		logger.Error("Failed to find locations", err)
		return domain.CatalogFacets{}, err
	}

	return domain.CatalogFacets{Categories: categories, Locations: locations}, nil
}
