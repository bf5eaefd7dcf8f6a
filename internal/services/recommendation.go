package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/pkg/recommender"
)

type RecommendationService interface {
	GetRecommendations(ctx context.Context, productName string) ([]*models.Product, error)
}

type recommendationService struct {
	productRepo repository.ProductRepository
	client      recommender.Client
}

func NewRecommendationService(productRepo repository.ProductRepository, client recommender.Client) RecommendationService {
	return &recommendationService{productRepo: productRepo, client: client}
}

// GetRecommendations matches the seed product by name, asks the external
// scoring service for similar titles and filters the catalog down to them.
// The scoring service is a synchronous dependency; its failure surfaces as
// ServiceUnavailable instead of failing the whole process.
func (s *recommendationService) GetRecommendations(ctx context.Context, productName string) ([]*models.Product, error) {

	if productName == "" {
		return nil, appErrors.ValidationError("Product name is required")
	}

	seed, err := s.productRepo.GetProductByName(ctx, productName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("No product matches: " + productName).WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to look up product").WithError(err)
	}

	names, err := s.client.Recommend(ctx, seed.Name)
	if err != nil {
		return nil, appErrors.ServiceUnavailableError("Recommendation service unavailable").WithError(err)
	}

	if len(names) == 0 {
		return []*models.Product{}, nil
	}

	products, err := s.productRepo.ListProductsByNameFragments(ctx, names)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch recommended products").WithError(err)
	}

	return products, nil
}
