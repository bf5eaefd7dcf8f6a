package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/cache"
	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, req *models.CreateVariantRequest) (*models.Variant, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]*models.Variant, error)
	Restock(ctx context.Context, req *models.RestockRequest) (*models.Variant, error)
	RecalculateTotalStock(ctx context.Context) (int, error)
}

type productService struct {
	repo      repository.ProductRepository
	cache     cache.Cache
	sanitizer *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, productCache cache.Cache) ProductService {
	return &productService{
		repo:      repo,
		cache:     productCache,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		ID:          uuid.New(),
		CategoryID:  req.CategoryID,
		Name:        s.sanitizer.Sanitize(req.Name),
		Description: s.sanitizer.Sanitize(req.Description),
		Price:       req.Price,
		Rating:      req.Rating,
		Material:    s.sanitizer.Sanitize(req.Material),
		TotalStock:  0,
		Status:      "active",
	}

	err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	key := cache.Key(cache.ProductKeyPrefix, id.String())

	cached := &models.Product{}

	if hit, err := s.cache.Get(ctx, key, cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		slog.Warn("Product cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	if err := s.cache.Set(ctx, key, product, 0); err != nil {
		slog.Warn("Product cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		product.Name = s.sanitizer.Sanitize(*req.Name)
	}

	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.Rating != nil {
		product.Rating = *req.Rating
	}

	if req.Material != nil {
		product.Material = s.sanitizer.Sanitize(*req.Material)
	}

	if req.Status != nil {
		product.Status = *req.Status
	}

	err = s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, id)

	return product, nil
}

// page means "page number requested"
// pageSize means "number of products to be displayed per page"
func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error) {

	products, total, err := s.repo.ListProducts(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) CreateVariant(ctx context.Context, productID uuid.UUID, req *models.CreateVariantRequest) (*models.Variant, error) {

	if _, err := s.repo.GetProductByID(ctx, productID); err != nil {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	variant := &models.Variant{
		ID:        uuid.New(),
		ProductID: productID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	}

	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return nil, appErrors.DatabaseError("Failed to create variant").WithError(err)
	}

	s.invalidate(ctx, productID)

	return variant, nil
}

func (s *productService) ListVariants(ctx context.Context, productID uuid.UUID) ([]*models.Variant, error) {

	variants, err := s.repo.ListVariantsByProduct(ctx, productID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch variants").WithError(err)
	}

	return variants, nil
}

// Restock increments the matching variant's stock and refreshes the parent
// product's aggregate.
func (s *productService) Restock(ctx context.Context, req *models.RestockRequest) (*models.Variant, error) {

	if req.Amount <= 0 {
		return nil, appErrors.ValidationError("Restock amount must be positive")
	}

	variant, err := s.repo.RestockVariant(ctx, req.ProductID, req.Size, req.Color, req.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Variant not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to restock variant").WithError(err)
	}

	s.invalidate(ctx, req.ProductID)

	return variant, nil
}

// RecalculateTotalStock is an idempotent repair: every product's aggregate is
// re-derived from its variants.
func (s *productService) RecalculateTotalStock(ctx context.Context) (int, error) {

	updated, err := s.repo.RecalculateTotalStock(ctx)
	if err != nil {
		return 0, appErrors.DatabaseError("Failed to recalculate total stock").WithError(err)
	}

	return updated, nil
}

func (s *productService) invalidate(ctx context.Context, productID uuid.UUID) {

	key := cache.Key(cache.ProductKeyPrefix, productID.String())

	if err := s.cache.Delete(ctx, key); err != nil {
		slog.Warn("Product cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}
}
