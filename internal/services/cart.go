package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetOrCreateCart returns the user's active cart, lazily creating an empty
// one on first access.
func (s *cartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart = &models.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     make(map[string]models.CartItem),
		Total:     0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to create cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {

	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	variant, err := s.productRepo.GetVariantByID(ctx, req.VariantID)
	if err != nil {
		return nil, appErrors.NotFoundError("Variant not found: " + req.VariantID.String()).WithError(err)
	}

	existing := cart.Items[req.VariantID.String()]

	if existing.Quantity+req.Quantity > variant.Quantity {
		return nil, appErrors.InsufficientStockError("Insufficient stock for variant: " + req.VariantID.String())
	}

	cart.Items[req.VariantID.String()] = models.CartItem{
		VariantID: req.VariantID,
		ProductID: variant.ProductID,
		Quantity:  existing.Quantity + req.Quantity,
	}

	if err := s.refreshTotals(ctx, cart); err != nil {
		return nil, err
	}

	cart.UpdatedAt = time.Now()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	item, exists := cart.Items[req.VariantID.String()]
	if !exists {
		return nil, appErrors.BadRequestError("Item not found in the cart")
	}

	if req.Quantity == 0 {
		delete(cart.Items, req.VariantID.String())
	} else {

		variant, err := s.productRepo.GetVariantByID(ctx, req.VariantID)
		if err != nil {
			return nil, appErrors.NotFoundError("Variant not found: " + req.VariantID.String()).WithError(err)
		}

		if req.Quantity > variant.Quantity {
			return nil, appErrors.InsufficientStockError("Insufficient stock for variant: " + req.VariantID.String())
		}

		item.Quantity = req.Quantity
		cart.Items[req.VariantID.String()] = item
	}

	if err := s.refreshTotals(ctx, cart); err != nil {
		return nil, err
	}

	cart.UpdatedAt = time.Now()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

// refreshTotals re-reads the authoritative product price for every line, so a
// price change is reflected on the next cart mutation instead of living on in
// a stale cached value.
func (s *cartService) refreshTotals(ctx context.Context, cart *models.Cart) error {

	var total float64

	for key, item := range cart.Items {

		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return appErrors.NotFoundError("Product not found: " + item.ProductID.String()).WithError(err)
		}

		item.UnitPrice = product.Price
		item.TotalPrice = product.Price * float64(item.Quantity)
		cart.Items[key] = item

		total += item.TotalPrice
	}

	cart.Total = total

	return nil
}
