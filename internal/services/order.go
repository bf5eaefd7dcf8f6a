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

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest, idempotencyKey string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{orderRepo: orderRepo, cartRepo: cartRepo, productRepo: productRepo}
}

// PlaceOrder turns the caller's cart into an order.
//
// Stock is pre-checked per line before anything is written, and the order
// total is recomputed from the current product prices rather than trusted
// from the cart's cached total. The writes themselves (order, line items,
// variant decrements, aggregate stock, cart clearing) happen in one
// transaction inside the repository, so a failure at any point leaves no
// partial state behind.
//
// Repeating a call with the same idempotency key returns the original order
// without touching stock again. Keys are scoped to the caller, so one user's
// key can never resolve to another user's order.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest, idempotencyKey string) (*models.Order, error) {

	if idempotencyKey != "" {

		existing, err := s.orderRepo.GetOrderByIdempotencyKey(ctx, userID, idempotencyKey)
		if err == nil {
			return existing, nil
		}

		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.DatabaseError("Failed to check idempotency key").WithError(err)
		}
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if len(cart.Items) == 0 {
		return nil, appErrors.EmptyCartError("Cannot create order with empty cart")
	}

	orderID := uuid.New()

	var grossTotal float64

	var items []models.OrderItem

	for _, line := range cart.Items {

		variant, err := s.productRepo.GetVariantByID(ctx, line.VariantID)
		if err != nil {
			return nil, appErrors.NotFoundError("Variant not found: " + line.VariantID.String()).WithError(err)
		}

		if line.Quantity > variant.Quantity {
			return nil, appErrors.InsufficientStockError("Insufficient stock for variant: " + line.VariantID.String())
		}

		// Data-integrity fault if the variant's product vanished.
		product, err := s.productRepo.GetProductByID(ctx, variant.ProductID)
		if err != nil {
			return nil, appErrors.NotFoundError("Product not found: " + variant.ProductID.String()).WithError(err)
		}

		grossTotal += float64(line.Quantity) * product.Price

		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: variant.ProductID,
			VariantID: variant.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			CreatedAt: time.Now(),
		})
	}

	order := &models.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          models.OrderStatusPending,
		TotalAmount:     grossTotal,
		PaymentStatus:   models.PaymentStatusPending,
		IdempotencyKey:  idempotencyKey,
		ShippingAddress: &req.ShippingAddress,
		Items:           items,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	err = s.orderRepo.CreateOrderFromCart(ctx, order, cart.ID)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, appErrors.InsufficientStockError("Insufficient stock").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, appErrors.NotFoundError("Order not found").WithError(err)
	}

	return order, nil
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page int, size int) ([]models.Order, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 10
	}

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	order, err := s.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return order, nil
}
