package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils"
	"github.com/google/uuid"
)

// ErrInsufficientStock is returned when a guarded variant decrement matches no
// row, i.e. another order consumed the stock first.
var ErrInsufficientStock = errors.New("insufficient stock for variant")

type OrderRepository interface {
	CreateOrderFromCart(ctx context.Context, order *models.Order, cartID uuid.UUID) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentIntentID string) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrderFromCart applies the whole order placement in one transaction:
// the order row, its line items, the guarded variant decrements, the parent
// products' aggregate-stock refresh and the cart clearing. Any failure rolls
// everything back, so a half-placed order can never be observed.
//
// The decrement is guarded with "quantity >= n" so that two concurrent
// placements against the same variant cannot both succeed past the available
// stock; the loser fails with ErrInsufficientStock.
func (r *orderRepository) CreateOrderFromCart(ctx context.Context, order *models.Order, cartID uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	shippingAddress, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	idempotencyKey := sql.NullString{String: order.IdempotencyKey, Valid: order.IdempotencyKey != ""}

	query := `
		INSERT INTO orders (id, user_id, status, total_amount, payment_status, payment_intent_id, idempotency_key, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	_, err = tx.ExecContext(dbCtx, query, order.ID, order.UserID, order.Status, order.TotalAmount, order.PaymentStatus, order.PaymentIntentID, idempotencyKey, shippingAddress)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, variant_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	decrementQuery := `
		UPDATE product_variants
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1
	`

	touchedProducts := make(map[uuid.UUID]struct{})

	for _, item := range order.Items {

		_, err := tx.ExecContext(dbCtx, itemQuery, item.ID, order.ID, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}

		result, err := tx.ExecContext(dbCtx, decrementQuery, item.Quantity, item.VariantID)
		if err != nil {
			return fmt.Errorf("failed to decrement variant stock: %w", err)
		}

		updatedRows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get updated rows: %w", err)
		}

		if updatedRows == 0 {
			return fmt.Errorf("variant %s: %w", item.VariantID, ErrInsufficientStock)
		}

		touchedProducts[item.ProductID] = struct{}{}
	}

	for productID := range touchedProducts {
		if err := recalculateProductStock(dbCtx, tx, productID); err != nil {
			return err
		}
	}

	clearCartQuery := `
		UPDATE carts
		SET items = '{}', total = 0, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.ExecContext(dbCtx, clearCartQuery, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{
		ID: id,
	}

	query := `
		SELECT user_id, status, total_amount, payment_status, payment_intent_id, COALESCE(idempotency_key, ''), shipping_address, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var jsonData []byte

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&order.UserID, &order.Status, &order.TotalAmount, &order.PaymentStatus, &order.PaymentIntentID, &order.IdempotencyKey, &jsonData, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := json.Unmarshal(jsonData, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	items, err := r.listOrderItems(dbCtx, order.ID)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

// GetOrderByIdempotencyKey is scoped to the owning user: a key replayed by a
// different caller is a miss, never a window into someone else's order.
func (r *orderRepository) GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id
		FROM orders
		WHERE idempotency_key = $1 AND user_id = $2
	`

	var id uuid.UUID

	err := r.DB.QueryRowContext(dbCtx, query, key, userID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	return r.GetOrderByID(ctx, id)
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page int, size int) ([]models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	err := r.DB.QueryRowContext(dbCtx, countQuery, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Offset
	offset := (page - 1) * size

	query := `
		SELECT id, status, total_amount, payment_status, payment_intent_id, shipping_address, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		var order models.Order

		order.UserID = userID

		var jsonData []byte

		err := rows.Scan(&order.ID, &order.Status, &order.TotalAmount, &order.PaymentStatus, &order.PaymentIntentID, &jsonData, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		if err := json.Unmarshal(jsonData, &order.ShippingAddress); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {

		items, err := r.listOrderItems(dbCtx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}

		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, status, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return nil, sql.ErrNoRows
	}

	return r.GetOrderByID(ctx, id)
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentIntentID string) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET payment_status = $1, payment_intent_id = $2, updated_at = $3 WHERE id = $4
	`

	result, err := r.DB.ExecContext(dbCtx, query, status, paymentIntentID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *orderRepository) listOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {

	query := `
		SELECT id, product_id, variant_id, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {

		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.ProductID, &item.VariantID, &item.Quantity, &item.UnitPrice, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.OrderID = orderID

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
