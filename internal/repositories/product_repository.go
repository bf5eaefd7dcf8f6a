package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error)
	ListProductsByNameFragments(ctx context.Context, fragments []string) ([]*models.Product, error)
	CreateVariant(ctx context.Context, variant *models.Variant) error
	GetVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Variant, error)
	RestockVariant(ctx context.Context, productID uuid.UUID, size, color string, amount int) (*models.Variant, error)
	RecalculateTotalStock(ctx context.Context) (int, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO products (id, category_id, name, description, price, rating, material, total_stock, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.ID, product.CategoryID, product.Name, product.Description, product.Price, product.Rating, product.Material, product.TotalStock, product.Status).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
        SELECT p.id, p.category_id, p.name, p.description, p.price,
               p.rating, p.material, p.total_stock, p.status, p.created_at, p.updated_at,
               c.id, c.name, c.description
        FROM products p
        LEFT JOIN categories c ON p.category_id = c.id
        WHERE p.id = $1`

	var category models.Category

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Rating, &product.Material, &product.TotalStock, &product.Status, &product.CreatedAt, &product.UpdatedAt, &category.ID, &category.Name, &category.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	product.Category = &category

	return product, nil
}

// GetProductByName returns the first product whose name contains the given
// fragment, case-insensitively.
func (r *productRepository) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
		SELECT id, category_id, name, description, price, rating, material, total_stock, status, created_at, updated_at
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 1`

	err := r.DB.QueryRowContext(dbCtx, query, name).Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Rating, &product.Material, &product.TotalStock, &product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET category_id = $1, name = $2, description = $3, price = $4, rating = $5, material = $6, status = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.CategoryID, product.Name, product.Description, product.Price, product.Rating, product.Material, product.Status, product.ID).Scan(&product.UpdatedAt)
}

func (r *productRepository) ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products`

	err := r.DB.QueryRowContext(dbCtx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Offset
	offset := (page - 1) * size

	query := `
		SELECT p.id, p.category_id, p.name, p.description, p.price,
		p.rating, p.material, p.total_stock, p.status, p.created_at, p.updated_at,
		c.id, c.name, c.description
		FROM products p
		LEFT JOIN categories c on p.category_id = c.id
		ORDER BY p.name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}
		category := &models.Category{}

		err := rows.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Rating, &product.Material, &product.TotalStock, &product.Status, &product.CreatedAt, &product.UpdatedAt, &category.ID, &category.Name, &category.Description)
		if err != nil {
			return nil, 0, err
		}

		product.Category = category
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListProductsByNameFragments returns products whose names contain any of the
// given fragments, case-insensitively. Used by the recommendation lookup.
func (r *productRepository) ListProductsByNameFragments(ctx context.Context, fragments []string) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if len(fragments) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		patterns = append(patterns, "%"+fragment+"%")
	}

	query := `
		SELECT id, category_id, name, description, price, rating, material, total_stock, status, created_at, updated_at
		FROM products
		WHERE name ILIKE ANY($1)
		ORDER BY name
	`

	rows, err := r.DB.QueryContext(dbCtx, query, pq.Array(patterns))
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		err := rows.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Rating, &product.Material, &product.TotalStock, &product.Status, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// CreateVariant inserts the variant and refreshes the parent product's
// aggregate stock in the same transaction.
func (r *productRepository) CreateVariant(ctx context.Context, variant *models.Variant) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	query := `
		INSERT INTO product_variants (id, product_id, size, color, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, variant.ID, variant.ProductID, variant.Size, variant.Color, variant.Quantity).Scan(&variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert variant: %w", err)
	}

	if err := recalculateProductStock(dbCtx, tx, variant.ProductID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *productRepository) GetVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	variant := &models.Variant{}

	query := `
		SELECT id, product_id, size, color, quantity, created_at, updated_at
		FROM product_variants
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&variant.ID, &variant.ProductID, &variant.Size, &variant.Color, &variant.Quantity, &variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return variant, nil
}

func (r *productRepository) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Variant, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, product_id, size, color, quantity, created_at, updated_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY size, color
	`

	rows, err := r.DB.QueryContext(dbCtx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var variants []*models.Variant

	for rows.Next() {
		variant := &models.Variant{}

		err := rows.Scan(&variant.ID, &variant.ProductID, &variant.Size, &variant.Color, &variant.Quantity, &variant.CreatedAt, &variant.UpdatedAt)
		if err != nil {
			return nil, err
		}

		variants = append(variants, variant)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return variants, nil
}

// RestockVariant increments the matching variant's quantity and refreshes the
// parent product's aggregate stock, both inside one transaction.
func (r *productRepository) RestockVariant(ctx context.Context, productID uuid.UUID, size, color string, amount int) (*models.Variant, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	variant := &models.Variant{}

	query := `
		UPDATE product_variants
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE product_id = $2 AND size = $3 AND color = $4
		RETURNING id, product_id, size, color, quantity, created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, amount, productID, size, color).Scan(&variant.ID, &variant.ProductID, &variant.Size, &variant.Color, &variant.Quantity, &variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to restock variant: %w", err)
	}

	if err := recalculateProductStock(dbCtx, tx, productID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit restock: %w", err)
	}

	return variant, nil
}

// RecalculateTotalStock re-derives every product's aggregate stock from its
// variants. Idempotent repair operation.
func (r *productRepository) RecalculateTotalStock(ctx context.Context) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET total_stock = COALESCE((SELECT SUM(v.quantity) FROM product_variants v WHERE v.product_id = products.id), 0),
		    updated_at = NOW()
	`

	result, err := r.DB.ExecContext(dbCtx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to recalculate total stock: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get updated rows: %w", err)
	}

	return int(updated), nil
}

// shared with the order placement transaction
func recalculateProductStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID) error {

	query := `
		UPDATE products
		SET total_stock = COALESCE((SELECT SUM(v.quantity) FROM product_variants v WHERE v.product_id = products.id), 0),
		    updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to recalculate product stock: %w", err)
	}

	return nil
}
