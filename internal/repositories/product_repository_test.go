package repository_test

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductRepoTest(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewProductRepo(db)
	require.NotNil(t, repo, "NewProductRepo should return a non-nil repository")

	return repo, mock
}

func productColumns() []string {
	return []string{"id", "category_id", "name", "description", "price", "rating", "material", "total_stock", "status", "created_at", "updated_at"}
}

func variantColumns() []string {
	return []string{"id", "product_id", "size", "color", "quantity", "created_at", "updated_at"}
}

func TestProductRepository(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	t.Run("Create Product", func(t *testing.T) {
		now := time.Now()
		product := &models.Product{
			ID:         uuid.New(),
			CategoryID: uuid.New(),
			Name:       "Crewneck Tee",
			Price:      10.0,
			Material:   "cotton",
			Status:     "active",
		}

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
			WithArgs(product.ID, product.CategoryID, product.Name, product.Description, product.Price, product.Rating, product.Material, product.TotalStock, product.Status).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		err := repo.CreateProduct(ctx, product)

		assert.NoError(t, err)
		assert.Equal(t, now, product.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get Product By Name - Case Insensitive Match", func(t *testing.T) {
		now := time.Now()
		productID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE '%' || $1 || '%'`)).
			WithArgs("crewneck").
			WillReturnRows(sqlmock.NewRows(productColumns()).
				AddRow(productID, uuid.New(), "Crewneck Tee", "", 10.0, 4.5, "cotton", 5, "active", now, now))

		product, err := repo.GetProductByName(ctx, "crewneck")

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get Product By Name - No Match", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE '%' || $1 || '%'`)).
			WithArgs("parka").
			WillReturnError(sql.ErrNoRows)

		product, err := repo.GetProductByName(ctx, "parka")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, product)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("List Products By Name Fragments - Wraps Patterns", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE ANY($1)`)).
			WithArgs(pq.Array([]string{"%V-Neck Tee%", "%Long Sleeve Tee%"})).
			WillReturnRows(sqlmock.NewRows(productColumns()).
				AddRow(uuid.New(), uuid.New(), "Long Sleeve Tee", "", 12.0, 4.0, "cotton", 3, "active", now, now).
				AddRow(uuid.New(), uuid.New(), "V-Neck Tee", "", 11.0, 4.2, "cotton", 2, "active", now, now))

		products, err := repo.ListProductsByNameFragments(ctx, []string{"V-Neck Tee", "Long Sleeve Tee"})

		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("List Products By Name Fragments - Empty Input Short-Circuits", func(t *testing.T) {
		products, err := repo.ListProductsByNameFragments(ctx, nil)

		assert.NoError(t, err)
		assert.Nil(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get Variant By ID", func(t *testing.T) {
		now := time.Now()
		variantID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM product_variants`)).
			WithArgs(variantID).
			WillReturnRows(sqlmock.NewRows(variantColumns()).
				AddRow(variantID, productID, "M", "black", 5, now, now))

		variant, err := repo.GetVariantByID(ctx, variantID)

		assert.NoError(t, err)
		require.NotNil(t, variant)
		assert.Equal(t, productID, variant.ProductID)
		assert.Equal(t, 5, variant.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateVariant(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	t.Run("Success - Aggregate Stock Refreshed In Same Transaction", func(t *testing.T) {
		now := time.Now()
		variant := &models.Variant{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Size:      "M",
			Color:     "black",
			Quantity:  5,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO product_variants`)).
			WithArgs(variant.ID, variant.ProductID, variant.Size, variant.Color, variant.Quantity).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE products`)).
			WithArgs(variant.ProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.CreateVariant(ctx, variant)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Insert Error Rolls Back", func(t *testing.T) {
		variant := &models.Variant{ID: uuid.New(), ProductID: uuid.New(), Size: "M", Color: "black", Quantity: 5}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO product_variants`)).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := repo.CreateVariant(ctx, variant)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRestockVariant(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()
	productID := uuid.New()

	t.Run("Success - Increment Plus Aggregate Refresh", func(t *testing.T) {
		now := time.Now()
		variantID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SET quantity = quantity + $1`)).
			WithArgs(3, productID, "M", "black").
			WillReturnRows(sqlmock.NewRows(variantColumns()).
				AddRow(variantID, productID, "M", "black", 8, now, now))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE products`)).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		variant, err := repo.RestockVariant(ctx, productID, "M", "black", 3)

		assert.NoError(t, err)
		require.NotNil(t, variant)
		assert.Equal(t, 8, variant.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Variant", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SET quantity = quantity + $1`)).
			WithArgs(3, productID, "XL", "mauve").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		variant, err := repo.RestockVariant(ctx, productID, "XL", "mauve", 3)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, variant)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecalculateTotalStock(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	t.Run("Success - Reports Updated Product Count", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`SET total_stock = COALESCE(`)).
			WillReturnResult(sqlmock.NewResult(0, 7))

		updated, err := repo.RecalculateTotalStock(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 7, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`SET total_stock = COALESCE(`)).
			WillReturnError(sql.ErrConnDone)

		updated, err := repo.RecalculateTotalStock(ctx)

		assert.Error(t, err)
		assert.Zero(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
