package service_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCartServiceTest() (*mocks.CartRepository, *mocks.ProductRepository, service.CartService) {
	cartRepo := new(mocks.CartRepository)
	productRepo := new(mocks.ProductRepository)
	cartService := service.NewCartService(cartRepo, productRepo)

	return cartRepo, productRepo, cartService
}

func TestGetOrCreateCart(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success - Existing Cart Returned", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartService := setupCartServiceTest()
		existing := &models.Cart{
			ID:        uuid.New(),
			UserID:    userID,
			Items:     make(map[string]models.CartItem),
			CreatedAt: time.Now().Add(-time.Hour),
		}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()

		// Act
		cart, err := cartService.GetOrCreateCart(ctx, userID)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, cart.ID)
		cartRepo.AssertNotCalled(t, "CreateCart", mock.Anything, mock.Anything)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Success - First Access Creates Empty Cart", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartService := setupCartServiceTest()

		cartRepo.On("GetCartByUserID", ctx, userID).Return(nil, sql.ErrNoRows).Once()
		cartRepo.On("CreateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := cartService.GetOrCreateCart(ctx, userID)

		// Assert
		assert.NoError(t, err)
		require.NotNil(t, cart)
		assert.Equal(t, userID, cart.UserID)
		assert.NotEqual(t, uuid.Nil, cart.ID)
		assert.Empty(t, cart.Items)
		assert.Equal(t, float64(0), cart.Total)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartService := setupCartServiceTest()
		dbError := errors.New("database connection failed")

		cartRepo.On("GetCartByUserID", ctx, userID).Return(nil, dbError).Once()

		// Act
		cart, err := cartService.GetOrCreateCart(ctx, userID)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		cartRepo.AssertExpectations(t)
	})
}

func TestAddItem(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success - Line Added And Total Derived From Current Price", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		productID := uuid.New()
		existing := &models.Cart{ID: uuid.New(), UserID: userID, Items: make(map[string]models.CartItem)}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetVariantByID", ctx, variantID).
			Return(&models.Variant{ID: variantID, ProductID: productID, Size: "M", Color: "black", Quantity: 5}, nil).Once()
		productRepo.On("GetProductByID", ctx, productID).
			Return(&models.Product{ID: productID, Price: 10.0}, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, &models.AddItemRequest{VariantID: variantID, Quantity: 2})

		// Assert
		assert.NoError(t, err)
		require.NotNil(t, cart)
		require.Contains(t, cart.Items, variantID.String())
		line := cart.Items[variantID.String()]
		assert.Equal(t, 2, line.Quantity)
		assert.Equal(t, 10.0, line.UnitPrice)
		assert.Equal(t, 20.0, line.TotalPrice)
		assert.Equal(t, 20.0, cart.Total)
		cartRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
	})

	t.Run("Success - Adding Same Variant Merges Quantities", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		productID := uuid.New()
		existing := &models.Cart{
			ID:     uuid.New(),
			UserID: userID,
			Items: map[string]models.CartItem{
				variantID.String(): {VariantID: variantID, ProductID: productID, Quantity: 1},
			},
		}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetVariantByID", ctx, variantID).
			Return(&models.Variant{ID: variantID, ProductID: productID, Quantity: 5}, nil).Once()
		productRepo.On("GetProductByID", ctx, productID).
			Return(&models.Product{ID: productID, Price: 10.0}, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, &models.AddItemRequest{VariantID: variantID, Quantity: 2})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 3, cart.Items[variantID.String()].Quantity)
		assert.Equal(t, 30.0, cart.Total)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Requested Quantity Exceeds Stock", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		productID := uuid.New()
		existing := &models.Cart{ID: uuid.New(), UserID: userID, Items: make(map[string]models.CartItem)}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetVariantByID", ctx, variantID).
			Return(&models.Variant{ID: variantID, ProductID: productID, Quantity: 4}, nil).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, &models.AddItemRequest{VariantID: variantID, Quantity: 10})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInsufficientStock, appErr.Code)
		cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Variant", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		existing := &models.Cart{ID: uuid.New(), UserID: userID, Items: make(map[string]models.CartItem)}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetVariantByID", ctx, variantID).Return(nil, sql.ErrNoRows).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, &models.AddItemRequest{VariantID: variantID, Quantity: 1})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		cartRepo.AssertExpectations(t)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success - Quantity Overwritten", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		productID := uuid.New()
		existing := &models.Cart{
			ID:     uuid.New(),
			UserID: userID,
			Items: map[string]models.CartItem{
				variantID.String(): {VariantID: variantID, ProductID: productID, Quantity: 1},
			},
		}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetVariantByID", ctx, variantID).
			Return(&models.Variant{ID: variantID, ProductID: productID, Quantity: 5}, nil).Once()
		productRepo.On("GetProductByID", ctx, productID).
			Return(&models.Product{ID: productID, Price: 10.0}, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{VariantID: variantID, Quantity: 3})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 3, cart.Items[variantID.String()].Quantity)
		assert.Equal(t, 30.0, cart.Total)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Success - Zero Quantity Removes The Line", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		productID := uuid.New()
		existing := &models.Cart{
			ID:     uuid.New(),
			UserID: userID,
			Items: map[string]models.CartItem{
				variantID.String(): {VariantID: variantID, ProductID: productID, Quantity: 2, TotalPrice: 20.0},
			},
			Total: 20.0,
		}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{VariantID: variantID, Quantity: 0})

		// Assert
		assert.NoError(t, err)
		assert.NotContains(t, cart.Items, variantID.String())
		assert.Equal(t, float64(0), cart.Total)
		productRepo.AssertNotCalled(t, "GetVariantByID", mock.Anything, mock.Anything)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Missing Cart Maps To Not Found", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartService := setupCartServiceTest()

		cartRepo.On("GetCartByUserID", ctx, userID).Return(nil, sql.ErrNoRows).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{VariantID: uuid.New(), Quantity: 1})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Store Error Is Not A Not Found", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartService := setupCartServiceTest()
		dbError := errors.New("connection reset")

		cartRepo.On("GetCartByUserID", ctx, userID).Return(nil, dbError).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{VariantID: uuid.New(), Quantity: 1})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		assert.ErrorIs(t, err, dbError)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Line Not In Cart", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartService := setupCartServiceTest()
		existing := &models.Cart{ID: uuid.New(), UserID: userID, Items: make(map[string]models.CartItem)}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{VariantID: uuid.New(), Quantity: 1})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Quantity Exceeds Stock", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartService := setupCartServiceTest()
		variantID := uuid.New()
		productID := uuid.New()
		existing := &models.Cart{
			ID:     uuid.New(),
			UserID: userID,
			Items: map[string]models.CartItem{
				variantID.String(): {VariantID: variantID, ProductID: productID, Quantity: 1},
			},
		}

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetVariantByID", ctx, variantID).
			Return(&models.Variant{ID: variantID, ProductID: productID, Quantity: 2}, nil).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{VariantID: variantID, Quantity: 5})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInsufficientStock, appErr.Code)
		cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
		cartRepo.AssertExpectations(t)
	})
}
