package service_test

import (
	"testing"

	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

type stripeClientMock struct {
	mock.Mock
}

func (m *stripeClientMock) CreatePaymentIntent(amount int64, currency string, description string) (*stripe.PaymentIntent, error) {
	args := m.Called(amount, currency, description)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

func (m *stripeClientMock) GetPaymentIntent(paymentIntentID string) (*stripe.PaymentIntent, error) {
	args := m.Called(paymentIntentID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

func (m *stripeClientMock) ConfirmPaymentIntent(paymentIntentID string, paymentMethodID string) (*stripe.PaymentIntent, error) {
	args := m.Called(paymentIntentID, paymentMethodID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

func (m *stripeClientMock) RefundPayment(paymentIntentID string, amount int64) (*stripe.Refund, error) {
	args := m.Called(paymentIntentID, amount)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*stripe.Refund), args.Error(1)
}

func setupPaymentServiceTest() (*mocks.OrderRepository, *stripeClientMock, service.PaymentService) {
	orderRepo := new(mocks.OrderRepository)
	client := new(stripeClientMock)
	paymentService := service.NewPaymentService(orderRepo, client, "usd")

	return orderRepo, client, paymentService
}

func TestCreatePayment(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success - Total Converted To Minor Units", func(t *testing.T) {
		// Arrange
		orderRepo, client, paymentService := setupPaymentServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: userID, TotalAmount: 20.0, PaymentStatus: models.PaymentStatusPending}

		orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
		client.On("CreatePaymentIntent", int64(2000), "usd", mock.AnythingOfType("string")).
			Return(&stripe.PaymentIntent{ID: "pi_123", Amount: 2000, Status: stripe.PaymentIntentStatusRequiresPaymentMethod, ClientSecret: "cs_test"}, nil).Once()
		orderRepo.On("UpdatePaymentStatus", ctx, order.ID, models.PaymentStatusPending, "pi_123").Return(nil).Once()

		// Act
		resp, err := paymentService.CreatePayment(ctx, userID, &models.CreatePaymentRequest{OrderID: order.ID})

		// Assert
		assert.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "pi_123", resp.PaymentIntent.ID)
		assert.Equal(t, 20.0, resp.PaymentIntent.Amount)
		assert.Equal(t, "cs_test", resp.ClientSecret)
		orderRepo.AssertExpectations(t)
		client.AssertExpectations(t)
	})

	t.Run("Failure - Not The Order Owner", func(t *testing.T) {
		// Arrange
		orderRepo, client, paymentService := setupPaymentServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New(), TotalAmount: 20.0}

		orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		resp, err := paymentService.CreatePayment(ctx, userID, &models.CreatePaymentRequest{OrderID: order.ID})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, resp)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeForbidden, appErr.Code)
		client.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Already Paid", func(t *testing.T) {
		// Arrange
		orderRepo, client, paymentService := setupPaymentServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: userID, TotalAmount: 20.0, PaymentStatus: models.PaymentStatusPaid}

		orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		resp, err := paymentService.CreatePayment(ctx, userID, &models.CreatePaymentRequest{OrderID: order.ID})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, resp)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		client.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetPayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		_, client, paymentService := setupPaymentServiceTest()

		client.On("GetPaymentIntent", "pi_123").
			Return(&stripe.PaymentIntent{ID: "pi_123", Amount: 2000, Status: stripe.PaymentIntentStatusSucceeded}, nil).Once()

		// Act
		intent, err := paymentService.GetPayment(t.Context(), "pi_123")

		// Assert
		assert.NoError(t, err)
		require.NotNil(t, intent)
		assert.Equal(t, 20.0, intent.Amount)
		assert.Equal(t, string(stripe.PaymentIntentStatusSucceeded), intent.Status)
		client.AssertExpectations(t)
	})
}
