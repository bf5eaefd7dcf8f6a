package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services/mocks"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/testutils"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderHandlerTest() (*mocks.OrderService, *mocks.NotificationService, *handlers.OrderHandler) {
	orderService := new(mocks.OrderService)
	notificationService := new(mocks.NotificationService)
	orderHandler := handlers.NewOrderHandler(orderService, notificationService)

	return orderService, notificationService, orderHandler
}

func placeOrderBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(models.PlaceOrderRequest{
		ShippingAddress: models.Address{
			Street:     "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
	})
	require.NoError(t, err)

	return body
}

func TestCreateOrderHandler(t *testing.T) {
	t.Run("Success - Idempotency Key Forwarded And Confirmation Sent", func(t *testing.T) {
		// Arrange
		orderService, notificationService, orderHandler := setupOrderHandlerTest()
		userID := uuid.New()
		order := &models.Order{ID: uuid.New(), UserID: userID, Status: models.OrderStatusPending, TotalAmount: 20.0}

		req := testutils.CreateTestRequestWithContext("POST", "/api/v1/orders", bytes.NewBuffer(placeOrderBody(t)), userID, nil)
		req.Header.Set("Idempotency-Key", "retry-key-1")
		recorder := httptest.NewRecorder()

		orderService.On("PlaceOrder", mock.Anything, userID, mock.AnythingOfType("*models.PlaceOrderRequest"), "retry-key-1").
			Return(order, nil).Once()
		notificationService.On("SendOrderConfirmation", mock.Anything, "test@example.com", order).Return(nil).Once()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)

		var resp response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		orderService.AssertExpectations(t)
		notificationService.AssertExpectations(t)
	})

	t.Run("Success - Confirmation Failure Does Not Fail The Order", func(t *testing.T) {
		// Arrange
		orderService, notificationService, orderHandler := setupOrderHandlerTest()
		userID := uuid.New()
		order := &models.Order{ID: uuid.New(), UserID: userID, Status: models.OrderStatusPending}

		req := testutils.CreateTestRequestWithContext("POST", "/api/v1/orders", bytes.NewBuffer(placeOrderBody(t)), userID, nil)
		recorder := httptest.NewRecorder()

		orderService.On("PlaceOrder", mock.Anything, userID, mock.AnythingOfType("*models.PlaceOrderRequest"), "").
			Return(order, nil).Once()
		notificationService.On("SendOrderConfirmation", mock.Anything, "test@example.com", order).
			Return(appErrors.ThirdPartyError("Failed to send email")).Once()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)
	})

	t.Run("Failure - Insufficient Stock Maps To Conflict", func(t *testing.T) {
		// Arrange
		orderService, _, orderHandler := setupOrderHandlerTest()
		userID := uuid.New()

		req := testutils.CreateTestRequestWithContext("POST", "/api/v1/orders", bytes.NewBuffer(placeOrderBody(t)), userID, nil)
		recorder := httptest.NewRecorder()

		orderService.On("PlaceOrder", mock.Anything, userID, mock.AnythingOfType("*models.PlaceOrderRequest"), "").
			Return(nil, appErrors.InsufficientStockError("Insufficient stock")).Once()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusConflict, recorder.Code)

		var resp response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, appErrors.ErrCodeInsufficientStock, resp.Error.Code)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		_, _, orderHandler := setupOrderHandlerTest()

		req := testutils.CreateTestRequestWithoutContext("POST", "/api/v1/orders", bytes.NewBuffer(placeOrderBody(t)), nil)
		recorder := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestGetOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderService, _, orderHandler := setupOrderHandlerTest()
		userID := uuid.New()
		order := &models.Order{ID: uuid.New(), UserID: userID}

		req := testutils.CreateTestRequestWithContext("GET", "/api/v1/orders/"+order.ID.String(), nil, userID, map[string]string{"id": order.ID.String()})
		recorder := httptest.NewRecorder()

		orderService.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		// Act
		orderHandler.GetOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		orderService.AssertExpectations(t)
	})

	t.Run("Failure - Another User's Order Is Forbidden", func(t *testing.T) {
		// Arrange
		orderService, _, orderHandler := setupOrderHandlerTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New()}

		req := testutils.CreateTestRequestWithContext("GET", "/api/v1/orders/"+order.ID.String(), nil, uuid.New(), map[string]string{"id": order.ID.String()})
		recorder := httptest.NewRecorder()

		orderService.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		// Act
		orderHandler.GetOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("Failure - Malformed ID", func(t *testing.T) {
		// Arrange
		orderService, _, orderHandler := setupOrderHandlerTest()

		req := testutils.CreateTestRequestWithContext("GET", "/api/v1/orders/not-a-uuid", nil, uuid.New(), map[string]string{"id": "not-a-uuid"})
		recorder := httptest.NewRecorder()

		// Act
		orderHandler.GetOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		orderService.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderService, _, orderHandler := setupOrderHandlerTest()
		orderID := uuid.New()
		body, err := json.Marshal(models.UpdateOrderStatusRequest{Status: models.OrderStatusInTransit})
		require.NoError(t, err)

		req := testutils.CreateTestRequestWithContext("PATCH", "/api/v1/orders/"+orderID.String()+"/status", bytes.NewBuffer(body), uuid.New(), map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		orderService.On("UpdateOrderStatus", mock.Anything, orderID, models.OrderStatusInTransit).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusInTransit}, nil).Once()

		// Act
		orderHandler.UpdateOrderStatus()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		orderService.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Status Rejected", func(t *testing.T) {
		// Arrange
		orderService, _, orderHandler := setupOrderHandlerTest()
		orderID := uuid.New()
		body := []byte(`{"status":"teleported"}`)

		req := testutils.CreateTestRequestWithContext("PATCH", "/api/v1/orders/"+orderID.String()+"/status", bytes.NewBuffer(body), uuid.New(), map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		// Act
		orderHandler.UpdateOrderStatus()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		orderService.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
