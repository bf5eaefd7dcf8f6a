package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/metrics"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orderService        service.OrderService
	notificationService service.NotificationService
	validator           *validator.Validate
}

func NewOrderHandler(orderService service.OrderService, notificationService service.NotificationService) *OrderHandler {
	return &OrderHandler{
		orderService:        orderService,
		notificationService: notificationService,
		validator:           validator.New(),
	}
}

// CreateOrder places an order from the caller's cart. Clients may send an
// Idempotency-Key header; retrying with the same key returns the original
// order instead of placing a second one.
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized order attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.PlaceOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid order input")
			return
		}

		idempotencyKey := r.Header.Get("Idempotency-Key")

		order, err := h.orderService.PlaceOrder(r.Context(), claims.UserID, &req, idempotencyKey)
		if err != nil {
			metrics.OrderRejected(rejectionReason(err))
			logger.Error("Failed to place order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		metrics.OrderPlaced()

		logger.Info("Order placed",
			slog.String("orderId", order.ID.String()),
			slog.Float64("total", order.TotalAmount))

		// Confirmation email failures must not fail the order.
		if err := h.notificationService.SendOrderConfirmation(r.Context(), claims.Email, order); err != nil {
			logger.Warn("Order confirmation email failed", slog.String("orderId", order.ID.String()), slog.Any("error", err))
		}

		response.Success(w, http.StatusCreated, order)
	}
}

// rejectionReason maps a placement failure to a bounded metric label.
func rejectionReason(err error) string {

	appErr, ok := errors.IsAppError(err)
	if !ok {
		return "other"
	}

	switch appErr.Code {
	case errors.ErrCodeInsufficientStock:
		return "insufficient_stock"
	case errors.ErrCodeEmptyCart:
		return "empty_cart"
	case errors.ErrCodeNotFound:
		return "not_found"
	default:
		return "other"
	}
}

func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized order access attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		order, svcErr := h.orderService.GetOrderByID(r.Context(), id)
		if svcErr != nil {
			logger.Error("Failed to fetch order", slog.String("orderId", id.String()), slog.Any("error", svcErr))
			response.Error(w, svcErr)
			return
		}

		if order.UserID != claims.UserID {
			logger.Warn("Forbidden order access", slog.String("orderId", id.String()))
			response.Error(w, errors.ForbiddenError("You don't have permission to view this order"))
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized order access attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		orders, total, err := h.orderService.ListOrdersByUser(r.Context(), claims.UserID, page, size)
		if err != nil {
			logger.Error("Failed to fetch orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if page < 1 {
			page = 1
		}

		if size < 1 || size > 100 {
			size = 10
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     orders,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}

func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid order status input")
			return
		}

		order, svcErr := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if svcErr != nil {
			logger.Error("Failed to update order status", slog.String("orderId", id.String()), slog.Any("error", svcErr))
			response.Error(w, svcErr)
			return
		}

		logger.Info("Order status updated",
			slog.String("orderId", id.String()),
			slog.String("status", string(req.Status)))
		response.Success(w, http.StatusOK, order)
	}
}
