package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	validator      *validator.Validate
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator.New(),
	}
}

func (h *PaymentHandler) CreatePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized payment attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.CreatePaymentRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid payment input")
			return
		}

		payment, err := h.paymentService.CreatePayment(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to create payment", slog.String("orderId", req.OrderID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment intent created",
			slog.String("orderId", req.OrderID.String()),
			slog.String("paymentIntentId", payment.PaymentIntent.ID))
		response.Success(w, http.StatusCreated, payment)
	}
}

func (h *PaymentHandler) GetPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		paymentIntentID := r.PathValue("id")
		if paymentIntentID == "" {
			response.Error(w, errors.BadRequestError("Payment intent id is required"))
			return
		}

		intent, err := h.paymentService.GetPayment(r.Context(), paymentIntentID)
		if err != nil {
			logger.Error("Failed to fetch payment intent", slog.String("paymentIntentId", paymentIntentID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, intent)
	}
}
