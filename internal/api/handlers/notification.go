package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	validator           *validator.Validate
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		validator:           validator.New(),
	}
}

func (h *NotificationHandler) SendEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.EmailNotificationRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid notification input")
			return
		}

		resp, err := h.notificationService.SendEmail(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to send email", slog.String("recipient", req.Recipient), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Email sent", slog.String("notificationId", resp.ID.String()))
		response.Success(w, http.StatusOK, resp)
	}
}

func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		notifications, total, err := h.notificationService.ListNotifications(r.Context(), page, size)
		if err != nil {
			logger.Error("Failed to fetch notifications", slog.Any("error", err))
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
			Data:     notifications,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}
