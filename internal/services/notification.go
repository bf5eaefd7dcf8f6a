package service

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/pkg/sendGrid"
	"github.com/google/uuid"
)

type NotificationService interface {
	SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.NotificationResponse, error)
	SendOrderConfirmation(ctx context.Context, recipient string, order *models.Order) error
	ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, int, error)
}

type notificationService struct {
	repo    repository.NotificationRepository
	emailer sendGrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, emailer sendGrid.EmailService) NotificationService {
	return &notificationService{repo: repo, emailer: emailer}
}

func (s *notificationService) SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.NotificationResponse, error) {

	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      models.NotificationTypeEmail,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Content:   req.Content,
		Status:    models.NotificationStatusPending,
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return nil, appErrors.DatabaseError("Failed to record notification").WithError(err)
	}

	sendErr := s.emailer.Send(ctx, req)

	status := models.NotificationStatusSent

	errorMsg := ""

	if sendErr != nil {
		status = models.NotificationStatusFailed
		errorMsg = sendErr.Error()
	}

	if err := s.repo.UpdateNotificationStatus(ctx, notification.ID, status, errorMsg); err != nil {
		return nil, appErrors.DatabaseError("Failed to update notification status").WithError(err)
	}

	if sendErr != nil {
		return nil, appErrors.ThirdPartyError("Failed to send email").WithError(sendErr)
	}

	now := time.Now()

	return &models.NotificationResponse{
		ID:        notification.ID,
		Type:      notification.Type,
		Status:    status,
		CreatedAt: notification.CreatedAt,
		SentAt:    &now,
	}, nil
}

// SendOrderConfirmation emails a short receipt for a freshly placed order.
// Callers treat a failure as non-fatal: the order already exists.
func (s *notificationService) SendOrderConfirmation(ctx context.Context, recipient string, order *models.Order) error {

	content := fmt.Sprintf("Your order %s has been placed. Total: %.2f. Items: %d.",
		order.ID, order.TotalAmount, len(order.Items))

	_, err := s.SendEmail(ctx, &models.EmailNotificationRequest{
		Subject:   "Order confirmation",
		Content:   content,
		Recipient: recipient,
	})

	return err
}

func (s *notificationService) ListNotifications(ctx context.Context, page int, size int) ([]*models.Notification, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 10
	}

	notifications, total, err := s.repo.ListNotifications(ctx, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch notifications").WithError(err)
	}

	return notifications, total, nil
}
