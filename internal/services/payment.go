package service

import (
	"context"
	"fmt"
	"math"

	appErrors "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	stripeClient "github.com/aaravmahajanofficial/apparel-commerce-platform/pkg/stripe"
	"github.com/google/uuid"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, userID uuid.UUID, req *models.CreatePaymentRequest) (*models.PaymentResponse, error)
	GetPayment(ctx context.Context, paymentIntentID string) (*models.PaymentIntent, error)
}

type paymentService struct {
	orderRepo repository.OrderRepository
	client    stripeClient.Client
	currency  string
}

func NewPaymentService(orderRepo repository.OrderRepository, client stripeClient.Client, currency string) PaymentService {
	if currency == "" {
		currency = "usd"
	}

	return &paymentService{orderRepo: orderRepo, client: client, currency: currency}
}

// CreatePayment initiates a payment intent for a placed order. The gateway
// works in the currency's minor unit, so the order total is converted to
// cents.
func (s *paymentService) CreatePayment(ctx context.Context, userID uuid.UUID, req *models.CreatePaymentRequest) (*models.PaymentResponse, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, appErrors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("You don't have permission to pay for this order")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, appErrors.BadRequestError("Order is already paid")
	}

	amount := int64(math.Round(order.TotalAmount * 100))

	intent, err := s.client.CreatePaymentIntent(amount, s.currency, fmt.Sprintf("Order %s", order.ID))
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPending, intent.ID); err != nil {
		return nil, appErrors.DatabaseError("Failed to record payment intent").WithError(err)
	}

	return &models.PaymentResponse{
		PaymentIntent: &models.PaymentIntent{
			ID:     intent.ID,
			Amount: float64(intent.Amount) / 100,
			Status: string(intent.Status),
		},
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentIntentID string) (*models.PaymentIntent, error) {

	intent, err := s.client.GetPaymentIntent(paymentIntentID)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to fetch payment intent").WithError(err)
	}

	return &models.PaymentIntent{
		ID:     intent.ID,
		Amount: float64(intent.Amount) / 100,
		Status: string(intent.Status),
	}, nil
}
