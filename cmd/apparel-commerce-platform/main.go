package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/handlers"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/cache"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/config"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/health"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/metrics"
	repository "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/repositories"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/telemetry"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/pkg/recommender"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/pkg/sendGrid"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/pkg/stripe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), &cfg.Telemetry)
	if err != nil {
		slog.Error("❌ Error initializing tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("⚠️ Tracing shutdown encountered an issue", slog.String("error", err.Error()))
		}
	}()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg)
	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	jwtKey := []byte(cfg.Security.JWTKey)
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)
	sendGridClient := sendGrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	recommenderClient := recommender.NewClient(cfg.Recommender.BaseURL, cfg.Recommender.Timeout)

	currency := "usd"
	if len(cfg.Stripe.SupportedCurrencies) > 0 {
		currency = cfg.Stripe.SupportedCurrencies[0]
	}

	userService := service.NewUserService(repos.User, rateLimiter, jwtKey)
	userHandler := handlers.NewUserHandler(userService)
	productService := service.NewProductService(repos.Product, productCache)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	cartHandler := handlers.NewCartHandler(cartService)
	notificationService := service.NewNotificationService(repos.Notification, sendGridClient)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.Product)
	orderHandler := handlers.NewOrderHandler(orderService, notificationService)
	paymentService := service.NewPaymentService(repos.Order, stripeClient, currency)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	recommendationService := service.NewRecommendationService(repos.Product, recommenderClient)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{
		DB:          repos.DB,
		RedisClient: redisClient,
	})
	if err != nil {
		slog.Error("❌ Error initializing health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.Authenticate(productHandler.CreateProduct()))
	routerMux.HandleFunc("GET /api/v1/products/{id}", authMiddleware.Authenticate(productHandler.GetProduct()))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", authMiddleware.Authenticate(productHandler.UpdateProduct()))
	routerMux.HandleFunc("GET /api/v1/products", authMiddleware.Authenticate(productHandler.ListProducts()))
	routerMux.HandleFunc("POST /api/v1/products/{id}/variants", authMiddleware.Authenticate(productHandler.CreateVariant()))
	routerMux.HandleFunc("GET /api/v1/products/{id}/variants", authMiddleware.Authenticate(productHandler.ListVariants()))
	routerMux.HandleFunc("POST /api/v1/stock/restock", authMiddleware.Authenticate(productHandler.Restock()))
	routerMux.HandleFunc("POST /api/v1/stock/recalculate", authMiddleware.Authenticate(productHandler.RecalculateStock()))
	routerMux.HandleFunc("GET /api/v1/recommendations", authMiddleware.Authenticate(recommendationHandler.GetRecommendations()))
	routerMux.HandleFunc("GET /api/v1/carts", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("PATCH /api/v1/orders/{id}/status", authMiddleware.Authenticate(orderHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("POST /api/v1/payments", authMiddleware.Authenticate(paymentHandler.CreatePayment()))
	routerMux.HandleFunc("GET /api/v1/payments/{id}", authMiddleware.Authenticate(paymentHandler.GetPayment()))
	routerMux.HandleFunc("POST /api/v1/notifications/email", authMiddleware.Authenticate(notificationHandler.SendEmail()))
	routerMux.HandleFunc("GET /api/v1/notifications", authMiddleware.Authenticate(notificationHandler.ListNotifications()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "http.server")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}
}
