package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/grocery-store/docs"
	"github.com/aaravmahajanofficial/grocery-store/internal/api/handlers"
	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/cache"
	"github.com/aaravmahajanofficial/grocery-store/internal/config"
	"github.com/aaravmahajanofficial/grocery-store/internal/events"
	"github.com/aaravmahajanofficial/grocery-store/internal/health"
	"github.com/aaravmahajanofficial/grocery-store/internal/metrics"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/telemetry"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/aaravmahajanofficial/grocery-store/pkg/sendgrid"
	"github.com/aaravmahajanofficial/grocery-store/pkg/stripe"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title						Grocery Store API
//	@version					1.0
//	@description				Catalogue, cart, checkout and order management for an online grocery store.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()
	response.ExposeInternalErrors(cfg.IsDevelopment())

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		slog.Error("Failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database
	store, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := repository.RunMigrations(store.DB); err != nil {
			slog.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	repos := repository.NewRepositories(store.DB)

	// Redis
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)
	tokenStore := repository.NewTokenRepo(redisClient)

	// External services
	stripeClient := stripe.NewBreakerClient(
		stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret, nil),
		cfg.Stripe.Breaker,
	)
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	publisher := events.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic))
	}

	jwtKey := []byte(cfg.Security.JWTKey)
	tokenTTL := time.Duration(cfg.Security.JWTExpiryHours) * time.Hour

	// Services
	userService := service.NewUserService(repos.User, rateLimiter, tokenStore, emailService, service.AuthSettings{
		JWTKey:      jwtKey,
		TokenTTL:    tokenTTL,
		FrontendURL: cfg.Security.FrontendURL,
	})
	categoryService := service.NewCategoryService(repos.Category, repos.Product, appCache, cfg.Cache.CategoryTTL)
	productService := service.NewProductService(repos.Product, repos.Category, appCache, cfg.Cache.ProductTTL)
	cartService := service.NewCartService(repos.Transactor, repos.Cart, repos.Product)
	notificationService := service.NewNotificationService(repos.Notification, emailService, cfg.SendGrid.AdminEmail)
	orderService := service.NewOrderService(repos.Transactor, repos.Order, repos.Product, appCache, publisher, notificationService)
	paymentService := service.NewPaymentService(repos, stripeClient, appCache, publisher, cfg.Stripe.Currency)
	reviewService := service.NewReviewService(repos.Review, repos.Product, repos.Order)
	contactService := service.NewContactService(repos.Contact)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, paymentService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	contactHandler := handlers.NewContactHandler(contactService)

	healthHandler, err := health.NewHealthHandler(cfg, stripeClient)
	if err != nil {
		slog.Error("Failed to create health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	auth := middleware.NewAuthMiddleware(jwtKey, tokenStore)
	admin := func(h http.Handler) http.HandlerFunc {
		return auth.Authenticate(middleware.RequireAdmin(h))
	}

	router := http.NewServeMux()

	router.HandleFunc("POST /api/users/register", userHandler.Register())
	router.HandleFunc("POST /api/users/login", userHandler.Login())
	router.HandleFunc("POST /api/users/logout", auth.Authenticate(userHandler.Logout()))
	router.HandleFunc("GET /api/users/verify-email/{token}", userHandler.VerifyEmail())
	router.HandleFunc("POST /api/users/forgot-password", userHandler.ForgotPassword())
	router.HandleFunc("POST /api/users/forgot-password/reset", userHandler.ResetForgottenPassword())
	router.HandleFunc("PUT /api/users/reset-password", auth.Authenticate(userHandler.ChangePassword()))
	router.HandleFunc("GET /api/users/profile", auth.Authenticate(userHandler.Profile()))
	router.HandleFunc("PUT /api/users/profile", auth.Authenticate(userHandler.UpdateProfile()))
	router.HandleFunc("POST /api/users/profile/verify", auth.Authenticate(userHandler.VerifyProfile()))

	router.HandleFunc("GET /api/categories", categoryHandler.ListCategories())
	router.HandleFunc("GET /api/categories/{id}", categoryHandler.GetCategory())
	router.HandleFunc("GET /api/categories/{id}/products", categoryHandler.ListCategoryProducts())
	router.HandleFunc("POST /api/categories", admin(categoryHandler.CreateCategory()))
	router.HandleFunc("PUT /api/categories/{id}", admin(categoryHandler.UpdateCategory()))
	router.HandleFunc("DELETE /api/categories/{id}", admin(categoryHandler.DeleteCategory()))

	router.HandleFunc("GET /api/products", productHandler.ListProducts())
	router.HandleFunc("GET /api/products/{id}", productHandler.GetProduct())
	router.HandleFunc("POST /api/products", admin(productHandler.CreateProduct()))
	router.HandleFunc("PUT /api/products/{id}", admin(productHandler.UpdateProduct()))
	router.HandleFunc("DELETE /api/products/{id}", admin(productHandler.DeleteProduct()))

	router.HandleFunc("GET /api/cart", auth.Authenticate(cartHandler.GetCart()))
	router.HandleFunc("POST /api/cart/items", auth.Authenticate(cartHandler.AddItem()))
	router.HandleFunc("PUT /api/cart/items/{id}", auth.Authenticate(cartHandler.UpdateItem()))
	router.HandleFunc("DELETE /api/cart/items/{id}", auth.Authenticate(cartHandler.RemoveItem()))
	router.HandleFunc("DELETE /api/cart/clear", auth.Authenticate(cartHandler.ClearCart()))
	router.HandleFunc("POST /api/cart/payment", auth.Authenticate(cartHandler.Checkout()))

	router.HandleFunc("POST /api/orders/create", auth.Authenticate(orderHandler.CreateOrder()))
	router.HandleFunc("GET /api/orders/user", auth.Authenticate(orderHandler.ListUserOrders()))
	router.HandleFunc("GET /api/orders/{id}", auth.Authenticate(orderHandler.GetOrder()))
	router.HandleFunc("POST /api/orders/{id}/cancel", auth.Authenticate(orderHandler.CancelOrder()))
	router.HandleFunc("GET /api/orders", admin(orderHandler.ListAllOrders()))
	router.HandleFunc("PUT /api/orders/{id}/status", admin(orderHandler.UpdateOrderStatus()))
	router.HandleFunc("POST /api/orders/payment", auth.Authenticate(paymentHandler.CreateOrderPayment()))
	router.HandleFunc("POST /api/orders/webhook", paymentHandler.HandleWebhook())

	router.HandleFunc("POST /api/reviews", auth.Authenticate(reviewHandler.CreateReview()))
	router.HandleFunc("PUT /api/reviews/{id}", auth.Authenticate(reviewHandler.UpdateReview()))
	router.HandleFunc("DELETE /api/reviews/{id}", auth.Authenticate(reviewHandler.DeleteReview()))
	router.HandleFunc("GET /api/reviews/product/{productId}", reviewHandler.ListProductReviews())
	router.HandleFunc("GET /api/reviews/user", auth.Authenticate(reviewHandler.ListUserReviews()))

	router.HandleFunc("POST /api/notifications/email", admin(notificationHandler.SendEmail()))
	router.HandleFunc("GET /api/notifications", admin(notificationHandler.ListNotifications()))

	router.HandleFunc("POST /api/contact", contactHandler.SubmitContact())
	router.HandleFunc("GET /api/contact", admin(contactHandler.ListContacts()))
	router.HandleFunc("PUT /api/contact/{id}/status", admin(contactHandler.UpdateContactStatus()))
	router.HandleFunc("DELETE /api/contact/{id}", admin(contactHandler.DeleteContact()))

	router.Handle("GET /health", healthHandler.Handler())
	router.Handle("GET /metrics", metrics.Handler())
	router.Handle("GET /swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = router
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, cfg.OTel.ServiceName)

	server := http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	slog.Info("Server is starting...", slog.String("address", cfg.Addr), slog.String("env", cfg.Env))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.String("error", err.Error()))
	}

	// delivered-order emails run detached from their requests
	notificationService.Wait()

	if err := publisher.Close(); err != nil {
		slog.Error("Error closing event publisher", slog.String("error", err.Error()))
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("Error closing redis client", slog.String("error", err.Error()))
	}

	if err := store.Close(); err != nil {
		slog.Error("Error closing database connection", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("Error flushing traces", slog.String("error", err.Error()))
	}

	slog.Info("Server shut down gracefully")
}
