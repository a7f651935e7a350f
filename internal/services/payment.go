package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/cache"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/events"
	"github.com/aaravmahajanofficial/grocery-store/internal/metrics"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	gateway "github.com/aaravmahajanofficial/grocery-store/pkg/stripe"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
)

const (
	metadataUserID  = "userId"
	metadataCartID  = "cartId"
	metadataOrderID = "orderId"
	metadataSource  = "source"
)

type PaymentService interface {
	CheckoutCart(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, error)
	CreateOrderPayment(ctx context.Context, auth models.AuthContext, req *models.OrderPaymentRequest) (*models.OrderPaymentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	tx        repository.Transactor
	users     repository.UserRepository
	carts     repository.CartRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	gateway   gateway.Client
	cache     cache.Cache
	publisher events.Publisher
	currency  string
}

func NewPaymentService(
	repos *repository.Repositories,
	client gateway.Client,
	c cache.Cache,
	publisher events.Publisher,
	currency string,
) PaymentService {
	return &paymentService{
		tx:        repos.Transactor,
		users:     repos.User,
		carts:     repos.Cart,
		products:  repos.Product,
		orders:    repos.Order,
		payments:  repos.Payment,
		gateway:   client,
		cache:     c,
		publisher: publisher,
		currency:  currency,
	}
}

// CheckoutCart charges the cart total and, once the intent has succeeded,
// takes the items off the shelf and empties the cart. Calling it again after
// the customer completed an authentication step resumes the same intent.
func (s *paymentService) CheckoutCart(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	resp, err := s.checkout(ctx, userID, req)

	metrics.RecordCheckout(checkoutOutcome(resp, err))

	return resp, err
}

// cartAttempt is what one checkout call charges for: the cart as it was
// under lock and the intent recorded for it.
type cartAttempt struct {
	cart    *models.Cart
	items   []models.CartItem
	intent  *stripe.PaymentIntent
	resumed bool
}

func (s *paymentService) checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	customerID, err := s.resolveCustomer(ctx, userID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	attempt, err := s.openCartIntent(ctx, userID, cart.ID, customerID, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	intent, err := s.confirmIfNeeded(ctx, attempt.intent, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	resp := &models.CheckoutResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		CustomerID:      customerID,
		Status:          string(intent.Status),
		Amount:          attempt.cart.TotalAmount,
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		if err := s.completeCheckout(ctx, userID, attempt.cart, intent, attempt.items); err != nil {
			return nil, err
		}

		return resp, nil

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		logger.Info("Checkout awaiting customer action",
			slog.String("paymentIntentId", intent.ID),
			slog.String("status", string(intent.Status)),
			slog.Bool("resumed", attempt.resumed),
		)

		return resp, nil

	default:
		return nil, appErrors.InternalError(fmt.Sprintf("Unexpected payment status: %s", intent.Status))
	}
}

// openCartIntent holds the cart row lock while it reads the pending payment
// and records a new one, so concurrent checkouts of one cart share a single
// intent. A pending intent for the same amount is resumed; one for another
// amount is superseded.
func (s *paymentService) openCartIntent(ctx context.Context, userID, cartID uuid.UUID, customerID, paymentMethodID string) (*cartAttempt, error) {
	attempt := &cartAttempt{}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.carts.LockCart(ctx, cartID)
		if err != nil {
			return repoError(err, "Cart not found", "Failed to lock cart")
		}

		items, err := s.carts.ListItems(ctx, cart.ID)
		if err != nil {
			return appErrors.DatabaseError("Failed to load cart items").WithError(err)
		}

		if len(items) == 0 || !cart.TotalAmount.IsPositive() {
			return appErrors.BadRequestError("Cart is empty")
		}

		for _, item := range items {
			product, err := s.products.GetProductByID(ctx, item.ProductID)
			if err != nil {
				return repoError(err, "Product in cart no longer exists", "Failed to load product")
			}

			if err := checkStock(product, item.Quantity); err != nil {
				return err
			}
		}

		attempt.cart, attempt.items = cart, items

		pending, err := s.payments.GetPendingCartPayment(ctx, userID)

		switch {
		case err == nil && pending.Amount.Equal(cart.TotalAmount):
			attempt.intent, err = s.gateway.GetPaymentIntent(ctx, pending.StripeIntentID)
			if err != nil {
				return gatewayError(err, "Failed to load payment intent")
			}

			attempt.resumed = true

			return nil

		case err == nil:
			// The cart changed since the last attempt.
			if err := s.payments.UpdatePaymentStatus(ctx, pending.StripeIntentID, models.PaymentStatusFailed); err != nil &&
				!errors.Is(err, repository.ErrStatusConflict) {
				return appErrors.DatabaseError("Failed to supersede previous payment").WithError(err)
			}

		case !errors.Is(err, repository.ErrNotFound):
			return appErrors.DatabaseError("Failed to load pending payment").WithError(err)
		}

		attempt.intent, err = s.gateway.CreatePaymentIntent(ctx, gateway.PaymentIntentRequest{
			Amount:          utils.ToMinorUnits(cart.TotalAmount),
			Currency:        s.currency,
			CustomerID:      customerID,
			PaymentMethodID: paymentMethodID,
			Description:     "Grocery cart checkout",
			IdempotencyKey:  cartIdempotencyKey(cart),
			Metadata: map[string]string{
				metadataUserID: userID.String(),
				metadataCartID: cart.ID.String(),
				metadataSource: string(models.PaymentSourceCart),
			},
		})
		if err != nil {
			return gatewayError(err, "Failed to create payment intent")
		}

		payment := &models.Payment{
			UserID:           userID,
			Source:           models.PaymentSourceCart,
			StripeIntentID:   attempt.intent.ID,
			StripeCustomerID: customerID,
			Amount:           cart.TotalAmount,
			Currency:         s.currency,
			Status:           models.PaymentStatusPending,
		}

		// Stripe replays the intent of an earlier request with the same key,
		// and that request already stored it.
		if err := s.payments.CreatePayment(ctx, payment); err != nil && !errors.Is(err, repository.ErrDuplicateEntry) {
			return appErrors.DatabaseError("Failed to record payment").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to start checkout")
	}

	return attempt, nil
}

// cartIdempotencyKey changes whenever the cart does, since every cart write
// bumps updated_at.
func cartIdempotencyKey(cart *models.Cart) string {
	return fmt.Sprintf("cart-%s-%d-%d", cart.ID, cart.UpdatedAt.UnixNano(), utils.ToMinorUnits(cart.TotalAmount))
}

func (s *paymentService) confirmIfNeeded(ctx context.Context, intent *stripe.PaymentIntent, paymentMethodID string) (*stripe.PaymentIntent, error) {
	switch intent.Status {
	case stripe.PaymentIntentStatusRequiresConfirmation:
		if intent.PaymentMethod != nil {
			paymentMethodID = ""
		}
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
	default:
		return intent, nil
	}

	confirmed, err := s.gateway.ConfirmPaymentIntent(ctx, intent.ID, paymentMethodID)
	if err != nil {
		return nil, gatewayError(err, "Failed to confirm payment")
	}

	return confirmed, nil
}

// completeCheckout applies a succeeded cart intent exactly once. If the shelf
// ran out while the customer was paying, the charge is refunded.
func (s *paymentService) completeCheckout(ctx context.Context, userID uuid.UUID, cart *models.Cart, intent *stripe.PaymentIntent, items []models.CartItem) error {
	logger := middleware.LoggerFromContext(ctx)
	applied := false

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		first, err := s.payments.MarkPaymentSucceeded(ctx, intent.ID)
		if err != nil {
			return appErrors.DatabaseError("Failed to record payment").WithError(err)
		}

		if !first {
			return nil
		}

		if _, err := s.carts.LockCart(ctx, cart.ID); err != nil {
			return appErrors.DatabaseError("Failed to lock cart").WithError(err)
		}

		for _, item := range inProductOrder(items, cartItemProductID) {
			if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					metrics.RecordStockConflict()

					return appErrors.InsufficientStockError("A product in your cart sold out during checkout; the payment was refunded").
						WithDetail("productId: " + item.ProductID.String()).
						WithError(err)
				}

				return appErrors.DatabaseError("Failed to update stock").WithError(err)
			}
		}

		if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
			return appErrors.DatabaseError("Failed to clear cart").WithError(err)
		}

		if err := s.carts.UpdateTotal(ctx, cart.ID, decimal.Zero); err != nil {
			return appErrors.DatabaseError("Failed to update cart total").WithError(err)
		}

		applied = true

		return nil
	})
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrCodeInsufficientStock) {
			s.refund(ctx, intent.ID)
		}

		return asAppError(err, "Failed to complete checkout")
	}

	if !applied {
		logger.Info("Checkout already completed", slog.String("paymentIntentId", intent.ID))
		return nil
	}

	evictProducts(ctx, s.cache, cartProductIDs(items)...)

	logger.Info("Checkout completed",
		slog.String("paymentIntentId", intent.ID),
		slog.String("amount", cart.TotalAmount.StringFixed(2)),
	)

	publish(ctx, s.publisher, events.New(events.CartCheckedOut, cart.ID, userID, map[string]any{
		"paymentIntentId": intent.ID,
		"amount":          cart.TotalAmount.StringFixed(2),
		"itemCount":       len(items),
	}))

	return nil
}

// refund gives the money back for a checkout that could not be fulfilled.
// The payment row still reads pending because the completing transaction was
// rolled back, so it passes through paid on its way to refunded.
func (s *paymentService) refund(ctx context.Context, intentID string) {
	logger := middleware.LoggerFromContext(ctx)

	if _, err := s.gateway.RefundPayment(ctx, intentID, 0); err != nil {
		logger.Error("Refund after failed checkout did not go through, manual action needed",
			slog.String("paymentIntentId", intentID),
			slog.String("error", err.Error()),
		)

		return
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.payments.MarkPaymentSucceeded(ctx, intentID); err != nil {
			return err
		}

		return s.payments.UpdatePaymentStatus(ctx, intentID, models.PaymentStatusRefunded)
	})
	if err != nil {
		logger.Error("Failed to record refund", slog.String("paymentIntentId", intentID), slog.String("error", err.Error()))
	}
}

func cartItemProductID(item models.CartItem) uuid.UUID { return item.ProductID }

func cartProductIDs(items []models.CartItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	return ids
}

func (s *paymentService) resolveCustomer(ctx context.Context, userID uuid.UUID, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", repoError(err, "User not found", "Failed to load user")
	}

	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customer, err := s.gateway.CreateCustomer(ctx, user.Email, user.Username)
	if err != nil {
		return "", gatewayError(err, "Failed to create payment customer")
	}

	if err := s.users.UpdateStripeCustomerID(ctx, user.ID, customer.ID); err != nil {
		return "", appErrors.DatabaseError("Failed to save payment customer").WithError(err)
	}

	return customer.ID, nil
}

func (s *paymentService) CreateOrderPayment(ctx context.Context, auth models.AuthContext, req *models.OrderPaymentRequest) (*models.OrderPaymentResponse, error) {
	order, err := s.orders.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, repoError(err, "Order not found", "Failed to load order")
	}

	if !auth.CanAccess(order.UserID) {
		return nil, appErrors.NotFoundError("Order not found")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, appErrors.BadRequestError("Order is already paid")
	}

	if order.Status != models.OrderStatusPending {
		return nil, appErrors.BadRequestError("Only pending orders can be paid")
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, gateway.PaymentIntentRequest{
		Amount:      utils.ToMinorUnits(order.TotalAmount),
		Currency:    s.currency,
		Description: "Grocery order " + order.TrackingID,
		Metadata: map[string]string{
			metadataUserID:  order.UserID.String(),
			metadataOrderID: order.ID.String(),
			metadataSource:  string(models.PaymentSourceOrder),
		},
	})
	if err != nil {
		return nil, gatewayError(err, "Failed to create payment intent")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		payment := &models.Payment{
			UserID:         order.UserID,
			OrderID:        &order.ID,
			Source:         models.PaymentSourceOrder,
			StripeIntentID: intent.ID,
			Amount:         order.TotalAmount,
			Currency:       s.currency,
			Status:         models.PaymentStatusPending,
		}

		if err := s.payments.CreatePayment(ctx, payment); err != nil {
			return appErrors.DatabaseError("Failed to record payment").WithError(err)
		}

		if err := s.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPending, intent.ID); err != nil {
			return repoError(err, "Order not found", "Failed to update order payment")
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to record payment")
	}

	return &models.OrderPaymentResponse{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          order.TotalAmount,
		PaymentStatus:   models.PaymentStatusPending,
	}, nil
}

// HandleWebhook applies a verified Stripe event. Unknown event types are
// acknowledged and ignored.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := middleware.LoggerFromContext(ctx)

	if signature == "" {
		return appErrors.BadRequestError("Missing stripe signature")
	}

	event, err := s.gateway.VerifyWebhookSignature(payload, signature)
	if err != nil {
		logger.Warn("Webhook signature verification failed", slog.String("error", err.Error()))
		return appErrors.BadRequestError("Invalid webhook signature").WithError(err)
	}

	logger = logger.With(slog.String("eventId", event.ID), slog.String("eventType", string(event.Type)))
	ctx = middleware.WithLogger(ctx, logger)

	var object map[string]any
	if event.Data != nil {
		object = event.Data.Object
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return s.onIntentSucceeded(ctx, object)
	case "payment_intent.payment_failed":
		return s.onIntentFailed(ctx, object)
	case "charge.refunded":
		return s.onChargeRefunded(ctx, object)
	default:
		logger.Debug("Ignoring webhook event")
		return nil
	}
}

func (s *paymentService) onIntentSucceeded(ctx context.Context, object map[string]any) error {
	intentID, err := objectString(object, "id")
	if err != nil {
		return err
	}

	metadata := objectMetadata(object)

	rawOrderID := metadata[metadataOrderID]
	if rawOrderID == "" {
		// Cart intents are completed by the checkout call that confirmed them.
		return nil
	}

	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return appErrors.BadRequestError("Invalid orderId in payment metadata").WithError(err)
	}

	applied := false

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.MarkOrderPaid(ctx, orderID, intentID); err != nil {
			return settleWrite(ctx, err, "Failed to mark order paid", slog.String("orderId", orderID.String()))
		}

		applied = true

		return s.mirrorPaymentStatus(ctx, intentID, models.PaymentStatusPaid)
	})
	if err != nil {
		return asAppError(err, "Failed to apply payment")
	}

	if !applied {
		return nil
	}

	middleware.LoggerFromContext(ctx).Info("Order paid", slog.String("orderId", orderID.String()), slog.String("paymentIntentId", intentID))

	userID, _ := uuid.Parse(metadata[metadataUserID])

	publish(ctx, s.publisher, events.New(events.OrderPaid, orderID, userID, map[string]any{
		"paymentIntentId": intentID,
	}))

	return nil
}

func (s *paymentService) onIntentFailed(ctx context.Context, object map[string]any) error {
	intentID, err := objectString(object, "id")
	if err != nil {
		return err
	}

	if err := s.mirrorPaymentStatus(ctx, intentID, models.PaymentStatusFailed); err != nil {
		return err
	}

	rawOrderID := objectMetadata(object)[metadataOrderID]
	if rawOrderID == "" {
		return nil
	}

	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return appErrors.BadRequestError("Invalid orderId in payment metadata").WithError(err)
	}

	return settleWrite(ctx, s.orders.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusFailed, intentID),
		"Failed to update order payment", slog.String("orderId", orderID.String()))
}

func (s *paymentService) onChargeRefunded(ctx context.Context, object map[string]any) error {
	intentID, err := objectString(object, "payment_intent")
	if err != nil {
		return err
	}

	payment, err := s.payments.GetPaymentByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.LoggerFromContext(ctx).Warn("Refund for unknown payment", slog.String("paymentIntentId", intentID))
			return nil
		}

		return appErrors.DatabaseError("Failed to load payment").WithError(err)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.mirrorPaymentStatus(ctx, intentID, models.PaymentStatusRefunded); err != nil {
			return err
		}

		if payment.OrderID == nil {
			return nil
		}

		return settleWrite(ctx, s.orders.UpdatePaymentStatus(ctx, *payment.OrderID, models.PaymentStatusRefunded, intentID),
			"Failed to update order payment", slog.String("orderId", payment.OrderID.String()))
	})
	if err != nil {
		return asAppError(err, "Failed to apply refund")
	}

	return nil
}

// mirrorPaymentStatus copies an intent outcome onto the local payment row.
func (s *paymentService) mirrorPaymentStatus(ctx context.Context, intentID string, status models.PaymentStatus) error {
	return settleWrite(ctx, s.payments.UpdatePaymentStatus(ctx, intentID, status),
		"Failed to update payment status", slog.String("paymentIntentId", intentID))
}

// settleWrite decides the outcome of a webhook-driven status write. Stripe
// retries every non-2xx delivery, so writes that can never succeed are logged
// and acknowledged: a row this service never stored, or one already past the
// requested status because events arrived out of order.
func settleWrite(ctx context.Context, err error, failed string, attrs ...any) error {
	logger := middleware.LoggerFromContext(ctx)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		logger.Warn("Webhook refers to an unknown record", attrs...)
		return nil
	case errors.Is(err, repository.ErrStatusConflict):
		logger.Info("Stale webhook event ignored", attrs...)
		return nil
	default:
		return appErrors.DatabaseError(failed).WithError(err)
	}
}

func objectString(object map[string]any, field string) (string, error) {
	value, ok := object[field].(string)
	if !ok || value == "" {
		return "", appErrors.BadRequestError(fmt.Sprintf("Webhook object is missing %s", field))
	}

	return value, nil
}

func objectMetadata(object map[string]any) map[string]string {
	metadata := make(map[string]string)

	raw, ok := object["metadata"].(map[string]any)
	if !ok {
		return metadata
	}

	for key, value := range raw {
		if str, ok := value.(string); ok {
			metadata[key] = str
		}
	}

	return metadata
}

// gatewayError maps Stripe failures: problems with the request itself reach
// the client with Stripe's message, anything else is internal.
func gatewayError(err error, message string) *appErrors.AppError {
	if stripeErr, ok := gateway.IsClientError(err); ok {
		return appErrors.BadRequestError(stripeErr.Msg).WithError(err)
	}

	return appErrors.InternalError(message).WithError(err)
}

func checkoutOutcome(resp *models.CheckoutResponse, err error) string {
	switch {
	case err != nil:
		if _, ok := gateway.IsClientError(err); ok {
			return metrics.CheckoutDeclined
		}

		return metrics.CheckoutFailed
	case resp.Status == string(stripe.PaymentIntentStatusSucceeded):
		return metrics.CheckoutSucceeded
	default:
		return metrics.CheckoutRequiresAction
	}
}
