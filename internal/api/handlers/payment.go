package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Stripe documents webhook payloads well below this size.
const maxWebhookBytes = 65536

type PaymentHandler struct {
	paymentService service.PaymentService
	validator      *validator.Validate
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validator: validator.New()}
}

// CreateOrderPayment godoc
//
//	@Summary		Start payment for a pending order
//	@Description	Creates a Stripe PaymentIntent for the order total. The order is marked paid when the webhook confirms it.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payment	body		models.OrderPaymentRequest	true	"Order to pay"
//	@Success		200		{object}	response.APIResponse{data=models.OrderPaymentResponse}
//	@Failure		400		{object}	response.APIResponse	"Order already paid or not pending"
//	@Failure		401		{object}	response.APIResponse
//	@Failure		404		{object}	response.APIResponse
//	@Failure		500		{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/orders/payment [post]
func (h *PaymentHandler) CreateOrderPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.OrderPaymentRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.paymentService.CreateOrderPayment(r.Context(), auth, &req)
		if err != nil {
			fail(w, r, logger, "Failed to start order payment", err)
			return
		}

		logger.Info("Order payment started",
			slog.String("orderId", req.OrderID.String()),
			slog.String("paymentIntentId", resp.PaymentIntentID))
		response.Success(w, http.StatusOK, "Payment intent created", resp)
	}
}

// HandleWebhook godoc
//
//	@Summary		Stripe webhook
//	@Description	Verifies the Stripe-Signature header and applies payment_intent.succeeded, payment_intent.payment_failed and charge.refunded events. Other events are acknowledged and ignored.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe signature"
//	@Success		200					{object}	response.APIResponse
//	@Failure		400					{object}	response.APIResponse	"Missing or invalid signature"
//	@Failure		413					{object}	response.APIResponse	"Payload over 64 KiB"
//	@Failure		500					{object}	response.APIResponse
//	@Router			/orders/webhook [post]
func (h *PaymentHandler) HandleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		// A truncated body would only fail signature verification.
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warn("Webhook body over limit", slog.Int64("limit", tooLarge.Limit))
				response.Error(w, appErrors.PayloadTooLargeError("Webhook payload too large"))
				return
			}

			logger.Error("Failed to read webhook body", slog.String("error", err.Error()))
			response.Error(w, appErrors.BadRequestError("Failed to read request body"))
			return
		}

		if err := h.paymentService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
			fail(w, r, logger, "Failed to process webhook", err)
			return
		}

		response.Success(w, http.StatusOK, "Webhook processed", nil)
	}
}
