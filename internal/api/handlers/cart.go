package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService    service.CartService
	paymentService service.PaymentService
	validator      *validator.Validate
}

func NewCartHandler(cartService service.CartService, paymentService service.PaymentService) *CartHandler {
	return &CartHandler{cartService: cartService, paymentService: paymentService, validator: validator.New()}
}

// GetCart godoc
//
//	@Summary		Get the current user's cart
//	@Description	Returns the cart with its items, creating an empty one on first access.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	response.APIResponse{data=models.Cart}
//	@Failure		401	{object}	response.APIResponse
//	@Failure		500	{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), auth.UserID)
		if err != nil {
			fail(w, r, logger, "Failed to load cart", err)
			return
		}

		response.Success(w, http.StatusOK, "Cart retrieved", cart)
	}
}

// AddItem godoc
//
//	@Summary		Add a product to the cart
//	@Description	Adds the quantity to an existing line for the same product or creates a new line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Product and quantity"
//	@Success		200		{object}	response.APIResponse{data=models.Cart}
//	@Failure		400		{object}	response.APIResponse	"Validation error or insufficient stock"
//	@Failure		401		{object}	response.APIResponse
//	@Failure		404		{object}	response.APIResponse	"Product not found"
//	@Security		BearerAuth
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), auth.UserID, &req)
		if err != nil {
			fail(w, r, logger, "Failed to add cart item", err)
			return
		}

		logger.Info("Cart item added", slog.String("productId", req.ProductID.String()), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, "Item added to cart", cart)
	}
}

// UpdateItem godoc
//
//	@Summary		Change a cart line's quantity
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Cart item ID"	Format(uuid)
//	@Param			item	body		models.UpdateItemRequest	true	"New quantity"
//	@Success		200		{object}	response.APIResponse{data=models.Cart}
//	@Failure		400		{object}	response.APIResponse
//	@Failure		401		{object}	response.APIResponse
//	@Failure		404		{object}	response.APIResponse	"Cart item not found"
//	@Security		BearerAuth
//	@Router			/cart/items/{id} [put]
func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		itemID, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		var req models.UpdateItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateItem(r.Context(), auth.UserID, itemID, &req)
		if err != nil {
			fail(w, r, logger, "Failed to update cart item", err)
			return
		}

		response.Success(w, http.StatusOK, "Cart item updated", cart)
	}
}

// RemoveItem godoc
//
//	@Summary	Remove a line from the cart
//	@Tags		Cart
//	@Produce	json
//	@Param		id	path		string	true	"Cart item ID"	Format(uuid)
//	@Success	200	{object}	response.APIResponse{data=models.Cart}
//	@Failure	401	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		itemID, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), auth.UserID, itemID)
		if err != nil {
			fail(w, r, logger, "Failed to remove cart item", err)
			return
		}

		response.Success(w, http.StatusOK, "Cart item removed", cart)
	}
}

// ClearCart godoc
//
//	@Summary	Empty the cart
//	@Tags		Cart
//	@Produce	json
//	@Success	200	{object}	response.APIResponse{data=models.Cart}
//	@Failure	401	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/cart/clear [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), auth.UserID)
		if err != nil {
			fail(w, r, logger, "Failed to clear cart", err)
			return
		}

		response.Success(w, http.StatusOK, "Cart cleared", cart)
	}
}

// Checkout godoc
//
//	@Summary		Pay for the cart
//	@Description	Charges the cart total through Stripe. On success stock is decremented and the cart emptied. A requires_action status returns the client secret for 3-D Secure.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			payment	body		models.CheckoutRequest	true	"Payment method"
//	@Success		200		{object}	response.APIResponse{data=models.CheckoutResponse}
//	@Failure		400		{object}	response.APIResponse	"Empty cart, insufficient stock or card declined"
//	@Failure		401		{object}	response.APIResponse
//	@Failure		500		{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/cart/payment [post]
func (h *CartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.paymentService.CheckoutCart(r.Context(), auth.UserID, &req)
		if err != nil {
			fail(w, r, logger, "Cart checkout failed", err)
			return
		}

		logger.Info("Cart checkout processed",
			slog.String("paymentIntentId", resp.PaymentIntentID),
			slog.String("status", resp.Status))
		response.Success(w, http.StatusOK, "Payment processed", resp)
	}
}
