package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ContactHandler struct {
	contactService service.ContactService
	validator      *validator.Validate
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService, validator: validator.New()}
}

// SubmitContact godoc
//
//	@Summary	Send a message to the store
//	@Tags		Contact
//	@Accept		json
//	@Produce	json
//	@Param		contact	body		models.ContactRequest	true	"Message"
//	@Success	201		{object}	response.APIResponse{data=models.Contact}
//	@Failure	400		{object}	response.APIResponse
//	@Router		/contact [post]
func (h *ContactHandler) SubmitContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.ContactRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		contact, err := h.contactService.SubmitContact(r.Context(), &req)
		if err != nil {
			fail(w, r, logger, "Failed to store contact message", err)
			return
		}

		logger.Info("Contact message received", slog.String("contactId", contact.ID.String()))
		response.Success(w, http.StatusCreated, "Message received", contact)
	}
}

// ListContacts godoc
//
//	@Summary	Contact messages (admin)
//	@Tags		Contact
//	@Produce	json
//	@Param		status	query		string	false	"Filter by status"	Enums(pending, read, replied)
//	@Param		page	query		int		false	"Page (default 1)"
//	@Param		limit	query		int		false	"Page size (default 10, max 100)"
//	@Success	200		{object}	response.APIResponse{data=[]models.Contact}
//	@Failure	400		{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/contact [get]
func (h *ContactHandler) ListContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)
		status := models.ContactStatus(r.URL.Query().Get("status"))

		contacts, total, err := h.contactService.ListContacts(r.Context(), status, page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list contact messages", err)
			return
		}

		response.Paginated(w, "Messages retrieved", contacts, models.NewPagination(page, limit, total))
	}
}

// UpdateContactStatus godoc
//
//	@Summary	Mark a contact message as read or replied (admin)
//	@Tags		Contact
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Contact ID"
//	@Param		status	body		models.UpdateContactStatusRequest	true	"New status"
//	@Success	200		{object}	response.APIResponse{data=models.Contact}
//	@Failure	400		{object}	response.APIResponse
//	@Failure	404		{object}	response.APIResponse	"Contact submission not found"
//	@Security	BearerAuth
//	@Router		/contact/{id}/status [put]
func (h *ContactHandler) UpdateContactStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		var req models.UpdateContactStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		contact, err := h.contactService.UpdateContactStatus(r.Context(), id, req.Status)
		if err != nil {
			fail(w, r, logger, "Failed to update contact status", err)
			return
		}

		logger.Info("Contact status updated", slog.String("contactId", id.String()), slog.String("status", string(contact.Status)))
		response.Success(w, http.StatusOK, "Contact status updated successfully", contact)
	}
}

// DeleteContact godoc
//
//	@Summary	Delete a contact message (admin)
//	@Tags		Contact
//	@Produce	json
//	@Param		id	path		string	true	"Contact ID"
//	@Success	200	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse	"Contact submission not found"
//	@Security	BearerAuth
//	@Router		/contact/{id} [delete]
func (h *ContactHandler) DeleteContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		if err := h.contactService.DeleteContact(r.Context(), id); err != nil {
			fail(w, r, logger, "Failed to delete contact message", err)
			return
		}

		logger.Info("Contact message deleted", slog.String("contactId", id.String()))
		response.Success(w, http.StatusOK, "Contact submission deleted successfully", nil)
	}
}
