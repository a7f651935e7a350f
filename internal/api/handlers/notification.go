package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	validator           *validator.Validate
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, validator: validator.New()}
}

// SendEmail godoc
//
//	@Summary	Send an email (admin)
//	@Tags		Notifications
//	@Accept		json
//	@Produce	json
//	@Param		email	body		models.EmailNotificationRequest	true	"Email"
//	@Success	200		{object}	response.APIResponse{data=models.Notification}
//	@Failure	400		{object}	response.APIResponse
//	@Failure	500		{object}	response.APIResponse	"Email provider rejected the message"
//	@Security	BearerAuth
//	@Router		/notifications/email [post]
func (h *NotificationHandler) SendEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.EmailNotificationRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		notification, err := h.notificationService.SendEmail(r.Context(), &req)
		if err != nil {
			fail(w, r, logger, "Failed to send email", err)
			return
		}

		response.Success(w, http.StatusOK, "Email sent", notification)
	}
}

// ListNotifications godoc
//
//	@Summary	Sent notifications (admin)
//	@Tags		Notifications
//	@Produce	json
//	@Param		page	query		int	false	"Page (default 1)"
//	@Param		limit	query		int	false	"Page size (default 10, max 100)"
//	@Success	200		{object}	response.APIResponse{data=[]models.Notification}
//	@Security	BearerAuth
//	@Router		/notifications [get]
func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)

		notifications, total, err := h.notificationService.ListNotifications(r.Context(), page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list notifications", err)
			return
		}

		response.Paginated(w, "Notifications retrieved", notifications, models.NewPagination(page, limit, total))
	}
}
