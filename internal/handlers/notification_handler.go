package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	notifications, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, "", notifications)
}
