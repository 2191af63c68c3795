package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

func NewOrderHandler(service *services.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{service: service, validate: validate}
}

// RegisterRoutes registers the customer order routes. The router must authenticate.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleGetOrders)
	router.Post("/", h.HandleCreateOrder)
	router.Get("/:id", h.HandleGetOrderByID)
	router.Post("/:id/cancel", h.HandleCancelOrder)
}

// HandleGetOrders lists the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, "", orders)
}

func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "", order)
}

func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	order, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return created(c, "Order placed", order)
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.Cancel(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "Order cancelled", order)
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled refunded"`
}

func (h *OrderHandler) HandleListAll(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext(), models.OrderStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return ok(c, "", orders)
}

func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return ok(c, "Order status updated", order)
}

func (h *OrderHandler) HandleMarkPaid(c *fiber.Ctx) error {
	order, err := h.service.MarkPaid(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "Payment recorded", order)
}

func (h *OrderHandler) HandleRefund(c *fiber.Ctx) error {
	order, err := h.service.Refund(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "Order refunded", order)
}
