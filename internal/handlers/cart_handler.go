package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler serves quotes and the authenticated user's cart.
type CartHandler struct {
	carts    *services.CartService
	pricing  *services.PricingService
	validate *validator.Validate
}

func NewCartHandler(carts *services.CartService, pricing *services.PricingService, validate *validator.Validate) *CartHandler {
	return &CartHandler{carts: carts, pricing: pricing, validate: validate}
}

type QuoteRequest struct {
	Items []models.CartLine `json:"items" validate:"required,min=1,dive"`
}

// HandleQuote prices arbitrary lines without touching any cart.
func (h *CartHandler) HandleQuote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	quote, err := h.pricing.Quote(c.UserContext(), req.Items)
	if err != nil {
		return err
	}
	return ok(c, "", quote)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.carts.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, "", cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var line models.CartLine
	if err := bind(c, h.validate, &line); err != nil {
		return err
	}
	cart, err := h.carts.AddItem(c.UserContext(), middleware.UserID(c), line)
	if err != nil {
		return err
	}
	return ok(c, "Item added to cart", cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.carts.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "Item removed from cart", cart)
}

func (h *CartHandler) HandleCartQuote(c *fiber.Ctx) error {
	quote, err := h.carts.Quote(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, "", quote)
}

func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutInput
	if len(c.Body()) > 0 {
		if err := bind(c, h.validate, &req); err != nil {
			return err
		}
	}
	order, err := h.carts.Checkout(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return created(c, "Order placed", order)
}
