package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves promo code management and store settings.
type AdminHandler struct {
	promos   *services.PromoCodeService
	settings *services.SettingsService
	validate *validator.Validate
}

func NewAdminHandler(promos *services.PromoCodeService, settings *services.SettingsService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{promos: promos, settings: settings, validate: validate}
}

func (h *AdminHandler) HandleListPromoCodes(c *fiber.Ctx) error {
	promos, err := h.promos.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", promos)
}

func (h *AdminHandler) HandleGetPromoCode(c *fiber.Ctx) error {
	promo, err := h.promos.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "", promo)
}

func (h *AdminHandler) HandleCreatePromoCode(c *fiber.Ctx) error {
	var req services.PromoCodeInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	promo, err := h.promos.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, "Promo code created", promo)
}

func (h *AdminHandler) HandleUpdatePromoCode(c *fiber.Ctx) error {
	var req services.PromoCodeInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	promo, err := h.promos.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return ok(c, "Promo code updated", promo)
}

func (h *AdminHandler) HandleDeletePromoCode(c *fiber.Ctx) error {
	if err := h.promos.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return ok(c, "Promo code deleted", nil)
}

func (h *AdminHandler) HandleListPromoUsages(c *fiber.Ctx) error {
	usages, err := h.promos.ListUsages(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, "", usages)
}

func (h *AdminHandler) HandleGetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", settings)
}

func (h *AdminHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var req services.SettingsUpdate
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	settings, err := h.settings.Update(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, "Settings updated", settings)
}
