package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PromoCodeHandler serves the public and customer promo code endpoints.
type PromoCodeHandler struct {
	promos   *services.PromoCodeService
	pricing  *services.PricingService
	carts    *services.CartService
	validate *validator.Validate
}

func NewPromoCodeHandler(promos *services.PromoCodeService, pricing *services.PricingService, carts *services.CartService, validate *validator.Validate) *PromoCodeHandler {
	return &PromoCodeHandler{promos: promos, pricing: pricing, carts: carts, validate: validate}
}

// ValidatePromoRequest is the body of POST /promo-codes/validate. Items, when present,
// are priced to target product and category promos; otherwise the purchasable lines of
// the caller's cart are used.
type ValidatePromoRequest struct {
	Code     string            `json:"code" validate:"required,max=50"`
	Subtotal *decimal.Decimal  `json:"subtotal" validate:"required,gte=0"`
	Shipping *decimal.Decimal  `json:"shipping" validate:"omitempty,gte=0"`
	Items    []models.CartLine `json:"items" validate:"omitempty,dive"`
}

type PromoValidation struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	Name           string              `json:"name"`
	DiscountType   models.DiscountType `json:"discount_type"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	TargetType     models.TargetType   `json:"target_type"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	OriginalAmount decimal.Decimal     `json:"original_amount"`
	FinalAmount    decimal.Decimal     `json:"final_amount"`
}

// PromoSummary is the public subset of a promo code.
type PromoSummary struct {
	Code      string              `json:"code"`
	Type      models.DiscountType `json:"type"`
	Value     decimal.Decimal     `json:"value"`
	ProductID *string             `json:"product_id"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

// HandleValidate checks a code against the given amounts without recording usage.
func (h *PromoCodeHandler) HandleValidate(c *fiber.Ctx) error {
	var req ValidatePromoRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	pctx := services.PromoContext{UserID: userID, Subtotal: *req.Subtotal, Shipping: decimal.Zero}
	if req.Shipping != nil {
		pctx.Shipping = *req.Shipping
	}
	switch {
	case len(req.Items) > 0:
		quote, err := h.pricing.Quote(ctx, req.Items)
		if err != nil {
			return err
		}
		pctx.Lines = quote.LineItems
	case userID != "":
		lines, err := h.carts.PromoLines(ctx, userID)
		if err != nil {
			return err
		}
		pctx.Lines = lines
	}

	eval, err := h.promos.Validate(ctx, req.Code, pctx)
	if err != nil {
		return err
	}
	promo := eval.Promo
	return ok(c, "Promo code is valid", PromoValidation{
		ID:             promo.ID,
		Code:           promo.Code,
		Name:           promo.Name,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		TargetType:     promo.TargetType,
		DiscountAmount: eval.Discount,
		OriginalAmount: eval.Base,
		FinalAmount:    eval.Final,
	})
}

func (h *PromoCodeHandler) HandleLookup(c *fiber.Ctx) error {
	promo, err := h.promos.Describe(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	summary := PromoSummary{Code: promo.Code, Type: promo.DiscountType, Value: promo.DiscountValue}
	if promo.TargetType == models.TargetProducts {
		if ids := promo.ProductIDs(); len(ids) > 0 {
			summary.ProductID = &ids[0]
		}
	}
	return ok(c, "", summary)
}

// HandleApply validates a code against the caller's cart and keeps it on the cart.
func (h *PromoCodeHandler) HandleApply(c *fiber.Ctx) error {
	var req ApplyPromoRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	eval, err := h.carts.ApplyPromo(c.UserContext(), middleware.UserID(c), req.Code)
	if err != nil {
		return err
	}
	return ok(c, "Promo code applied", fiber.Map{
		"discount":   eval.Discount,
		"promo_code": eval.Promo.Code,
	})
}

func (h *PromoCodeHandler) HandleRemove(c *fiber.Ctx) error {
	if err := h.carts.RemovePromo(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return ok(c, "Promo code removed", nil)
}
