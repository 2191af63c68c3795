package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// PricingService turns cart lines into price quotes.
type PricingService struct {
	productRepo repositories.ProductRepository
	settings    *SettingsService
}

func NewPricingService(productRepo repositories.ProductRepository, settings *SettingsService) *PricingService {
	return &PricingService{productRepo: productRepo, settings: settings}
}

// Quote prices lines against the current catalog and store settings.
func (s *PricingService) Quote(ctx context.Context, lines []models.CartLine) (models.PriceQuote, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return models.PriceQuote{}, err
	}
	return s.quote(ctx, s.productRepo, lines, settings)
}

// quote resolves lines through repo, which may be bound to a transaction.
func (s *PricingService) quote(ctx context.Context, repo repositories.ProductRepository, lines []models.CartLine, settings models.StoreSettings) (models.PriceQuote, error) {
	priced, err := resolveLines(ctx, repo, lines)
	if err != nil {
		return models.PriceQuote{}, err
	}
	return CalculateQuote(priced, settings), nil
}

func resolveLines(ctx context.Context, repo repositories.ProductRepository, lines []models.CartLine) ([]models.QuoteLine, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validation("cart is empty", map[string]string{"items": "at least one item is required"})
	}
	ids := make([]string, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.Validation("invalid quantity", map[string]string{
				fmt.Sprintf("items[%d].quantity", i): "must be greater than zero",
			})
		}
		ids = append(ids, line.ProductDetailID)
	}

	details, err := repo.GetDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.ProductDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	priced := make([]models.QuoteLine, 0, len(lines))
	for _, line := range lines {
		detail, ok := byID[line.ProductDetailID]
		if !ok || detail.Product == nil || !detail.Product.IsActive {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "product detail %s not found", line.ProductDetailID)
		}
		quoteLine := models.QuoteLine{
			ProductDetailID: detail.ID,
			ProductID:       detail.ProductID,
			ProductName:     detail.Product.Name,
			Quantity:        line.Quantity,
			UnitPrice:       detail.UnitPrice(),
		}
		if detail.Product.CategoryID != nil {
			quoteLine.CategoryID = *detail.Product.CategoryID
		}
		priced = append(priced, quoteLine)
	}
	return priced, nil
}

// CalculateQuote is the pure pricing step: line totals, subtotal, clamped shipping
// and tax. The returned quote carries no discount.
func CalculateQuote(lines []models.QuoteLine, settings models.StoreSettings) models.PriceQuote {
	quote := models.PriceQuote{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		Currency:       settings.Currency,
		LineItems:      make([]models.QuoteLine, 0, len(lines)),
	}
	for _, line := range lines {
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		quote.Subtotal = quote.Subtotal.Add(line.LineTotal)
		quote.LineItems = append(quote.LineItems, line)
	}

	quote.ShippingCost = ShippingCost(quote.Subtotal, settings)
	quote.TaxAmount = quote.Subtotal.Mul(settings.TaxRate).Round(2)
	quote.TotalAmount = quote.Subtotal.Add(quote.ShippingCost).Add(quote.TaxAmount)
	return quote
}

// ShippingCost is subtotal × shipping_rate rounded to cents and clamped to
// [min_shipping_cost, max_shipping_cost]. An unset maximum leaves it unbounded.
func ShippingCost(subtotal decimal.Decimal, settings models.StoreSettings) decimal.Decimal {
	cost := subtotal.Mul(settings.ShippingRate).Round(2)
	if cost.LessThan(settings.MinShippingCost) {
		cost = settings.MinShippingCost
	}
	if settings.MaxShippingCost.Valid && cost.GreaterThan(settings.MaxShippingCost.Decimal) {
		cost = settings.MaxShippingCost.Decimal
	}
	return cost
}
