package services

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/apperrors"
)

// CartQuote is the priced cart together with the applied promo, if it still holds.
type CartQuote struct {
	Quote      models.PriceQuote `json:"quote"`
	PromoCode  string            `json:"promo_code,omitempty"`
	Promo      *PromoEvaluation  `json:"promo,omitempty"`
	PromoError string            `json:"promo_error,omitempty"`
}

// CheckoutInput carries the order fields that do not come from the cart.
type CheckoutInput struct {
	Notes       string   `json:"notes" validate:"max=1000"`
	Receipt     string   `json:"receipt" validate:"max=512"`
	Invoice     string   `json:"invoice" validate:"max=512"`
	Attachments []string `json:"attachments" validate:"max=10,dive,required,max=512"`
}

// CartService manages server-side carts and the promo code applied to them.
type CartService struct {
	carts       repositories.CartRepository
	productRepo repositories.ProductRepository
	pricing     *PricingService
	promos      *PromoCodeService
	orders      *OrderService
}

func NewCartService(
	carts repositories.CartRepository,
	productRepo repositories.ProductRepository,
	pricing *PricingService,
	promos *PromoCodeService,
	orders *OrderService,
) *CartService {
	return &CartService{
		carts:       carts,
		productRepo: productRepo,
		pricing:     pricing,
		promos:      promos,
		orders:      orders,
	}
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// PromoLines prices the cart lines that are still purchasable, for promo targeting.
// Lines whose product was deleted or deactivated are left out.
func (s *CartService) PromoLines(ctx context.Context, userID string) ([]models.QuoteLine, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductDetailID)
	}
	details, err := s.productRepo.GetDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	live := make(map[string]struct{}, len(details))
	for _, d := range details {
		if d.Product != nil && d.Product.IsActive {
			live[d.ID] = struct{}{}
		}
	}

	usable := lines[:0]
	for _, line := range lines {
		if _, ok := live[line.ProductDetailID]; ok && line.Quantity > 0 {
			usable = append(usable, line)
		}
	}
	if len(usable) == 0 {
		return nil, nil
	}
	quote, err := s.pricing.Quote(ctx, usable)
	if err != nil {
		return nil, err
	}
	return quote.LineItems, nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, line models.CartLine) (*models.Cart, error) {
	if line.Quantity <= 0 {
		return nil, apperrors.Validation("invalid quantity", map[string]string{"quantity": "must be greater than zero"})
	}
	details, err := s.productRepo.GetDetails(ctx, []string{line.ProductDetailID})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 || details[0].Product == nil || !details[0].Product.IsActive {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "product detail %s not found", line.ProductDetailID)
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.AddItem(ctx, cart.ID, line.ProductDetailID, line.Quantity); err != nil {
		return nil, err
	}
	return s.carts.GetOrCreate(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetOrCreate(ctx, userID)
}

// Quote prices the cart. A promo that no longer validates is reported in PromoError
// and left out of the totals.
func (s *CartService) Quote(ctx context.Context, userID string) (*CartQuote, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.Quote(ctx, cart.Lines())
	if err != nil {
		return nil, err
	}

	result := &CartQuote{Quote: quote, PromoCode: cart.PromoCode}
	if cart.PromoCode == "" {
		return result, nil
	}
	eval, err := s.promos.Validate(ctx, cart.PromoCode, promoContext(userID, quote))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeDomainRule) || apperrors.IsCode(err, apperrors.CodeNotFound) {
			result.PromoError = apperrors.As(err).Message()
			return result, nil
		}
		return nil, err
	}
	result.Promo = eval
	result.Quote = quote.ApplyDiscount(eval.Discount)
	return result, nil
}

// ApplyPromo validates code against the cart and stores it on the cart.
func (s *CartService) ApplyPromo(ctx context.Context, userID, code string) (*PromoEvaluation, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.Quote(ctx, cart.Lines())
	if err != nil {
		return nil, err
	}
	eval, err := s.promos.Validate(ctx, code, promoContext(userID, quote))
	if err != nil {
		return nil, err
	}
	if err := s.carts.SetPromoCode(ctx, cart.ID, eval.Promo.Code); err != nil {
		return nil, err
	}
	return eval, nil
}

func (s *CartService) RemovePromo(ctx context.Context, userID string) error {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.carts.SetPromoCode(ctx, cart.ID, "")
}

// Checkout places an order from the cart contents and empties the cart in the same
// transaction.
func (s *CartService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*models.Order, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.orders.PlaceOrder(ctx, userID, PlaceOrderInput{
		Items:       cart.Lines(),
		PromoCode:   cart.PromoCode,
		Notes:       input.Notes,
		Receipt:     input.Receipt,
		Invoice:     input.Invoice,
		Attachments: input.Attachments,
		cartID:      cart.ID,
	})
}

func promoContext(userID string, quote models.PriceQuote) PromoContext {
	return PromoContext{
		UserID:   userID,
		Subtotal: quote.Subtotal,
		Shipping: quote.ShippingCost,
		Lines:    quote.LineItems,
	}
}
