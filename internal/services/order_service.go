package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/apperrors"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Routing keys of the order events published on the order exchange.
const (
	EventOrderCreated       = "order.created"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderPaid          = "order.payment_completed"
)

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	OrderID        string               `json:"order_id"`
	OrderNumber    string               `json:"order_number"`
	UserID         string               `json:"user_id"`
	Status         models.OrderStatus   `json:"status"`
	PreviousStatus models.OrderStatus   `json:"previous_status,omitempty"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Currency       string               `json:"currency"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

// PlaceOrderInput is the checkout payload. PromoCodeID and PromoCode are alternative
// ways of naming the same promo.
type PlaceOrderInput struct {
	Items       []models.CartLine `json:"items" validate:"required,min=1,dive"`
	PromoCodeID string            `json:"promo_code_id" validate:"omitempty,max=36"`
	PromoCode   string            `json:"promo_code" validate:"omitempty,max=50"`
	Notes       string            `json:"notes" validate:"max=1000"`
	Receipt     string            `json:"receipt" validate:"max=512"`
	Invoice     string            `json:"invoice" validate:"max=512"`
	Attachments []string          `json:"attachments" validate:"max=10,dive,required,max=512"`

	// cartID is cleared inside the placing transaction when set.
	cartID string
}

// OrderServiceDeps groups the collaborators of OrderService.
type OrderServiceDeps struct {
	DB            TxRunner
	Orders        repositories.OrderRepository
	Products      repositories.ProductRepository
	Carts         repositories.CartRepository
	Notifications repositories.NotificationRepository
	Pricing       *PricingService
	Promos        *PromoCodeService
	Settings      *SettingsService
	Publisher     EventPublisher
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	db            TxRunner
	orders        repositories.OrderRepository
	products      repositories.ProductRepository
	carts         repositories.CartRepository
	notifications repositories.NotificationRepository
	pricing       *PricingService
	promos        *PromoCodeService
	settings      *SettingsService
	publisher     EventPublisher
	metrics       *metrics.Metrics
	logger        *logger.Logger
	now           func() time.Time
}

func NewOrderService(deps OrderServiceDeps) *OrderService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = NopPublisher{}
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &OrderService{
		db:            deps.DB,
		orders:        deps.Orders,
		products:      deps.Products,
		carts:         deps.Carts,
		notifications: deps.Notifications,
		pricing:       deps.Pricing,
		promos:        deps.Promos,
		settings:      deps.Settings,
		publisher:     publisher,
		metrics:       deps.Metrics,
		logger:        log,
		now:           time.Now,
	}
}

// PlaceOrder prices the lines, applies the promo, decrements stock, persists the order
// and records promo usage in a single transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*models.Order, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)

		quote, err := s.pricing.quote(ctx, products, input.Items, settings)
		if err != nil {
			return err
		}

		promo, err := s.resolvePromo(ctx, tx, input)
		if err != nil {
			return err
		}
		var discount decimal.Decimal
		if promo != nil {
			eval, err := s.promos.evaluate(ctx, s.promos.repo.WithTx(tx), promo, PromoContext{
				UserID:   userID,
				Subtotal: quote.Subtotal,
				Shipping: quote.ShippingCost,
				Lines:    quote.LineItems,
			})
			if err != nil {
				s.metrics.PromoRedeemed(resultLabel(err))
				return err
			}
			discount = eval.Discount
			quote = quote.ApplyDiscount(discount)
		}

		for _, line := range quote.LineItems {
			ok, err := products.DecrementStock(ctx, line.ProductDetailID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.Newf(apperrors.CodeDomainRule, "insufficient stock for %s", line.ProductName).
					WithReason("insufficient_stock")
			}
		}

		order = s.buildOrder(userID, quote, input)
		if promo != nil {
			order.PromoCodeID = &promo.ID
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		if promo != nil {
			if err := s.promos.redeem(ctx, tx, promo, userID, order.ID, discount); err != nil {
				return err
			}
		}
		if input.cartID != "" {
			if err := s.carts.WithTx(tx).Clear(ctx, input.cartID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced()
	s.publish(ctx, EventOrderCreated, order, "")
	return order, nil
}

func (s *OrderService) resolvePromo(ctx context.Context, tx *gorm.DB, input PlaceOrderInput) (*models.PromoCode, error) {
	repo := s.promos.repo.WithTx(tx)
	switch {
	case input.PromoCodeID != "":
		promo, err := repo.FindByID(ctx, input.PromoCodeID)
		if err != nil {
			return nil, err
		}
		if input.PromoCode != "" && models.NormalizeCode(input.PromoCode) != promo.Code {
			return nil, apperrors.Validation("promo code mismatch", map[string]string{
				"promo_code": "does not match promo_code_id",
			})
		}
		return promo, nil
	case strings.TrimSpace(input.PromoCode) != "":
		return repo.FindByCode(ctx, input.PromoCode)
	default:
		return nil, nil
	}
}

func (s *OrderService) buildOrder(userID string, quote models.PriceQuote, input PlaceOrderInput) *models.Order {
	now := s.now().UTC()
	order := &models.Order{
		OrderNumber:    orderNumber(now),
		UserID:         userID,
		Status:         models.OrderPending,
		PaymentStatus:  models.PaymentUnpaid,
		Subtotal:       quote.Subtotal,
		ShippingCost:   quote.ShippingCost,
		TaxAmount:      quote.TaxAmount,
		DiscountAmount: quote.DiscountAmount,
		Currency:       quote.Currency,
		Notes:          strings.TrimSpace(input.Notes),
	}
	order.RecomputeTotal()

	for _, line := range quote.LineItems {
		order.Items = append(order.Items, models.OrderItem{
			ProductDetailID: line.ProductDetailID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			LineTotal:       line.LineTotal,
		})
	}
	if input.Receipt != "" {
		order.Attachments = append(order.Attachments, models.OrderAttachment{Kind: models.AttachmentReceipt, Path: input.Receipt})
	}
	if input.Invoice != "" {
		order.Attachments = append(order.Attachments, models.OrderAttachment{Kind: models.AttachmentInvoice, Path: input.Invoice})
	}
	for _, path := range input.Attachments {
		order.Attachments = append(order.Attachments, models.OrderAttachment{Kind: models.AttachmentOther, Path: path})
	}
	return order
}

// orderNumber formats ORD-YYYYMMDD-XXXXXXXX with a random hex suffix.
func orderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// Get returns an order visible to actor.
func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func authorize(actor Actor, order *models.Order) error {
	if actor.IsAdmin || order.UserID == actor.UserID {
		return nil
	}
	return apperrors.New(apperrors.CodeForbidden, "order belongs to another user")
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.List(ctx, repositories.OrderFilter{UserID: userID})
}

func (s *OrderService) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("invalid status filter", map[string]string{"status": "unknown order status"})
	}
	return s.orders.List(ctx, repositories.OrderFilter{Status: status})
}

// UpdateStatus moves an order along the lifecycle graph on behalf of an admin.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperrors.Validation("invalid status", map[string]string{"status": "unknown order status"})
	}
	switch next {
	case models.OrderCancelled:
		return s.Cancel(ctx, Actor{IsAdmin: true}, id)
	case models.OrderRefunded:
		return s.Refund(ctx, id)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanTransitionTo(next) {
		return nil, transitionError(order.Status, next)
	}
	previous := order.Status
	ok, err := s.orders.UpdateStatus(ctx, id, previous, next, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, concurrentUpdate()
	}
	order.Status = next

	s.metrics.OrderTransitioned(string(next))
	s.publish(ctx, EventOrderStatusChanged, order, previous)
	return order, nil
}

// Cancel cancels a pending or confirmed order, restocks its items and notifies the owner.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	var (
		order    *models.Order
		previous models.OrderStatus
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		var err error
		order, err = orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, order); err != nil {
			return err
		}
		if !order.Status.Cancellable() {
			return apperrors.Newf(apperrors.CodeStateConflict, "order in status %s cannot be cancelled", order.Status).
				WithReason("not_cancellable")
		}

		previous = order.Status
		cancelledAt := s.now().UTC()
		ok, err := orders.UpdateStatus(ctx, id, previous, models.OrderCancelled, &cancelledAt)
		if err != nil {
			return err
		}
		if !ok {
			return concurrentUpdate()
		}
		order.Status = models.OrderCancelled
		order.CancelledAt = &cancelledAt

		products := s.products.WithTx(tx)
		for _, item := range order.Items {
			if err := products.IncrementStock(ctx, item.ProductDetailID, item.Quantity); err != nil {
				return err
			}
		}

		return s.notifications.WithTx(tx).Create(ctx, &models.Notification{
			UserID: order.UserID,
			Type:   models.NotificationOrderCancelled,
			Title:  fmt.Sprintf("Order %s cancelled", order.OrderNumber),
			Body:   fmt.Sprintf("Your order %s has been cancelled.", order.OrderNumber),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransitioned(string(models.OrderCancelled))
	s.publish(ctx, EventOrderCancelled, order, previous)
	return order, nil
}

// MarkPaid records a completed payment for an unpaid, non-cancelled order.
func (s *OrderService) MarkPaid(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentUnpaid {
		return nil, apperrors.Newf(apperrors.CodeStateConflict, "payment is already %s", order.PaymentStatus).
			WithReason("already_paid")
	}
	if order.Status == models.OrderCancelled || order.Status == models.OrderRefunded {
		return nil, apperrors.Newf(apperrors.CodeStateConflict, "order in status %s cannot be paid", order.Status).
			WithReason("invalid_transition")
	}
	if err := s.orders.UpdatePaymentStatus(ctx, id, models.PaymentCompleted); err != nil {
		return nil, err
	}
	order.PaymentStatus = models.PaymentCompleted

	s.publish(ctx, EventOrderPaid, order, "")
	return order, nil
}

// Refund moves a delivered or cancelled order with a completed payment to refunded.
func (s *OrderService) Refund(ctx context.Context, id string) (*models.Order, error) {
	var (
		order    *models.Order
		previous models.OrderStatus
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		var err error
		order, err = orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !order.CanTransitionTo(models.OrderRefunded) {
			if order.Status.CanTransitionTo(models.OrderRefunded) {
				return apperrors.New(apperrors.CodeStateConflict, "only orders with a completed payment can be refunded").
					WithReason("payment_not_completed")
			}
			return transitionError(order.Status, models.OrderRefunded)
		}

		previous = order.Status
		ok, err := orders.UpdateStatus(ctx, id, previous, models.OrderRefunded, nil)
		if err != nil {
			return err
		}
		if !ok {
			return concurrentUpdate()
		}
		if err := orders.UpdatePaymentStatus(ctx, id, models.PaymentRefunded); err != nil {
			return err
		}
		order.Status = models.OrderRefunded
		order.PaymentStatus = models.PaymentRefunded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransitioned(string(models.OrderRefunded))
	s.publish(ctx, EventOrderStatusChanged, order, previous)
	return order, nil
}

func transitionError(from, to models.OrderStatus) error {
	return apperrors.Newf(apperrors.CodeStateConflict, "cannot move order from %s to %s", from, to).
		WithReason("invalid_transition")
}

func concurrentUpdate() error {
	return apperrors.New(apperrors.CodeConflict, "order was modified concurrently, retry")
}

// publish emits an order event after commit. Failures are logged, not returned: the
// order change is already durable.
func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order, previous models.OrderStatus) {
	event := OrderEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		PaymentStatus:  order.PaymentStatus,
		TotalAmount:    order.TotalAmount,
		Currency:       order.Currency,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		ctx = s.logger.WithFields(ctx, map[string]any{"routing_key": routingKey, "order_id": order.ID})
		s.logger.Warn(ctx, "failed to publish order event", err)
	}
}
