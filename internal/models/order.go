package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: {OrderRefunded},
	OrderCancelled: {OrderRefunded},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle graph has an edge s -> next.
// Refunds additionally require a completed payment; see Order.CanTransitionTo.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable is the cancellation whitelist.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// Order is a placed customer order. TotalAmount is always derived by RecomputeTotal.
type Order struct {
	Base
	OrderNumber    string            `json:"order_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	UserID         string            `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Status         OrderStatus       `json:"status" gorm:"type:varchar(20);index;not null"`
	PaymentStatus  PaymentStatus     `json:"payment_status" gorm:"type:varchar(20);not null"`
	Subtotal       decimal.Decimal   `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	ShippingCost   decimal.Decimal   `json:"shipping_cost" gorm:"type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal   `json:"tax_amount" gorm:"type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal   `json:"discount_amount" gorm:"type:numeric(12,2);not null"`
	TotalAmount    decimal.Decimal   `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Currency       string            `json:"currency" gorm:"type:varchar(3);not null"`
	PromoCodeID    *string           `json:"promo_code_id" gorm:"type:varchar(36);index"`
	Notes          string            `json:"notes"`
	CancelledAt    *time.Time        `json:"cancelled_at"`
	Items          []OrderItem       `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	Attachments    []OrderAttachment `json:"attachments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (o *Order) RecomputeTotal() {
	o.TotalAmount = o.Subtotal.Add(o.ShippingCost).Add(o.TaxAmount).Sub(o.DiscountAmount)
}

func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if !o.Status.CanTransitionTo(next) {
		return false
	}
	if next == OrderRefunded {
		return o.PaymentStatus == PaymentCompleted
	}
	return true
}

// OrderItem represents a single line within an order, priced at placement time.
type OrderItem struct {
	Base
	OrderID         string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductDetailID string          `json:"product_detail_id" gorm:"type:varchar(36);not null"`
	ProductID       string          `json:"product_id" gorm:"type:varchar(36);not null"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	UnitPrice       decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	LineTotal       decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);not null"`
}

const (
	AttachmentReceipt = "receipt"
	AttachmentInvoice = "invoice"
	AttachmentOther   = "attachment"
)

// OrderAttachment references a file stored outside this service.
type OrderAttachment struct {
	Base
	OrderID string `json:"order_id" gorm:"type:varchar(36);index;not null"`
	Kind    string `json:"kind" gorm:"type:varchar(20);not null"`
	Path    string `json:"path" gorm:"type:varchar(512);not null"`
}
