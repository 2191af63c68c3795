package repositories

import (
	"context"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Empty fields match everything.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order together with its items and attachments.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another and reports false when
	// the stored status no longer equals from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, cancelledAt *time.Time) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error

	WithTx(tx *gorm.DB) OrderRepository
}
