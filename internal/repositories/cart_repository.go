package repositories

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// CartRepository defines data access for server-side carts.
type CartRepository interface {
	// GetOrCreate returns the user's cart with items and their product details loaded.
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	// AddItem adds qty units of a detail, merging with an existing line.
	AddItem(ctx context.Context, cartID, detailID string, qty int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	SetPromoCode(ctx context.Context, cartID, code string) error
	// Clear removes every item and the applied promo code.
	Clear(ctx context.Context, cartID string) error

	WithTx(tx *gorm.DB) CartRepository
}
