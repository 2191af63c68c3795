package repositories

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository defines data access for promo codes and their usage ledger.
type PromoCodeRepository interface {
	// FindByCode matches the normalized code exactly. Soft-deleted codes are not found.
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	FindByID(ctx context.Context, id string) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) error
	// Update saves scalar columns and replaces the product and category targets.
	Update(ctx context.Context, promo *models.PromoCode) error
	Delete(ctx context.Context, id string) error

	// IncrementUsage bumps total_usage_count only while it is below the total limit.
	// It reports false when the limit has been reached.
	IncrementUsage(ctx context.Context, id string) (bool, error)
	CountUserUsages(ctx context.Context, promoID, userID string) (int64, error)
	CreateUsage(ctx context.Context, usage *models.PromoCodeUsage) error
	ListUsages(ctx context.Context, promoID string) ([]models.PromoCodeUsage, error)

	WithTx(tx *gorm.DB) PromoCodeRepository
}
