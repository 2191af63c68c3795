package repositories

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID string
	ActiveOnly bool
}

// ProductRepository defines data access for products and their purchasable details.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	CreateDetail(ctx context.Context, detail *models.ProductDetail) error
	// GetDetails loads details with their owning product. Details of soft-deleted
	// products come back with a nil Product.
	GetDetails(ctx context.Context, ids []string) ([]models.ProductDetail, error)
	// DecrementStock reports false when the detail has fewer than qty units left.
	DecrementStock(ctx context.Context, detailID string, qty int) (bool, error)
	IncrementStock(ctx context.Context, detailID string, qty int) error

	WithTx(tx *gorm.DB) ProductRepository
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
