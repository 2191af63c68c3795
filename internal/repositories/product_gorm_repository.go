package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/pkg/apperrors"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func (r *GORMProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &GORMProductRepository{db: tx}
}

func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Preload("Category").Preload("Details").Order("created_at DESC")
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Details").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "product", id)
	}
	return &product, nil
}

func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return writeError(err, "create", "product")
	}
	return nil
}

// Update saves the product's own columns; details are managed separately.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "category_id", "is_active").
		Updates(product)
	if res.Error != nil {
		return writeError(res.Error, "update", "product")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *GORMProductRepository) CreateDetail(ctx context.Context, detail *models.ProductDetail) error {
	if err := r.db.WithContext(ctx).Omit("Product").Create(detail).Error; err != nil {
		return writeError(err, "create", "product detail")
	}
	return nil
}

func (r *GORMProductRepository) GetDetails(ctx context.Context, ids []string) ([]models.ProductDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var details []models.ProductDetail
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", ids).
		Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product details: %w", err)
	}
	return details, nil
}

func (r *GORMProductRepository) DecrementStock(ctx context.Context, detailID string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductDetail{}).
		Where("id = ? AND stock >= ?", detailID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for %s: %w", detailID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMProductRepository) IncrementStock(ctx context.Context, detailID string, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductDetail{}).
		Where("id = ?", detailID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to restock %s: %w", detailID, res.Error)
	}
	return nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "category", id)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return writeError(err, "create", "category")
	}
	return nil
}
