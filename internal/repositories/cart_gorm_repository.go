package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/pkg/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &GORMCartRepository{db: tx}
}

func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	db := r.db.WithContext(ctx)
	seed := models.Cart{UserID: userID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	var cart models.Cart
	err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at") }).
		Preload("Items.ProductDetail.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, lookupError(err, "cart", userID)
	}
	return &cart, nil
}

func (r *GORMCartRepository) AddItem(ctx context.Context, cartID, detailID string, qty int) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_detail_id = ?", cartID, detailID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	item := models.CartItem{CartID: cartID, ProductDetailID: detailID, Quantity: qty}
	if err := db.Omit("ProductDetail").Create(&item).Error; err != nil {
		return writeError(err, "add", "cart item")
	}
	return nil
}

func (r *GORMCartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ? AND cart_id = ?", itemID, cartID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (r *GORMCartRepository) SetPromoCode(ctx context.Context, cartID, code string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("promo_code", code).Error
	if err != nil {
		return fmt.Errorf("failed to set cart promo code: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) Clear(ctx context.Context, cartID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := db.Model(&models.Cart{}).Where("id = ?", cartID).Update("promo_code", "").Error; err != nil {
		return fmt.Errorf("failed to clear cart promo code: %w", err)
	}
	return nil
}
