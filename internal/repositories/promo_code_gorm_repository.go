package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/pkg/apperrors"

	"gorm.io/gorm"
)

// GORMPromoCodeRepository is a GORM implementation of PromoCodeRepository.
type GORMPromoCodeRepository struct {
	db *gorm.DB
}

func NewGORMPromoCodeRepository(db *gorm.DB) *GORMPromoCodeRepository {
	return &GORMPromoCodeRepository{db: db}
}

func (r *GORMPromoCodeRepository) WithTx(tx *gorm.DB) PromoCodeRepository {
	return &GORMPromoCodeRepository{db: tx}
}

func (r *GORMPromoCodeRepository) withTargets(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Products").Preload("Categories")
}

func (r *GORMPromoCodeRepository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	normalized := models.NormalizeCode(code)
	var promo models.PromoCode
	if err := r.withTargets(ctx).First(&promo, "code = ?", normalized).Error; err != nil {
		return nil, lookupError(err, "promo code", normalized)
	}
	return &promo, nil
}

func (r *GORMPromoCodeRepository) FindByID(ctx context.Context, id string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.withTargets(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "promo code", id)
	}
	return &promo, nil
}

func (r *GORMPromoCodeRepository) List(ctx context.Context) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	if err := r.withTargets(ctx).Order("created_at DESC").Find(&promos).Error; err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	return promos, nil
}

func (r *GORMPromoCodeRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	promo.Code = models.NormalizeCode(promo.Code)
	err := r.db.WithContext(ctx).
		Omit("Products.*", "Categories.*").
		Create(promo).Error
	if err != nil {
		return writeError(err, "create", "promo code")
	}
	return nil
}

func (r *GORMPromoCodeRepository) Update(ctx context.Context, promo *models.PromoCode) error {
	promo.Code = models.NormalizeCode(promo.Code)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PromoCode{}).
			Where("id = ?", promo.ID).
			Select("code", "name", "description", "discount_type", "discount_value", "target_type",
				"total_usage_limit", "per_user_usage_limit", "start_date", "end_date", "is_active", "updated_at").
			Updates(promo)
		if res.Error != nil {
			return writeError(res.Error, "update", "promo code")
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "promo code not found")
		}
		if err := replaceTargets(tx.Model(promo).Association("Products"), promo.Products); err != nil {
			return fmt.Errorf("failed to replace promo products: %w", err)
		}
		if err := replaceTargets(tx.Model(promo).Association("Categories"), promo.Categories); err != nil {
			return fmt.Errorf("failed to replace promo categories: %w", err)
		}
		return nil
	})
}

func (r *GORMPromoCodeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.PromoCode{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "promo code not found")
	}
	return nil
}

func (r *GORMPromoCodeRepository) IncrementUsage(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ? AND (total_usage_limit IS NULL OR total_usage_count < total_usage_limit)", id).
		UpdateColumn("total_usage_count", gorm.Expr("total_usage_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment promo usage: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMPromoCodeRepository) CountUserUsages(ctx context.Context, promoID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PromoCodeUsage{}).
		Where("promo_code_id = ? AND user_id = ?", promoID, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count promo usages: %w", err)
	}
	return count, nil
}

func (r *GORMPromoCodeRepository) CreateUsage(ctx context.Context, usage *models.PromoCodeUsage) error {
	if err := r.db.WithContext(ctx).Create(usage).Error; err != nil {
		return writeError(err, "record", "promo code usage")
	}
	return nil
}

func (r *GORMPromoCodeRepository) ListUsages(ctx context.Context, promoID string) ([]models.PromoCodeUsage, error) {
	var usages []models.PromoCodeUsage
	err := r.db.WithContext(ctx).
		Where("promo_code_id = ?", promoID).
		Order("applied_at DESC").
		Find(&usages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list promo usages: %w", err)
	}
	return usages, nil
}

func replaceTargets[T any](assoc *gorm.Association, targets []T) error {
	if len(targets) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(targets)
}
