package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// TargetType is the scope a promo discount applies to.
type TargetType string

const (
	TargetProducts   TargetType = "products"
	TargetCategories TargetType = "categories"
	TargetShipping   TargetType = "shipping"
	TargetOrder      TargetType = "order"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetProducts, TargetCategories, TargetShipping, TargetOrder:
		return true
	}
	return false
}

// PromoCode is a redeemable discount. Codes are stored upper-cased.
type PromoCode struct {
	Base
	Code              string          `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name              string          `json:"name" gorm:"type:varchar(120)"`
	Description       string          `json:"description"`
	DiscountType      DiscountType    `json:"discount_type" gorm:"type:varchar(20);not null"`
	DiscountValue     decimal.Decimal `json:"discount_value" gorm:"type:numeric(12,2);not null"`
	TargetType        TargetType      `json:"target_type" gorm:"type:varchar(20);not null"`
	TotalUsageLimit   *int            `json:"total_usage_limit"`
	PerUserUsageLimit *int            `json:"per_user_usage_limit"`
	TotalUsageCount   int             `json:"total_usage_count" gorm:"not null;default:0"`
	StartDate         *time.Time      `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	IsActive          bool            `json:"is_active"`
	Products          []Product       `json:"products,omitempty" gorm:"many2many:promo_code_products;"`
	Categories        []Category      `json:"categories,omitempty" gorm:"many2many:promo_code_categories;"`
	DeletedAt         gorm.DeletedAt  `json:"-" gorm:"index"`
}

// NormalizeCode returns the canonical form used for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *PromoCode) ProductIDs() []string {
	ids := make([]string, 0, len(p.Products))
	for _, product := range p.Products {
		ids = append(ids, product.ID)
	}
	return ids
}

func (p *PromoCode) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, category := range p.Categories {
		ids = append(ids, category.ID)
	}
	return ids
}

// PromoCodeUsage is one row of the append-only redemption ledger.
type PromoCodeUsage struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PromoCodeID    string          `json:"promo_code_id" gorm:"type:varchar(36);index:idx_usage_promo_user;not null"`
	UserID         string          `json:"user_id" gorm:"type:varchar(36);index:idx_usage_promo_user;not null"`
	OrderID        string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2);not null"`
	AppliedAt      time.Time       `json:"applied_at" gorm:"not null"`
}

func (u *PromoCodeUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.AppliedAt.IsZero() {
		u.AppliedAt = time.Now().UTC()
	}
	return nil
}
