package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products and can be targeted by promo codes.
type Category struct {
	Base
	Name string `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Slug string `json:"slug" gorm:"type:varchar(120);uniqueIndex;not null"`
}

// Product represents a product in the store. Prices live on its details.
type Product struct {
	Base
	Name        string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	CategoryID  *string         `json:"category_id" gorm:"type:varchar(36);index"`
	Category    *Category       `json:"category,omitempty"`
	IsActive    bool            `json:"is_active"`
	Details     []ProductDetail `json:"details,omitempty"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// ProductDetail is a purchasable variant of a product.
type ProductDetail struct {
	Base
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Product   *Product        `json:"product,omitempty"`
	SKU       string          `json:"sku" gorm:"type:varchar(64)"`
	Size      string          `json:"size" gorm:"type:varchar(32)"`
	Color     string          `json:"color" gorm:"type:varchar(32)"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Discount  decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);not null"`
	Stock     int             `json:"stock" gorm:"not null"`
}

// UnitPrice is the current price less the detail's own discount, never negative.
func (d ProductDetail) UnitPrice() decimal.Decimal {
	price := d.Price.Sub(d.Discount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}
