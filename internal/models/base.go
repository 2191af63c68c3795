package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the string uuid primary key and timestamps shared by most tables.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not supply one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductDetail{},
		&PromoCode{},
		&PromoCodeUsage{},
		&Order{},
		&OrderItem{},
		&OrderAttachment{},
		&Cart{},
		&CartItem{},
		&Setting{},
		&Notification{},
	}
}
