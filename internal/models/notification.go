package models

import "time"

const NotificationOrderCancelled = "order_cancelled"

// Notification is an in-app message for a user. Delivery channels are external.
type Notification struct {
	Base
	UserID string     `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Type   string     `json:"type" gorm:"type:varchar(40);not null"`
	Title  string     `json:"title" gorm:"not null"`
	Body   string     `json:"body"`
	ReadAt *time.Time `json:"read_at"`
}
