package services

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner runs fn inside a database transaction. *database.Client satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventPublisher publishes domain events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Actor identifies the caller of an operation that is subject to ownership checks.
type Actor struct {
	UserID  string
	IsAdmin bool
}
