package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SettingCurrency        = "currency"
	SettingTaxRate         = "tax_rate"
	SettingShippingRate    = "shipping_rate"
	SettingMinShippingCost = "min_shipping_cost"
	SettingMaxShippingCost = "max_shipping_cost"
)

// Setting is a key/value override of the configured store settings.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(64)"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreSettings are the inputs of the pricing calculator. An invalid MaxShippingCost
// means no upper bound.
type StoreSettings struct {
	Currency        string              `json:"currency"`
	TaxRate         decimal.Decimal     `json:"tax_rate"`
	ShippingRate    decimal.Decimal     `json:"shipping_rate"`
	MinShippingCost decimal.Decimal     `json:"min_shipping_cost"`
	MaxShippingCost decimal.NullDecimal `json:"max_shipping_cost"`
}

func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		Currency:        "EGP",
		TaxRate:         decimal.Zero,
		ShippingRate:    decimal.RequireFromString("0.1"),
		MinShippingCost: decimal.Zero,
	}
}

func (s StoreSettings) Validate() error {
	if len(s.Currency) != 3 {
		return errors.New("currency must be a 3-letter code")
	}
	if s.TaxRate.IsNegative() || s.ShippingRate.IsNegative() {
		return errors.New("rates must not be negative")
	}
	if s.MinShippingCost.IsNegative() {
		return errors.New("min_shipping_cost must not be negative")
	}
	if s.MaxShippingCost.Valid && s.MaxShippingCost.Decimal.LessThan(s.MinShippingCost) {
		return errors.New("min_shipping_cost must not exceed max_shipping_cost")
	}
	return nil
}
