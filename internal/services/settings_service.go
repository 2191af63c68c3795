package services

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// SettingsService resolves store settings: configured defaults overlaid with the
// rows stored by admins.
type SettingsService struct {
	repo     repositories.SettingRepository
	defaults models.StoreSettings
}

func NewSettingsService(repo repositories.SettingRepository, defaults models.StoreSettings) *SettingsService {
	return &SettingsService{repo: repo, defaults: defaults}
}

// SettingsUpdate is a partial update.
type SettingsUpdate struct {
	Currency        *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	ShippingRate    *decimal.Decimal `json:"shipping_rate"`
	MinShippingCost *decimal.Decimal `json:"min_shipping_cost"`
	MaxShippingCost ShippingCap      `json:"max_shipping_cost"`
}

// ShippingCap is an optional change of the shipping upper bound. It accepts the same
// number or numeric string that settings are rendered with; null or "" removes the bound.
type ShippingCap struct {
	Set   bool
	Value decimal.NullDecimal
}

// CapShipping sets the upper bound to max.
func CapShipping(max decimal.Decimal) ShippingCap {
	return ShippingCap{Set: true, Value: decimal.NewNullDecimal(max)}
}

// UncapShipping removes the upper bound.
func UncapShipping() ShippingCap {
	return ShippingCap{Set: true}
}

func (c *ShippingCap) UnmarshalJSON(data []byte) error {
	c.Set = true
	switch strings.TrimSpace(string(data)) {
	case "null", `""`:
		c.Value = decimal.NullDecimal{}
		return nil
	}
	var max decimal.Decimal
	if err := max.UnmarshalJSON(data); err != nil {
		return err
	}
	c.Value = decimal.NewNullDecimal(max)
	return nil
}

func (s *SettingsService) Current(ctx context.Context) (models.StoreSettings, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return models.StoreSettings{}, err
	}
	settings, err := overlay(s.defaults, rows)
	if err != nil {
		return models.StoreSettings{}, apperrors.Wrap(apperrors.CodeInternal, err, "store settings are misconfigured")
	}
	if err := settings.Validate(); err != nil {
		return models.StoreSettings{}, apperrors.Wrap(apperrors.CodeInternal, err, "store settings are misconfigured")
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, update SettingsUpdate) (models.StoreSettings, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return models.StoreSettings{}, err
	}

	var rows []models.Setting
	if update.Currency != nil {
		current.Currency = strings.ToUpper(*update.Currency)
		rows = append(rows, models.Setting{Key: models.SettingCurrency, Value: current.Currency})
	}
	if update.TaxRate != nil {
		current.TaxRate = *update.TaxRate
		rows = append(rows, models.Setting{Key: models.SettingTaxRate, Value: update.TaxRate.String()})
	}
	if update.ShippingRate != nil {
		current.ShippingRate = *update.ShippingRate
		rows = append(rows, models.Setting{Key: models.SettingShippingRate, Value: update.ShippingRate.String()})
	}
	if update.MinShippingCost != nil {
		current.MinShippingCost = *update.MinShippingCost
		rows = append(rows, models.Setting{Key: models.SettingMinShippingCost, Value: update.MinShippingCost.String()})
	}
	if update.MaxShippingCost.Set {
		current.MaxShippingCost = update.MaxShippingCost.Value
		var raw string
		if current.MaxShippingCost.Valid {
			raw = current.MaxShippingCost.Decimal.String()
		}
		rows = append(rows, models.Setting{Key: models.SettingMaxShippingCost, Value: raw})
	}

	if err := current.Validate(); err != nil {
		return models.StoreSettings{}, apperrors.Validation(err.Error(), nil)
	}
	if err := s.repo.Upsert(ctx, rows); err != nil {
		return models.StoreSettings{}, err
	}
	return current, nil
}

func overlay(defaults models.StoreSettings, rows []models.Setting) (models.StoreSettings, error) {
	settings := defaults
	for _, row := range rows {
		value := strings.TrimSpace(row.Value)
		var err error
		switch row.Key {
		case models.SettingCurrency:
			settings.Currency = value
		case models.SettingTaxRate:
			settings.TaxRate, err = decimal.NewFromString(value)
		case models.SettingShippingRate:
			settings.ShippingRate, err = decimal.NewFromString(value)
		case models.SettingMinShippingCost:
			settings.MinShippingCost, err = decimal.NewFromString(value)
		case models.SettingMaxShippingCost:
			if value == "" {
				settings.MaxShippingCost = decimal.NullDecimal{}
				continue
			}
			var max decimal.Decimal
			max, err = decimal.NewFromString(value)
			settings.MaxShippingCost = decimal.NewNullDecimal(max)
		}
		if err != nil {
			return settings, fmt.Errorf("setting %s: %w", row.Key, err)
		}
	}
	return settings, nil
}
