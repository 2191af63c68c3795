package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the fully resolved application configuration.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	JWTSecret string
	JWTTTL    time.Duration

	DBDriver      string
	DatabaseDSN   string
	DBAutoMigrate bool

	RabbitMQURL      string
	RabbitMQExchange string

	RedisURL                string
	PromoValidateRateLimit  int64
	PromoValidateRateWindow time.Duration

	Store models.StoreSettings

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	SeedCatalog bool
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront.db?cache=shared")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "orders")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("PROMO_VALIDATE_RATE_LIMIT", 30)
	v.SetDefault("PROMO_VALIDATE_RATE_WINDOW", "1m")
	v.SetDefault("STORE_CURRENCY", "EGP")
	v.SetDefault("STORE_TAX_RATE", "0")
	v.SetDefault("STORE_SHIPPING_RATE", "0.1")
	v.SetDefault("STORE_MIN_SHIPPING_COST", "0")
	v.SetDefault("STORE_MAX_SHIPPING_COST", "")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SEED_CATALOG", false)
}

// Load reads configuration from the environment and, when CONFIG_FILE is set, from
// that file. Environment variables win over file values.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	jwtTTL, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	window, err := time.ParseDuration(v.GetString("PROMO_VALIDATE_RATE_WINDOW"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PROMO_VALIDATE_RATE_WINDOW: %w", err)
	}
	store, err := storeSettings(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:                    v.GetString("APP_PORT"),
		Env:                     strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFormat:               v.GetString("LOG_FORMAT"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		JWTTTL:                  jwtTTL,
		DBDriver:                strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:             v.GetString("DATABASE_DSN"),
		DBAutoMigrate:           v.GetBool("DB_AUTO_MIGRATE"),
		RabbitMQURL:             v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:        v.GetString("RABBITMQ_EXCHANGE"),
		RedisURL:                v.GetString("REDIS_URL"),
		PromoValidateRateLimit:  v.GetInt64("PROMO_VALIDATE_RATE_LIMIT"),
		PromoValidateRateWindow: window,
		Store:                   store,
		AdminUsername:           v.GetString("ADMIN_USERNAME"),
		AdminEmail:              v.GetString("ADMIN_EMAIL"),
		AdminPassword:           v.GetString("ADMIN_PASSWORD"),
		SeedCatalog:             v.GetBool("SEED_CATALOG"),
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = "development-secret"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func storeSettings(v *viper.Viper) (models.StoreSettings, error) {
	s := models.StoreSettings{Currency: strings.ToUpper(v.GetString("STORE_CURRENCY"))}

	var err error
	if s.TaxRate, err = decimal.NewFromString(v.GetString("STORE_TAX_RATE")); err != nil {
		return s, fmt.Errorf("invalid STORE_TAX_RATE: %w", err)
	}
	if s.ShippingRate, err = decimal.NewFromString(v.GetString("STORE_SHIPPING_RATE")); err != nil {
		return s, fmt.Errorf("invalid STORE_SHIPPING_RATE: %w", err)
	}
	if s.MinShippingCost, err = decimal.NewFromString(v.GetString("STORE_MIN_SHIPPING_COST")); err != nil {
		return s, fmt.Errorf("invalid STORE_MIN_SHIPPING_COST: %w", err)
	}
	if raw := strings.TrimSpace(v.GetString("STORE_MAX_SHIPPING_COST")); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return s, fmt.Errorf("invalid STORE_MAX_SHIPPING_COST: %w", err)
		}
		s.MaxShippingCost = decimal.NewNullDecimal(max)
	}
	return s, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("APP_PORT is required"))
	}
	if c.Env != EnvDevelopment && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if c.PromoValidateRateLimit <= 0 {
		errs = append(errs, errors.New("PROMO_VALIDATE_RATE_LIMIT must be positive"))
	}
	if c.PromoValidateRateWindow <= 0 {
		errs = append(errs, errors.New("PROMO_VALIDATE_RATE_WINDOW must be positive"))
	}
	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("store settings: %w", err))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}
