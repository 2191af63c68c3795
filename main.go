package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/database"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
	"storefront/pkg/redis"
)

func main() {
	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(ctx, database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseDSN,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := db.DB().AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher = services.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(orderEventLogger(log)); err != nil {
			log.Warn(ctx, "failed to start order event consumer", err)
		}
	} else {
		log.Info(ctx, "RABBITMQ_URL not set, order events are not published")
	}

	// --- Rate limiting ---
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		redisClient, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		limiter = redisClient
	} else {
		log.Info(ctx, "REDIS_URL not set, promo validation is not rate limited")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := app.New(app.Deps{
		Config:    cfg,
		DB:        db,
		Publisher: publisher,
		Limiter:   limiter,
		Registry:  registry,
		Logger:    log,
	})

	if cfg.AdminUsername != "" {
		createdAdmin, err := server.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("ensuring admin account: %w", err)
		}
		if createdAdmin {
			log.Info(log.WithField(ctx, "username", cfg.AdminUsername), "admin account created")
		}
	}
	if cfg.SeedCatalog {
		if err := seedCatalog(ctx, server.Products, log); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	// --- Start HTTP Server ---
	errCh := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "addr", cfg.Port), "starting server")
		errCh <- server.App.Listen(cfg.Port)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info(ctx, "shutting down server")
	if err := server.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn(ctx, "error during shutdown", err)
	}
	log.Info(ctx, "server gracefully stopped")
	return nil
}

// orderEventLogger handles deliveries from the order queue by logging them.
func orderEventLogger(log *logger.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		ctx := log.WithFields(context.Background(), map[string]any{
			"routing_key":  msg.RoutingKey,
			"delivery_tag": msg.DeliveryTag,
		})
		log.Info(ctx, "order event received: "+string(msg.Body))
		return nil
	}
}

type seedProduct struct {
	name        string
	description string
	price       string
	stock       int
}

// seedCatalog populates an empty catalog with a demo category and products. It does
// nothing when categories already exist.
func seedCatalog(ctx context.Context, products *services.ProductService, log *logger.Logger) error {
	existing, err := products.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info(ctx, "catalog already seeded")
		return nil
	}

	category, err := products.CreateCategory(ctx, services.CategoryInput{Name: "Electronics"})
	if err != nil {
		return err
	}

	items := []seedProduct{
		{name: "Laptop", description: "High performance laptop", price: "1200.00", stock: 10},
		{name: "Keyboard", description: "Mechanical keyboard", price: "75.00", stock: 25},
		{name: "Mouse", description: "Ergonomic wireless mouse", price: "25.00", stock: 50},
	}
	for _, item := range items {
		product, err := products.CreateProduct(ctx, services.ProductInput{
			Name:        item.name,
			Description: item.description,
			CategoryID:  &category.ID,
		})
		if err != nil {
			return err
		}
		detail, err := products.AddDetail(ctx, product.ID, services.DetailInput{
			Price: decimal.RequireFromString(item.price),
			Stock: item.stock,
		})
		if err != nil {
			return err
		}
		log.Info(log.WithFields(ctx, map[string]any{"product_id": product.ID, "detail_id": detail.ID}), "seeded product "+item.name)
	}
	return nil
}
