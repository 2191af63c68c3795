// Package app assembles repositories, services and HTTP routes into a fiber application.
package app

import (
	"context"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/database"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promoValidateScope = "promo-validate"

// Deps are the external resources the application is built on. Publisher, Limiter and
// Registry are optional.
type Deps struct {
	Config    config.Config
	DB        *database.Client
	Publisher services.EventPublisher
	Limiter   middleware.Limiter
	Registry  *prometheus.Registry
	Logger    *logger.Logger

	DisableAccessLog bool
}

// Server is the assembled application together with the services bootstrap needs.
type Server struct {
	App      *fiber.App
	Auth     *services.AuthService
	Products *services.ProductService
	Promos   *services.PromoCodeService
	Orders   *services.OrderService
}

func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	cfg := deps.Config
	db := deps.DB.DB()

	var m *metrics.Metrics
	if deps.Registry != nil {
		m = metrics.New(deps.Registry)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	promoRepo := repositories.NewGORMPromoCodeRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)
	settingRepo := repositories.NewGORMSettingRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	settingsService := services.NewSettingsService(settingRepo, cfg.Store)
	pricingService := services.NewPricingService(productRepo, settingsService)
	promoService := services.NewPromoCodeService(promoRepo, productRepo, categoryRepo, m)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		DB:            deps.DB,
		Orders:        orderRepo,
		Products:      productRepo,
		Carts:         cartRepo,
		Notifications: notificationRepo,
		Pricing:       pricingService,
		Promos:        promoService,
		Settings:      settingsService,
		Publisher:     deps.Publisher,
		Metrics:       m,
		Logger:        log,
	})
	cartService := services.NewCartService(cartRepo, productRepo, pricingService, promoService, orderService)
	productService := services.NewProductService(productRepo, categoryRepo)
	notificationService := services.NewNotificationService(notificationRepo)

	// --- Handlers ---
	validate := handlers.NewValidator()
	authHandler := handlers.NewAuthHandler(authService, validate, log)
	productHandler := handlers.NewProductHandler(productService, validate)
	promoHandler := handlers.NewPromoCodeHandler(promoService, pricingService, cartService, validate)
	cartHandler := handlers.NewCartHandler(cartService, pricingService, validate)
	orderHandler := handlers.NewOrderHandler(orderService, validate)
	adminHandler := handlers.NewAdminHandler(promoService, settingsService, validate)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(log, cfg.IsDevelopment()),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestContext(log))
	if !deps.DisableAccessLog {
		app.Use(fiberlogger.New())
	}

	authRequired := middleware.AuthRequired(authService, log)
	optionalAuth := middleware.OptionalAuth(authService, log)

	// --- API Routes ---
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)

	promos := api.Group("/promo-codes")
	promos.Post("/validate",
		middleware.RateLimit(deps.Limiter, promoValidateScope, cfg.PromoValidateRateLimit, cfg.PromoValidateRateWindow, log),
		optionalAuth,
		promoHandler.HandleValidate,
	)
	promos.Get("/:code", promoHandler.HandleLookup)

	api.Post("/cart/quote", cartHandler.HandleQuote)

	user := api.Group("/user", authRequired)
	user.Get("/cart", cartHandler.HandleGetCart)
	user.Post("/cart/items", cartHandler.HandleAddItem)
	user.Delete("/cart/items/:id", cartHandler.HandleRemoveItem)
	user.Get("/cart/quote", cartHandler.HandleCartQuote)
	user.Post("/cart/checkout", cartHandler.HandleCheckout)
	user.Post("/promo-codes/apply", promoHandler.HandleApply)
	user.Delete("/promo-codes/apply", promoHandler.HandleRemove)
	user.Get("/notifications", notificationHandler.HandleList)

	admin := api.Group("/admin", authRequired, middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(admin)
	admin.Get("/promo-codes", adminHandler.HandleListPromoCodes)
	admin.Post("/promo-codes", adminHandler.HandleCreatePromoCode)
	admin.Get("/promo-codes/:id", adminHandler.HandleGetPromoCode)
	admin.Put("/promo-codes/:id", adminHandler.HandleUpdatePromoCode)
	admin.Delete("/promo-codes/:id", adminHandler.HandleDeletePromoCode)
	admin.Get("/promo-codes/:id/usages", adminHandler.HandleListPromoUsages)
	admin.Get("/orders", orderHandler.HandleListAll)
	admin.Patch("/orders/:id/status", orderHandler.HandleUpdateStatus)
	admin.Post("/orders/:id/payment", orderHandler.HandleMarkPaid)
	admin.Post("/orders/:id/refund", orderHandler.HandleRefund)
	admin.Get("/settings", adminHandler.HandleGetSettings)
	admin.Put("/settings", adminHandler.HandleUpdateSettings)

	orderHandler.RegisterRoutes(app.Group("/orders", authRequired))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			log.Warn(c.UserContext(), "health check failed", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	return &Server{
		App:      app,
		Auth:     authService,
		Products: productService,
		Promos:   promoService,
		Orders:   orderService,
	}
}
