package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

type fixture struct {
	db            *gorm.DB
	settings      *services.SettingsService
	pricing       *services.PricingService
	promos        *services.PromoCodeService
	orders        *services.OrderService
	carts         *services.CartService
	products      *services.ProductService
	notifications *services.NotificationService
	promoRepo     repositories.PromoCodeRepository
}

func newFixture(t *testing.T, store models.StoreSettings, publisher services.EventPublisher) *fixture {
	t.Helper()
	return newFixtureWithPromoRepo(t, store, publisher, nil)
}

// newFixtureWithPromoRepo lets a test wrap the promo repository the services read through.
// Seeding still goes to the real repository.
func newFixtureWithPromoRepo(t *testing.T, store models.StoreSettings, publisher services.EventPublisher,
	wrap func(repositories.PromoCodeRepository) repositories.PromoCodeRepository) *fixture {
	t.Helper()
	client := testutil.NewDB(t)
	db := client.DB()

	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	promoRepo := repositories.NewGORMPromoCodeRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)

	settings := services.NewSettingsService(repositories.NewGORMSettingRepository(db), store)
	pricing := services.NewPricingService(productRepo, settings)
	var servicePromoRepo repositories.PromoCodeRepository = promoRepo
	if wrap != nil {
		servicePromoRepo = wrap(promoRepo)
	}
	promos := services.NewPromoCodeService(servicePromoRepo, productRepo, categoryRepo, nil)
	orders := services.NewOrderService(services.OrderServiceDeps{
		DB:            client,
		Orders:        repositories.NewGORMOrderRepository(db),
		Products:      productRepo,
		Carts:         cartRepo,
		Notifications: notificationRepo,
		Pricing:       pricing,
		Promos:        promos,
		Settings:      settings,
		Publisher:     publisher,
	})

	return &fixture{
		db:            db,
		settings:      settings,
		pricing:       pricing,
		promos:        promos,
		orders:        orders,
		carts:         services.NewCartService(cartRepo, productRepo, pricing, promos, orders),
		products:      services.NewProductService(productRepo, categoryRepo),
		notifications: services.NewNotificationService(notificationRepo),
		promoRepo:     promoRepo,
	}
}

func workedExampleSettings() models.StoreSettings {
	return models.StoreSettings{
		Currency:        "EGP",
		TaxRate:         dec("0.14"),
		ShippingRate:    dec("0.1"),
		MinShippingCost: dec("20"),
		MaxShippingCost: decimal.NewNullDecimal(dec("50")),
	}
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func intPtr(v int) *int { return &v }

func (f *fixture) seedDetail(t *testing.T, name, price string, stock int, categoryID *string) models.ProductDetail {
	t.Helper()
	product := models.Product{Name: name, IsActive: true, CategoryID: categoryID}
	require.NoError(t, f.db.Create(&product).Error)
	detail := models.ProductDetail{ProductID: product.ID, Price: dec(price), Discount: decimal.Zero, Stock: stock}
	require.NoError(t, f.db.Create(&detail).Error)
	return detail
}

func (f *fixture) seedPromo(t *testing.T, promo models.PromoCode) *models.PromoCode {
	t.Helper()
	if promo.Name == "" {
		promo.Name = promo.Code
	}
	require.NoError(t, f.promoRepo.Create(context.Background(), &promo))
	return &promo
}

func (f *fixture) seedUser(t *testing.T, username string) string {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, f.db.Create(&user).Error)
	return user.ID
}

func timePtr(t time.Time) *time.Time { return &t }
