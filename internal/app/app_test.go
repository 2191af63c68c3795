package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
	Reason  string            `json:"reason"`
	Code    int               `json:"code"`
}

type testServer struct {
	t      *testing.T
	server *app.Server
}

// fakeLimiter allows the first limit calls per scope.
type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func testConfig() config.Config {
	return config.Config{
		Port:                    ":0",
		Env:                     config.EnvDevelopment,
		JWTSecret:               "test_jwt_secret",
		JWTTTL:                  time.Hour,
		DBDriver:                "sqlite",
		PromoValidateRateLimit:  2,
		PromoValidateRateWindow: time.Minute,
		Store:                   models.StoreSettings{
			Currency:        "EGP",
			TaxRate:         decimal.RequireFromString("0.14"),
			ShippingRate:    decimal.RequireFromString("0.1"),
			MinShippingCost: decimal.RequireFromString("20"),
			MaxShippingCost: decimal.NewNullDecimal(decimal.RequireFromString("50")),
		},
	}
}

func newTestServer(t *testing.T, limiter *fakeLimiter) *testServer {
	t.Helper()
	deps := app.Deps{
		Config:           testConfig(),
		DB:               testutil.NewDB(t),
		Registry:         prometheus.NewRegistry(),
		DisableAccessLog: true,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	return &testServer{t: t, server: app.New(deps)}
}

func (s *testServer) do(method, path string, body any, token string) (*http.Response, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.server.App.Test(req, -1)
	require.NoError(s.t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 && resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) decode(env envelope, dst any) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(env.Data, dst), string(env.Data))
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	resp, _ := s.do(http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, "")
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	return s.login(username, "password123")
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	resp, env := s.do(http.MethodPost, "/api/auth/login", fiber.Map{"username": username, "password": password}, "")
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	var data struct {
		Token string `json:"token"`
	}
	s.decode(env, &data)
	require.NotEmpty(s.t, data.Token)
	return data.Token
}

func (s *testServer) admin() string {
	s.t.Helper()
	_, err := s.server.Auth.EnsureAdmin(context.Background(), "root", "", "rootpass1")
	require.NoError(s.t, err)
	return s.login("root", "rootpass1")
}

// seedDetail creates a category, product and purchasable detail through the admin API.
func (s *testServer) seedDetail(adminToken, price string, stock int) (productID, detailID string) {
	s.t.Helper()
	resp, env := s.do(http.MethodPost, "/api/admin/products", fiber.Map{"name": "Kettle", "description": "Steel kettle"}, adminToken)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var product struct {
		ID string `json:"id"`
	}
	s.decode(env, &product)

	resp, env = s.do(http.MethodPost, "/api/admin/products/"+product.ID+"/details", fiber.Map{
		"sku":   "KT-1",
		"price": price,
		"stock": stock,
	}, adminToken)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var detail struct {
		ID string `json:"id"`
	}
	s.decode(env, &detail)
	return product.ID, detail.ID
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	resp, _ := s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	resp, env := s.do(http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	resp, env = s.do(http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusConflict, env.Code)

	resp, env = s.do(http.MethodPost, "/api/auth/register", fiber.Map{"username": "al", "email": "nope"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "username")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")

	resp, _ = s.do(http.MethodPost, "/api/auth/login", fiber.Map{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	s.login("alice", "password123")
}

func TestProtectedRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	customer := s.register("bob")

	resp, _ := s.do(http.MethodGet, "/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/orders", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env := s.do(http.MethodGet, "/api/admin/promo-codes", nil, customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, http.StatusForbidden, env.Code)

	resp, _ = s.do(http.MethodGet, "/api/admin/promo-codes", nil, s.admin())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPromoCodeValidateAndLookup(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()

	resp, env := s.do(http.MethodPost, "/api/admin/promo-codes", fiber.Map{
		"code":           "save10",
		"name":           "Ten percent",
		"discount_type":  "percentage",
		"discount_value": "10",
		"target_type":    "order",
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	resp, env = s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{
		"code":     "Save10",
		"subtotal": "200",
		"shipping": "20",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var validation struct {
		Code           string          `json:"code"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
		OriginalAmount decimal.Decimal `json:"original_amount"`
		FinalAmount    decimal.Decimal `json:"final_amount"`
	}
	s.decode(env, &validation)
	assert.Equal(t, "SAVE10", validation.Code)
	assert.Equal(t, "22", validation.DiscountAmount.String())
	assert.Equal(t, "220", validation.OriginalAmount.String())
	assert.Equal(t, "198", validation.FinalAmount.String())

	resp, env = s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{"code": "NOPE", "subtotal": "10"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)

	resp, env = s.do(http.MethodGet, "/api/promo-codes/save10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		Code      string          `json:"code"`
		Type      string          `json:"type"`
		Value     decimal.Decimal `json:"value"`
		ProductID *string         `json:"product_id"`
	}
	s.decode(env, &summary)
	assert.Equal(t, "percentage", summary.Type)
	assert.Equal(t, "10", summary.Value.String())
	assert.Nil(t, summary.ProductID)
}

func TestPromoCodeRejectionCarriesReason(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()

	resp, _ := s.do(http.MethodPost, "/api/admin/promo-codes", fiber.Map{
		"code":           "OLD",
		"name":           "Old promo",
		"discount_type":  "fixed",
		"discount_value": "5",
		"target_type":    "order",
		"is_active":      false,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{"code": "old", "subtotal": "50"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "inactive", env.Reason)
}

func TestPromoCodeValidateIsRateLimited(t *testing.T) {
	s := newTestServer(t, &fakeLimiter{})
	body := fiber.Map{"code": "MISSING", "subtotal": "10"}

	for i := 0; i < 2; i++ {
		resp, _ := s.do(http.MethodPost, "/api/promo-codes/validate", body, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp, env := s.do(http.MethodPost, "/api/promo-codes/validate", body, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, http.StatusTooManyRequests, env.Code)
}

type orderBody struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()
	_, detailID := s.seedDetail(adminToken, "100", 5)
	customer := s.register("carol")

	resp, _ := s.do(http.MethodPost, "/api/admin/promo-codes", fiber.Map{
		"code":           "FIXED10",
		"name":           "Ten off",
		"discount_type":  "fixed",
		"discount_value": "10",
		"target_type":    "order",
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := s.do(http.MethodPost, "/orders", fiber.Map{}, customer)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "items")

	resp, env = s.do(http.MethodPost, "/orders", fiber.Map{
		"items":      []fiber.Map{{"product_detail_id": detailID, "quantity": 2}},
		"promo_code": "fixed10",
	}, customer)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var order orderBody
	s.decode(env, &order)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "200", order.Subtotal.String())
	assert.Equal(t, "10", order.DiscountAmount.String())
	assert.Equal(t, "238", order.TotalAmount.String())

	resp, env = s.do(http.MethodPost, "/orders", fiber.Map{
		"items": []fiber.Map{{"product_detail_id": detailID, "quantity": 4}},
	}, customer)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", env.Reason)

	intruder := s.register("mallory")
	resp, _ = s.do(http.MethodGet, "/orders/"+order.ID, nil, intruder)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(http.MethodPost, "/orders/"+order.ID+"/cancel", nil, intruder)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = s.do(http.MethodGet, "/orders", nil, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []orderBody
	s.decode(env, &mine)
	assert.Len(t, mine, 1)

	resp, env = s.do(http.MethodPost, "/orders/"+order.ID+"/cancel", nil, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	s.decode(env, &order)
	assert.Equal(t, "cancelled", order.Status)

	resp, env = s.do(http.MethodPost, "/orders/"+order.ID+"/cancel", nil, customer)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "not_cancellable", env.Reason)

	resp, env = s.do(http.MethodGet, "/api/user/notifications", nil, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notifications []struct {
		Type string `json:"type"`
	}
	s.decode(env, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "order_cancelled", notifications[0].Type)

	resp, env = s.do(http.MethodPost, "/api/admin/orders/"+order.ID+"/refund", nil, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "payment_not_completed", env.Reason)
}

func TestAdminOrderTransitions(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()
	_, detailID := s.seedDetail(adminToken, "50", 3)
	customer := s.register("dave")

	resp, env := s.do(http.MethodPost, "/orders", fiber.Map{
		"items": []fiber.Map{{"product_detail_id": detailID, "quantity": 1}},
	}, customer)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var order orderBody
	s.decode(env, &order)

	resp, env = s.do(http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", fiber.Map{"status": "delivered"}, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_transition", env.Reason)

	resp, _ = s.do(http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", fiber.Map{"status": "unknown"}, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	for _, status := range []string{"confirmed", "shipped", "delivered"} {
		resp, env = s.do(http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", fiber.Map{"status": status}, adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
		s.decode(env, &order)
		assert.Equal(t, status, order.Status)
	}

	resp, env = s.do(http.MethodPost, "/api/admin/orders/"+order.ID+"/payment", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(http.MethodPost, "/api/admin/orders/"+order.ID+"/refund", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	s.decode(env, &order)
	assert.Equal(t, "refunded", order.Status)
	assert.Equal(t, "refunded", order.PaymentStatus)

	resp, env = s.do(http.MethodGet, "/api/admin/orders?status=refunded", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refunded []orderBody
	s.decode(env, &refunded)
	assert.Len(t, refunded, 1)
}

func TestCartCheckoutWithAppliedPromo(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()
	_, detailID := s.seedDetail(adminToken, "100", 5)
	customer := s.register("erin")

	resp, _ := s.do(http.MethodPost, "/api/admin/promo-codes", fiber.Map{
		"code":           "SHIPFREE",
		"name":           "Free shipping",
		"discount_type":  "percentage",
		"discount_value": "100",
		"target_type":    "shipping",
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := s.do(http.MethodPost, "/api/user/cart/items", fiber.Map{"product_detail_id": detailID, "quantity": 2}, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(http.MethodPost, "/api/user/promo-codes/apply", fiber.Map{"code": "shipfree"}, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var applied struct {
		Discount  decimal.Decimal `json:"discount"`
		PromoCode string          `json:"promo_code"`
	}
	s.decode(env, &applied)
	assert.Equal(t, "20", applied.Discount.String())
	assert.Equal(t, "SHIPFREE", applied.PromoCode)

	resp, env = s.do(http.MethodPost, "/api/user/cart/checkout", nil, customer)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var order orderBody
	s.decode(env, &order)
	assert.Equal(t, "228", order.TotalAmount.String())

	resp, _ = s.do(http.MethodGet, "/api/user/cart/quote", nil, customer)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPublicQuoteAndSettings(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()
	_, detailID := s.seedDetail(adminToken, "100", 5)

	resp, env := s.do(http.MethodPost, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{{"product_detail_id": detailID, "quantity": 2}},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var quote struct {
		ShippingCost decimal.Decimal `json:"shipping_cost"`
		TaxAmount    decimal.Decimal `json:"tax_amount"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
	}
	s.decode(env, &quote)
	assert.Equal(t, "20", quote.ShippingCost.String())
	assert.Equal(t, "28", quote.TaxAmount.String())
	assert.Equal(t, "248", quote.TotalAmount.String())

	resp, env = s.do(http.MethodPut, "/api/admin/settings", fiber.Map{"tax_rate": "0"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(http.MethodPost, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{{"product_detail_id": detailID, "quantity": 2}},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s.decode(env, &quote)
	assert.Equal(t, "220", quote.TotalAmount.String())

	resp, env = s.do(http.MethodPut, "/api/admin/settings", fiber.Map{"min_shipping_cost": "60"}, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestPromoValidateIgnoresStaleCartLines(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()
	productID, detailID := s.seedDetail(adminToken, "100", 5)
	customer := s.register("frank")

	resp, env := s.do(http.MethodPost, "/api/user/cart/items", fiber.Map{"product_detail_id": detailID, "quantity": 1}, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, _ = s.do(http.MethodPost, "/api/admin/promo-codes", fiber.Map{
		"code":           "ALL10",
		"name":           "Ten off everything",
		"discount_type":  "fixed",
		"discount_value": "10",
		"target_type":    "order",
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, "/api/admin/products/"+productID, nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{"code": "ALL10", "subtotal": 100}, customer)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var validation struct {
		DiscountAmount decimal.Decimal `json:"discount_amount"`
		FinalAmount    decimal.Decimal `json:"final_amount"`
	}
	s.decode(env, &validation)
	assert.Equal(t, "10", validation.DiscountAmount.String())
	assert.Equal(t, "90", validation.FinalAmount.String())
}

func TestPromoValidateRequiresSubtotal(t *testing.T) {
	s := newTestServer(t, nil)

	resp, env := s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{"code": "ANY"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "subtotal")

	resp, env = s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{"code": "ANY", "subtotal": -1}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "subtotal")

	resp, _ = s.do(http.MethodPost, "/api/promo-codes/validate", fiber.Map{"code": "ANY", "subtotal": 0}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin()

	resp, env := s.do(http.MethodGet, "/api/admin/settings", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var current map[string]json.RawMessage
	s.decode(env, &current)
	assert.JSONEq(t, "50", string(current["max_shipping_cost"]))

	resp, env = s.do(http.MethodPut, "/api/admin/settings", current, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(http.MethodPut, "/api/admin/settings", fiber.Map{"max_shipping_cost": 60}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated struct {
		MaxShippingCost decimal.NullDecimal `json:"max_shipping_cost"`
	}
	s.decode(env, &updated)
	require.True(t, updated.MaxShippingCost.Valid)
	assert.Equal(t, "60", updated.MaxShippingCost.Decimal.String())

	resp, env = s.do(http.MethodPut, "/api/admin/settings", fiber.Map{"max_shipping_cost": nil}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	s.decode(env, &updated)
	assert.False(t, updated.MaxShippingCost.Valid)
}
