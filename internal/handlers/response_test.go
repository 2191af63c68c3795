package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/pkg/apperrors"
	"storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorApp(exposeInternal bool, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop(), exposeInternal)})
	app.Post("/", handler)
	return app
}

func call(t *testing.T, app *fiber.App, body string) (int, Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestErrorHandlerRendersTypedErrors(t *testing.T) {
	app := newErrorApp(false, func(c *fiber.Ctx) error {
		return apperrors.New(apperrors.CodeDomainRule, "promo code has expired").WithReason("expired")
	})

	status, env := call(t, app, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "promo code has expired", env.Message)
	assert.Equal(t, "expired", env.Reason)
	assert.Equal(t, http.StatusBadRequest, env.Code)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	handler := func(c *fiber.Ctx) error { return errors.New("pq: relation does not exist") }

	status, env := call(t, newErrorApp(false, handler), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", env.Message)

	_, env = call(t, newErrorApp(true, handler), "")
	assert.Contains(t, env.Message, "relation does not exist")
}

func TestErrorHandlerRendersFiberErrors(t *testing.T) {
	app := newErrorApp(false, func(c *fiber.Ctx) error { return fiber.ErrMethodNotAllowed })
	status, env := call(t, app, "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, http.StatusMethodNotAllowed, env.Code)
}

type bindTarget struct {
	Code   string          `json:"code" validate:"required,max=5"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func TestBindReportsFieldsByJSONName(t *testing.T) {
	validate := NewValidator()
	app := newErrorApp(false, func(c *fiber.Ctx) error {
		var dst bindTarget
		if err := bind(c, validate, &dst); err != nil {
			return err
		}
		return ok(c, "bound", dst)
	})

	status, env := call(t, app, `{"code":"TOOLONG","amount":"0"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Field 'code' failed on the 'max' tag", env.Errors["code"])
	assert.Equal(t, "Field 'amount' failed on the 'gt' tag", env.Errors["amount"])

	status, env = call(t, app, `{"code":`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "body")

	status, env = call(t, app, `{"code":"OK","amount":"1.5"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "bound", env.Message)
}
