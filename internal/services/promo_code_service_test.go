package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderPromo(discountType models.DiscountType, value string) *models.PromoCode {
	return &models.PromoCode{DiscountType: discountType, DiscountValue: dec(value), TargetType: models.TargetOrder, IsActive: true}
}

func TestComputeDiscount(t *testing.T) {
	pctx := services.PromoContext{Subtotal: dec("80"), Shipping: dec("20")}

	base, discount := services.ComputeDiscount(orderPromo(models.DiscountPercentage, "100"), pctx)
	assert.True(t, dec("100").Equal(base))
	assert.True(t, base.Sub(discount).IsZero(), "100%% off zeroes the base")

	base, discount = services.ComputeDiscount(orderPromo(models.DiscountPercentage, "12.5"), pctx)
	assert.True(t, dec("12.5").Equal(discount))
	assert.True(t, dec("87.5").Equal(base.Sub(discount)))

	_, discount = services.ComputeDiscount(orderPromo(models.DiscountPercentage, "33.335"), services.PromoContext{Subtotal: dec("10")})
	assert.True(t, dec("3.33").Equal(discount))

	_, discount = services.ComputeDiscount(orderPromo(models.DiscountPercentage, "0.05"), services.PromoContext{Subtotal: dec("10")})
	assert.True(t, dec("0.01").Equal(discount), "half-up rounding of 0.005")

	// FIXED10 on a base of 5: discount 5, final 0.
	base, discount = services.ComputeDiscount(orderPromo(models.DiscountFixed, "10"), services.PromoContext{Subtotal: dec("5")})
	assert.True(t, dec("5").Equal(discount))
	assert.True(t, base.Sub(discount).IsZero())
}

func TestComputeDiscount_Targets(t *testing.T) {
	lines := []models.QuoteLine{
		{ProductID: "p1", CategoryID: "c1", LineTotal: dec("30")},
		{ProductID: "p2", CategoryID: "c2", LineTotal: dec("70")},
	}
	pctx := services.PromoContext{Subtotal: dec("100"), Shipping: dec("15"), Lines: lines}

	shipping := &models.PromoCode{DiscountType: models.DiscountPercentage, DiscountValue: dec("50"), TargetType: models.TargetShipping}
	base, discount := services.ComputeDiscount(shipping, pctx)
	assert.True(t, dec("15").Equal(base))
	assert.True(t, dec("7.5").Equal(discount))

	products := &models.PromoCode{DiscountType: models.DiscountFixed, DiscountValue: dec("50"), TargetType: models.TargetProducts,
		Products: []models.Product{{Base: models.Base{ID: "p1"}}}}
	base, discount = services.ComputeDiscount(products, pctx)
	assert.True(t, dec("30").Equal(base))
	assert.True(t, dec("30").Equal(discount))

	categories := &models.PromoCode{DiscountType: models.DiscountPercentage, DiscountValue: dec("10"), TargetType: models.TargetCategories,
		Categories: []models.Category{{Base: models.Base{ID: "c2"}}}}
	base, discount = services.ComputeDiscount(categories, pctx)
	assert.True(t, dec("70").Equal(base))
	assert.True(t, dec("7").Equal(discount))

	categories.Categories = []models.Category{{Base: models.Base{ID: "c9"}}}
	base, discount = services.ComputeDiscount(categories, pctx)
	assert.True(t, base.IsZero())
	assert.True(t, discount.IsZero())
}

func TestPromoCodeService_ValidateRejectionReasons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workedExampleSettings(), nil)
	userID := f.seedUser(t, "shopper")
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)
	pctx := services.PromoContext{UserID: userID, Subtotal: dec("100"), Shipping: dec("20")}

	f.seedPromo(t, models.PromoCode{Code: "OFF", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: false})
	f.seedPromo(t, models.PromoCode{Code: "SOON", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: true, StartDate: &future})
	// Expired and exhausted: the expiry is reported because it is checked first.
	f.seedPromo(t, models.PromoCode{Code: "OLD", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: true,
		EndDate: &past, TotalUsageLimit: intPtr(1), TotalUsageCount: 1})
	f.seedPromo(t, models.PromoCode{Code: "GONE", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: true,
		TotalUsageLimit: intPtr(1), TotalUsageCount: 1})
	f.seedPromo(t, models.PromoCode{Code: "ONCE", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: true,
		PerUserUsageLimit: intPtr(1)})

	cases := map[string]string{
		"off":  services.ReasonInactive,
		"soon": services.ReasonNotStarted,
		"old":  services.ReasonExpired,
		"gone": services.ReasonUsageLimitReached,
	}
	for code, reason := range cases {
		_, err := f.promos.Validate(ctx, code, pctx)
		require.Error(t, err, code)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeDomainRule), code)
		assert.Equal(t, reason, apperrors.ReasonOf(err), code)
	}

	_, err := f.promos.Validate(ctx, "ONCE", services.PromoContext{Subtotal: dec("100")})
	assert.Equal(t, services.ReasonLoginRequired, apperrors.ReasonOf(err))

	once, err := f.promos.Lookup(ctx, "once")
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.PromoCodeUsage{PromoCodeID: once.ID, UserID: userID, OrderID: "o1", DiscountAmount: dec("5")}).Error)
	_, err = f.promos.Validate(ctx, "ONCE", pctx)
	assert.Equal(t, services.ReasonUserLimitReached, apperrors.ReasonOf(err))

	_, err = f.promos.Validate(ctx, "nope", pctx)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestPromoCodeService_ValidateProductsTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workedExampleSettings(), nil)
	detail := f.seedDetail(t, "Mug", "25", 10, nil)
	f.seedPromo(t, models.PromoCode{Code: "MUGS", DiscountType: models.DiscountPercentage, DiscountValue: dec("20"), TargetType: models.TargetProducts, IsActive: true,
		Products: []models.Product{{Base: models.Base{ID: detail.ProductID}}}})

	_, err := f.promos.Validate(ctx, "MUGS", services.PromoContext{Subtotal: dec("40"), Lines: []models.QuoteLine{{ProductID: "other", LineTotal: dec("40")}}})
	assert.Equal(t, services.ReasonNotApplicable, apperrors.ReasonOf(err))
	assert.Contains(t, err.Error(), "not applicable to cart contents")

	eval, err := f.promos.Validate(ctx, " mugs ", services.PromoContext{
		Subtotal: dec("90"),
		Lines: []models.QuoteLine{
			{ProductID: detail.ProductID, LineTotal: dec("50")},
			{ProductID: "other", LineTotal: dec("40")},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(eval.Base))
	assert.True(t, dec("10").Equal(eval.Discount))
	assert.True(t, dec("40").Equal(eval.Final))
}

func TestPromoCodeService_Describe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workedExampleSettings(), nil)
	past := time.Now().Add(-time.Hour)
	f.seedPromo(t, models.PromoCode{Code: "LIVE", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: true})
	f.seedPromo(t, models.PromoCode{Code: "DEAD", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetOrder, IsActive: true, EndDate: &past})

	promo, err := f.promos.Describe(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "LIVE", promo.Code)

	_, err = f.promos.Describe(ctx, "dead")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Equal(t, services.ReasonExpired, apperrors.ReasonOf(err))
}

func TestPromoCodeService_AdminCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workedExampleSettings(), nil)
	category, err := f.products.CreateCategory(ctx, services.CategoryInput{Name: "Kitchen Ware"})
	require.NoError(t, err)
	assert.Equal(t, "kitchen-ware", category.Slug)

	_, err = f.promos.Create(ctx, services.PromoCodeInput{
		Code: "TOOBIG", Name: "Too big", DiscountType: models.DiscountPercentage, DiscountValue: dec("120"), TargetType: models.TargetOrder,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Contains(t, apperrors.As(err).Fields(), "discount_value")

	_, err = f.promos.Create(ctx, services.PromoCodeInput{
		Code: "NOCATS", Name: "No categories", DiscountType: models.DiscountFixed, DiscountValue: dec("5"), TargetType: models.TargetCategories,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	promo, err := f.promos.Create(ctx, services.PromoCodeInput{
		Code: "kitchen15", Name: "Kitchen", DiscountType: models.DiscountPercentage, DiscountValue: dec("15"),
		TargetType: models.TargetCategories, CategoryIDs: []string{category.ID}, TotalUsageLimit: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "KITCHEN15", promo.Code)
	assert.True(t, promo.IsActive)
	assert.Equal(t, []string{category.ID}, promo.CategoryIDs())

	_, err = f.promos.Create(ctx, services.PromoCodeInput{
		Code: "KITCHEN15", Name: "Dup", DiscountType: models.DiscountFixed, DiscountValue: dec("1"), TargetType: models.TargetOrder,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	inactive := false
	updated, err := f.promos.Update(ctx, promo.ID, services.PromoCodeInput{
		Code: "KITCHEN15", Name: "Kitchen", DiscountType: models.DiscountFixed, DiscountValue: dec("3"),
		TargetType: models.TargetOrder, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Empty(t, updated.CategoryIDs())

	list, err := f.promos.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.promos.Delete(ctx, promo.ID))
	_, err = f.promos.Get(ctx, promo.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
