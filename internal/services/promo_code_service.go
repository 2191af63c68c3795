package services

import (
	"context"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/apperrors"
	"storefront/pkg/metrics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promo rejection reasons, reported in the error envelope and as metric labels.
const (
	ReasonInactive          = "inactive"
	ReasonNotStarted        = "not_started"
	ReasonExpired           = "expired"
	ReasonUsageLimitReached = "usage_limit_reached"
	ReasonLoginRequired     = "login_required"
	ReasonUserLimitReached  = "user_limit_reached"
	ReasonNotApplicable     = "not_applicable"
)

var hundred = decimal.NewFromInt(100)

// PromoContext is everything a promo evaluation depends on besides the code itself.
type PromoContext struct {
	UserID   string
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Lines    []models.QuoteLine
}

// PromoEvaluation is the outcome of a successful validation.
type PromoEvaluation struct {
	Promo    *models.PromoCode `json:"-"`
	Base     decimal.Decimal   `json:"original_amount"`
	Discount decimal.Decimal   `json:"discount_amount"`
	Final    decimal.Decimal   `json:"final_amount"`
}

// PromoCodeInput is the admin payload for creating or replacing a promo code.
type PromoCodeInput struct {
	Code              string              `json:"code" validate:"required,min=3,max=50"`
	Name              string              `json:"name" validate:"required,max=120"`
	Description       string              `json:"description" validate:"max=500"`
	DiscountType      models.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal     `json:"discount_value" validate:"gt=0"`
	TargetType        models.TargetType   `json:"target_type" validate:"required,oneof=products categories shipping order"`
	TotalUsageLimit   *int                `json:"total_usage_limit" validate:"omitempty,gt=0"`
	PerUserUsageLimit *int                `json:"per_user_usage_limit" validate:"omitempty,gt=0"`
	StartDate         *time.Time          `json:"start_date"`
	EndDate           *time.Time          `json:"end_date"`
	IsActive          *bool               `json:"is_active"`
	ProductIDs        []string            `json:"product_ids" validate:"dive,required"`
	CategoryIDs       []string            `json:"category_ids" validate:"dive,required"`
}

// PromoCodeService validates, prices and redeems promo codes.
type PromoCodeService struct {
	repo         repositories.PromoCodeRepository
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewPromoCodeService(
	repo repositories.PromoCodeRepository,
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	m *metrics.Metrics,
) *PromoCodeService {
	return &PromoCodeService{
		repo:         repo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		metrics:      m,
		now:          time.Now,
	}
}

func rejection(reason, message string) error {
	return apperrors.New(apperrors.CodeDomainRule, message).WithReason(reason)
}

// Lookup finds a live promo code by its normalized code.
func (s *PromoCodeService) Lookup(ctx context.Context, code string) (*models.PromoCode, error) {
	return s.repo.FindByCode(ctx, code)
}

// Describe returns a code that is currently usable regardless of user or cart. An
// existing but unusable code is reported as a validation error carrying the reason.
func (s *PromoCodeService) Describe(ctx context.Context, code string) (*models.PromoCode, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := checkWindow(promo, s.now()); err != nil {
		typed := apperrors.As(err)
		return nil, apperrors.New(apperrors.CodeValidation, typed.Message()).WithReason(typed.Reason())
	}
	return promo, nil
}

// Validate evaluates code against pctx without recording any usage.
func (s *PromoCodeService) Validate(ctx context.Context, code string, pctx PromoContext) (*PromoEvaluation, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.metrics.PromoValidated("not_found")
		return nil, err
	}
	eval, err := s.evaluate(ctx, s.repo, promo, pctx)
	if err != nil {
		s.metrics.PromoValidated(resultLabel(err))
		return nil, err
	}
	s.metrics.PromoValidated("ok")
	return eval, nil
}

func (s *PromoCodeService) evaluate(ctx context.Context, repo repositories.PromoCodeRepository, promo *models.PromoCode, pctx PromoContext) (*PromoEvaluation, error) {
	if err := checkWindow(promo, s.now()); err != nil {
		return nil, err
	}

	if promo.PerUserUsageLimit != nil {
		if pctx.UserID == "" {
			return nil, rejection(ReasonLoginRequired, "log in to use this promo code")
		}
		used, err := repo.CountUserUsages(ctx, promo.ID, pctx.UserID)
		if err != nil {
			return nil, err
		}
		if used >= int64(*promo.PerUserUsageLimit) {
			return nil, rejection(ReasonUserLimitReached, "you have already used this promo code the maximum number of times")
		}
	}

	if promo.TargetType == models.TargetProducts && !matchesAny(pctx.Lines, promo.ProductIDs(), lineProduct) {
		return nil, rejection(ReasonNotApplicable, "promo code is not applicable to cart contents")
	}

	base, discount := ComputeDiscount(promo, pctx)
	return &PromoEvaluation{
		Promo:    promo,
		Base:     base,
		Discount: discount,
		Final:    base.Sub(discount),
	}, nil
}

// checkWindow applies the user-independent gates in order: active flag, start date,
// end date, total usage.
func checkWindow(promo *models.PromoCode, now time.Time) error {
	if !promo.IsActive {
		return rejection(ReasonInactive, "promo code is not active")
	}
	if promo.StartDate != nil && promo.StartDate.After(now) {
		return rejection(ReasonNotStarted, "promo code is not active yet")
	}
	if promo.EndDate != nil && promo.EndDate.Before(now) {
		return rejection(ReasonExpired, "promo code has expired")
	}
	if promo.TotalUsageLimit != nil && promo.TotalUsageCount >= *promo.TotalUsageLimit {
		return rejection(ReasonUsageLimitReached, "promo code usage limit has been reached")
	}
	return nil
}

// ComputeDiscount returns the discount base for the promo's target and the discount
// itself, rounded half-up to cents and never larger than the base.
func ComputeDiscount(promo *models.PromoCode, pctx PromoContext) (base, discount decimal.Decimal) {
	switch promo.TargetType {
	case models.TargetOrder:
		base = pctx.Subtotal.Add(pctx.Shipping)
	case models.TargetShipping:
		base = pctx.Shipping
	case models.TargetProducts:
		base = sumMatching(pctx.Lines, promo.ProductIDs(), lineProduct)
	case models.TargetCategories:
		base = sumMatching(pctx.Lines, promo.CategoryIDs(), lineCategory)
	default:
		base = decimal.Zero
	}

	switch promo.DiscountType {
	case models.DiscountPercentage:
		discount = base.Mul(promo.DiscountValue).Div(hundred)
	case models.DiscountFixed:
		discount = decimal.Min(promo.DiscountValue, base)
	default:
		discount = decimal.Zero
	}
	if discount.GreaterThan(base) {
		discount = base
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return base, discount.Round(2)
}

func lineProduct(l models.QuoteLine) string  { return l.ProductID }
func lineCategory(l models.QuoteLine) string { return l.CategoryID }

func matchesAny(lines []models.QuoteLine, ids []string, key func(models.QuoteLine) string) bool {
	set := toSet(ids)
	for _, line := range lines {
		if _, ok := set[key(line)]; ok {
			return true
		}
	}
	return false
}

func sumMatching(lines []models.QuoteLine, ids []string, key func(models.QuoteLine) string) decimal.Decimal {
	set := toSet(ids)
	total := decimal.Zero
	for _, line := range lines {
		if _, ok := set[key(line)]; ok {
			total = total.Add(line.LineTotal)
		}
	}
	return total
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// redeem records a usage inside tx. The conditional counter increment runs first so
// the promo row stays locked while the per-user ledger is re-checked.
func (s *PromoCodeService) redeem(ctx context.Context, tx *gorm.DB, promo *models.PromoCode, userID, orderID string, discount decimal.Decimal) error {
	repo := s.repo.WithTx(tx)

	ok, err := repo.IncrementUsage(ctx, promo.ID)
	if err != nil {
		s.metrics.PromoRedeemed("error")
		return err
	}
	if !ok {
		s.metrics.PromoRedeemed(ReasonUsageLimitReached)
		return rejection(ReasonUsageLimitReached, "promo code usage limit has been reached")
	}

	if promo.PerUserUsageLimit != nil {
		used, err := repo.CountUserUsages(ctx, promo.ID, userID)
		if err != nil {
			s.metrics.PromoRedeemed("error")
			return err
		}
		if used >= int64(*promo.PerUserUsageLimit) {
			s.metrics.PromoRedeemed(ReasonUserLimitReached)
			return rejection(ReasonUserLimitReached, "you have already used this promo code the maximum number of times")
		}
	}

	usage := &models.PromoCodeUsage{
		PromoCodeID:    promo.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
		AppliedAt:      s.now().UTC(),
	}
	if err := repo.CreateUsage(ctx, usage); err != nil {
		s.metrics.PromoRedeemed("error")
		return err
	}
	s.metrics.PromoRedeemed("ok")
	return nil
}

func resultLabel(err error) string {
	if reason := apperrors.ReasonOf(err); reason != "" {
		return reason
	}
	return "error"
}

func (s *PromoCodeService) List(ctx context.Context) ([]models.PromoCode, error) {
	return s.repo.List(ctx)
}

func (s *PromoCodeService) Get(ctx context.Context, id string) (*models.PromoCode, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PromoCodeService) ListUsages(ctx context.Context, id string) ([]models.PromoCodeUsage, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListUsages(ctx, id)
}

func (s *PromoCodeService) Create(ctx context.Context, input PromoCodeInput) (*models.PromoCode, error) {
	promo := &models.PromoCode{IsActive: true}
	if err := s.apply(ctx, promo, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, promo.ID)
}

func (s *PromoCodeService) Update(ctx context.Context, id string, input PromoCodeInput) (*models.PromoCode, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, promo, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *PromoCodeService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// apply copies input onto promo after checking the rules struct tags cannot express.
func (s *PromoCodeService) apply(ctx context.Context, promo *models.PromoCode, input PromoCodeInput) error {
	fields := map[string]string{}
	if !input.DiscountType.Valid() {
		fields["discount_type"] = "must be percentage or fixed"
	}
	if !input.TargetType.Valid() {
		fields["target_type"] = "must be products, categories, shipping or order"
	}
	if !input.DiscountValue.IsPositive() {
		fields["discount_value"] = "must be greater than zero"
	}
	if input.DiscountType == models.DiscountPercentage && input.DiscountValue.GreaterThan(hundred) {
		fields["discount_value"] = "percentage must not exceed 100"
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		fields["end_date"] = "must not be before start_date"
	}
	if input.TargetType == models.TargetProducts && len(input.ProductIDs) == 0 {
		fields["product_ids"] = "required when target_type is products"
	}
	if input.TargetType == models.TargetCategories && len(input.CategoryIDs) == 0 {
		fields["category_ids"] = "required when target_type is categories"
	}
	if input.TotalUsageLimit != nil && *input.TotalUsageLimit < promo.TotalUsageCount {
		fields["total_usage_limit"] = "must not be below the current usage count"
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid promo code", fields)
	}

	products := make([]models.Product, 0, len(input.ProductIDs))
	for _, id := range input.ProductIDs {
		if _, err := s.productRepo.GetByID(ctx, id); err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				return apperrors.Validation("invalid promo code", map[string]string{"product_ids": "unknown product " + id})
			}
			return err
		}
		products = append(products, models.Product{Base: models.Base{ID: id}})
	}
	categories, err := s.categoryRepo.GetByIDs(ctx, input.CategoryIDs)
	if err != nil {
		return err
	}
	if len(categories) != len(toSet(input.CategoryIDs)) {
		return apperrors.Validation("invalid promo code", map[string]string{"category_ids": "unknown category"})
	}

	promo.Code = models.NormalizeCode(input.Code)
	promo.Name = input.Name
	promo.Description = input.Description
	promo.DiscountType = input.DiscountType
	promo.DiscountValue = input.DiscountValue
	promo.TargetType = input.TargetType
	promo.TotalUsageLimit = input.TotalUsageLimit
	promo.PerUserUsageLimit = input.PerUserUsageLimit
	promo.StartDate = input.StartDate
	promo.EndDate = input.EndDate
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}
	promo.Products = products
	promo.Categories = categories
	return nil
}
