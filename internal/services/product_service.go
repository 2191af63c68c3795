package services

import (
	"context"
	"regexp"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"max=500"`
	CategoryID  *string `json:"category_id" validate:"omitempty,max=36"`
	IsActive    *bool   `json:"is_active"`
}

// DetailInput is the admin payload for a purchasable product variant.
type DetailInput struct {
	SKU      string          `json:"sku" validate:"max=64"`
	Size     string          `json:"size" validate:"max=32"`
	Color    string          `json:"color" validate:"max=32"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
	Stock    int             `json:"stock" validate:"gte=0"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=120"`
}

// ProductService handles business logic related to the catalog.
type ProductService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo}
}

// ListProducts returns products; inactive ones only when includeInactive is set.
func (s *ProductService) ListProducts(ctx context.Context, categoryID string, includeInactive bool) ([]models.Product, error) {
	return s.productRepo.List(ctx, repositories.ProductFilter{CategoryID: categoryID, ActiveOnly: !includeInactive})
}

// GetProduct hides inactive products unless includeInactive is set.
func (s *ProductService) GetProduct(ctx context.Context, id string, includeInactive bool) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	input.CategoryID = blankToNil(input.CategoryID)
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.CategoryID = blankToNil(input.CategoryID)
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	product.Name = input.Name
	product.Description = input.Description
	product.CategoryID = input.CategoryID
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) AddDetail(ctx context.Context, productID string, input DetailInput) (*models.ProductDetail, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if input.Discount.GreaterThan(input.Price) {
		return nil, apperrors.Validation("invalid product detail", map[string]string{"discount": "must not exceed price"})
	}
	detail := &models.ProductDetail{
		ProductID: productID,
		SKU:       input.SKU,
		Size:      input.Size,
		Color:     input.Color,
		Price:     input.Price,
		Discount:  input.Discount,
		Stock:     input.Stock,
	}
	if err := s.productRepo.CreateDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *ProductService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Name)
	}
	category := &models.Category{Name: input.Name, Slug: slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, *id); err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.Validation("invalid product", map[string]string{"category_id": "unknown category"})
		}
		return err
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func blankToNil(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}
