package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

func NewProductHandler(service *services.ProductService, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{service: service, validate: validate}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Get("/categories", h.HandleGetCategories)
}

// RegisterAdminRoutes registers catalog management routes. The router must enforce
// the admin role.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/products", h.HandleAdminGetProducts)
	router.Post("/products", h.HandleCreateProduct)
	router.Put("/products/:id", h.HandleUpdateProduct)
	router.Delete("/products/:id", h.HandleDeleteProduct)
	router.Post("/products/:id/details", h.HandleAddDetail)
	router.Post("/categories", h.HandleCreateCategory)
}

func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("category_id"), false)
	if err != nil {
		return err
	}
	return ok(c, "", products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"), false)
	if err != nil {
		return err
	}
	return ok(c, "", product)
}

func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", categories)
}

func (h *ProductHandler) HandleAdminGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("category_id"), true)
	if err != nil {
		return err
	}
	return ok(c, "", products)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, "Product created", product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return ok(c, "Product updated", product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return ok(c, "Product deleted", nil)
}

func (h *ProductHandler) HandleAddDetail(c *fiber.Ctx) error {
	var req services.DetailInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	detail, err := h.service.AddDetail(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return created(c, "Product detail created", detail)
}

func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req services.CategoryInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, "Category created", category)
}
