package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// CreateProductRequest is the body of POST /products. Price accepts JSON
// numbers and numeric strings.
type CreateProductRequest struct {
	Name        string          `json:"name" form:"name" validate:"required,max=255"`
	Price       *models.Numeric `json:"price" form:"price" validate:"required,filled,decimal"`
	Description *string         `json:"description" form:"description"`
}

// Normalize trims the text fields. A blank name counts as missing and a
// blank description is stored as null.
func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	trimNumeric(r.Price)
	r.Description = trimToNil(r.Description)
}

// UpdateProductRequest is the body of PUT /products/:id. Absent fields are
// left unchanged; an explicit null or blank description clears it.
type UpdateProductRequest struct {
	Name        *string               `json:"name" validate:"omitnil,filled,max=255"`
	Price       *models.Numeric       `json:"price" validate:"omitnil,filled,decimal"`
	Description models.OptionalString `json:"description"`
}

// Normalize trims supplied text. A blank description clears it.
func (r *UpdateProductRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	trimNumeric(r.Price)
	if r.Description.Set {
		r.Description.Value = trimToNil(r.Description.Value)
	}
}

func trimNumeric(n *models.Numeric) {
	if n != nil {
		*n = models.Numeric(strings.TrimSpace(string(*n)))
	}
}

// trimToNil trims s and drops it when nothing is left.
func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validate *validator.Validate, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes mounts the product routes under /products. Guards run
// before every product route, ahead of body validation.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products", guards...)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", middleware.ValidateBody[CreateProductRequest](h.validate), h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", middleware.ValidateBody[UpdateProductRequest](h.validate), h.HandleUpdateProduct)
	productRoutes.Patch("/:id", middleware.ValidateBody[UpdateProductRequest](h.validate), h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return h.respondError(c, err, "Failed to retrieve products")
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a product from a validated body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	req := middleware.Body[CreateProductRequest](c)
	price, err := req.Price.Float64()
	if err != nil {
		return h.respondError(c, models.NewValidationError("price", "The price field must be a number."), "")
	}

	product, err := h.service.CreateProduct(c.UserContext(), services.NewProduct{
		Name:        req.Name,
		Price:       price,
		Description: req.Description,
	})
	if err != nil {
		return h.respondError(c, err, "Failed to create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return h.respondError(c, err, "")
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err, "Failed to retrieve product")
	}
	return c.JSON(product)
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	req := middleware.Body[UpdateProductRequest](c)
	changes := models.ProductChanges{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Price != nil {
		price, err := req.Price.Float64()
		if err != nil {
			return h.respondError(c, models.NewValidationError("price", "The price field must be a number."), "")
		}
		changes.Price = &price
	}

	id, err := productID(c)
	if err != nil {
		return h.respondError(c, err, "")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, changes)
	if err != nil {
		return h.respondError(c, err, "Failed to update product")
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleDeleteProduct deletes a product and answers with an empty body.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return h.respondError(c, err, "")
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.respondError(c, err, "Failed to delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// productID parses the :id parameter. Anything that is not a positive
// integer cannot name a product.
func productID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("product with ID %q: %w", raw, models.ErrProductNotFound)
	}
	return uint(id), nil
}
