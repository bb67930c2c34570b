package handlers

import (
	"errors"
	"log"
	"time"

	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Get("/check-expiration/:unique_code", h.HandleCheckExpiration)
	productRoutes.Get("/check-product/:unique_code", h.HandleCheckProduct)
}

// HandleCreateProduct creates a new product owned by the authenticated caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authenticated user identity is missing",
		})
	}

	product, err := h.service.CreateProduct(input, ownerID)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return productErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added successfully",
		"product": product,
	})
}

// HandleUpdateProduct applies a partial update to an existing product.
// Fields absent from the request body are left unchanged.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be a positive integer",
		})
	}

	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(uint(id), input)
	if err != nil {
		log.Printf("Error updating product %d: %v", id, err)
		return productErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleCheckExpiration reports the expiration date and expired flag for
// the product with the given unique code.
func (h *ProductHandler) HandleCheckExpiration(c *fiber.Ctx) error {
	code := c.Params("unique_code")

	status, err := h.service.CheckExpiration(code, time.Now().UTC())
	if err != nil {
		log.Printf("Error checking expiration for code %s: %v", code, err)
		return productErrorResponse(c, err)
	}

	return c.JSON(status)
}

// HandleCheckProduct reports stock and type information for the product
// with the given unique code.
func (h *ProductHandler) HandleCheckProduct(c *fiber.Ctx) error {
	code := c.Params("unique_code")

	status, err := h.service.CheckProduct(code)
	if err != nil {
		log.Printf("Error checking product for code %s: %v", code, err)
		return productErrorResponse(c, err)
	}

	return c.JSON(status)
}

// productErrorResponse maps service and repository errors onto HTTP
// responses: validation 422, commit-time code conflict 409, missing
// record 404, anything else 500.
func productErrorResponse(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.Is(err, repositories.ErrDuplicateCode):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Product with this unique code already exists",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error saving product to the database",
			"error":   err.Error(),
		})
	}
}
