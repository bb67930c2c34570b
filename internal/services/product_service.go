package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"inventory/internal/expiration"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for production and expiration dates.
const DateLayout = "2006-01-02"

// CreateProductInput carries the fields of a product creation request.
// The owner is passed separately as the authenticated caller's ID.
type CreateProductInput struct {
	Name               string `json:"name" validate:"required,min=10,max=15"`
	UniqueCode         string `json:"unique_code" validate:"required"`
	Quantity           int    `json:"quantity" validate:"gte=0"`
	Type               int    `json:"type" validate:"required,oneof=1 2 3"`
	ProductionDate     string `json:"production_date" validate:"required,datetime=2006-01-02"`
	ExpirationDuration string `json:"expiration_duration" validate:"required"`
}

// UpdateProductInput carries a partial update. Nil fields are left
// untouched on the stored record. Name, unique code and owner are not
// updatable and so have no fields here. Supplied fields are checked by
// hand rather than with validator tags: omitempty cannot tell an
// omitted field from a supplied zero value, and type 0 or an empty
// duration must be rejected, not skipped.
type UpdateProductInput struct {
	Quantity           *int    `json:"quantity"`
	Type               *int    `json:"type"`
	ProductionDate     *string `json:"production_date"`
	ExpirationDuration *string `json:"expiration_duration"`
}

// validate checks only the supplied fields of a partial update.
func (in UpdateProductInput) validate() error {
	fields := make(map[string]string)

	if in.Quantity != nil && *in.Quantity < 0 {
		fields["quantity"] = "must be greater than or equal to 0"
	}
	if in.Type != nil {
		if _, ok := models.TypeLabel(*in.Type); !ok {
			fields["type"] = "must be one of 1, 2, 3"
		}
	}
	if in.ProductionDate != nil {
		if _, err := time.Parse(DateLayout, *in.ProductionDate); err != nil {
			fields["production_date"] = "is not a valid date"
		}
	}
	if in.ExpirationDuration != nil && *in.ExpirationDuration == "" {
		fields["expiration_duration"] = "must not be empty"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ExpirationStatus is the result of an expiration check.
type ExpirationStatus struct {
	ExpirationDate string `json:"expiration_date"`
	IsExpired      bool   `json:"is_expired"`
}

// StockStatus is the result of a stock/type check.
type StockStatus struct {
	InStock  bool   `json:"in_stock"`
	Quantity int    `json:"quantity"`
	Type     string `json:"type"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client
	validate *validator.Validate
}

// NewProductService creates a new ProductService. The RabbitMQ client is
// optional; when nil, event publication is skipped.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
		validate: validator.New(),
	}
}

// CreateProduct validates the input, binds the product to its owner, and
// persists it. The uniqueness check here is an optimistic pre-check; the
// database unique index is the source of truth, and a write lost to a
// concurrent duplicate surfaces as repositories.ErrDuplicateCode.
func (s *ProductService) CreateProduct(input CreateProductInput, ownerID string) (*models.Product, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(input.UniqueCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check unique code: %w", err)
	}
	if exists {
		return nil, &ValidationError{Fields: map[string]string{
			"unique_code": "has already been taken",
		}}
	}

	productionDate, err := time.Parse(DateLayout, input.ProductionDate)
	if err != nil {
		// Unreachable after datetime validation, but parse errors must not
		// pass silently.
		return nil, &ValidationError{Fields: map[string]string{
			"production_date": "is not a valid date",
		}}
	}

	product := &models.Product{
		Name:               input.Name,
		UniqueCode:         input.UniqueCode,
		Quantity:           input.Quantity,
		Type:               input.Type,
		ProductionDate:     productionDate,
		ExpirationDuration: input.ExpirationDuration,
		UserID:             ownerID,
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// UpdateProduct applies a partial update to an existing product. Only the
// supplied fields are validated and applied; omitted fields keep their
// persisted values.
func (s *ProductService) UpdateProduct(id uint, input UpdateProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Type != nil {
		product.Type = *input.Type
	}
	if input.ProductionDate != nil {
		// Already validated; parse cannot fail here.
		productionDate, _ := time.Parse(DateLayout, *input.ProductionDate)
		product.ProductionDate = productionDate
	}
	if input.ExpirationDuration != nil {
		product.ExpirationDuration = *input.ExpirationDuration
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", product)
	return product, nil
}

// CheckExpiration computes the expiration date of the product with the
// given unique code and whether it has passed relative to now. An
// unparsable stored duration counts as zero days, so the expiration date
// equals the production date.
func (s *ProductService) CheckExpiration(code string, now time.Time) (*ExpirationStatus, error) {
	product, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}

	expirationDate, isExpired := expiration.Compute(product.ProductionDate, product.ExpirationDuration, now)
	return &ExpirationStatus{
		ExpirationDate: expirationDate.Format(DateLayout),
		IsExpired:      isExpired,
	}, nil
}

// CheckProduct reports stock and type information for the product with
// the given unique code.
func (s *ProductService) CheckProduct(code string) (*StockStatus, error) {
	product, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}

	label, _ := models.TypeLabel(product.Type)
	return &StockStatus{
		InStock:  product.Quantity > 0,
		Quantity: product.Quantity,
		Type:     label,
	}, nil
}

// validateCreate runs struct validation and converts failures into a
// ValidationError keyed by the JSON field name.
func (s *ProductService) validateCreate(input CreateProductInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string]string)
	for _, e := range validationErrors {
		fields[jsonFieldName(e.Field())] = fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
	return &ValidationError{Fields: fields}
}

var jsonFieldNames = map[string]string{
	"Name":               "name",
	"UniqueCode":         "unique_code",
	"Quantity":           "quantity",
	"Type":               "type",
	"ProductionDate":     "production_date",
	"ExpirationDuration": "expiration_duration",
}

func jsonFieldName(structField string) string {
	if name, ok := jsonFieldNames[structField]; ok {
		return name
	}
	return structField
}

// publishEvent emits a product event to the message queue. Publication is
// best effort: a failure is logged and never fails the operation.
func (s *ProductService) publishEvent(event string, product *models.Product) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":       event,
		"product_id":  product.ID,
		"unique_code": product.UniqueCode,
		"quantity":    product.Quantity,
		"type":        product.Type,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for product %d: %v", event, product.ID, err)
		return
	}

	if err := s.mqClient.PublishEvent(event, body); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}
