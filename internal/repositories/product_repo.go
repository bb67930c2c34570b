package repositories

import (
	"inventory/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetByCode(code string) (*models.Product, error)
	ExistsByCode(code string) (bool, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
}
