package repositories

import (
	"errors"
	"fmt"

	"inventory/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// The *gorm.DB must be opened with TranslateError enabled so that
// driver-level duplicate-key errors surface as gorm.ErrDuplicatedKey.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// GetByCode retrieves a single product by its unique code from the database.
func (r *GORMProductRepository) GetByCode(code string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "unique_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with code %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by code %s: %w", code, err)
	}
	return &product, nil
}

// ExistsByCode reports whether a product with the given unique code exists.
func (r *GORMProductRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("unique_code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check code %s: %w", code, err)
	}
	return count > 0, nil
}

// Create inserts a new product. The database assigns the ID. A rejection
// by the unique index on the code is returned as ErrDuplicateCode.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product code %s: %w", product.UniqueCode, ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update persists all fields of an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save does not return ErrRecordNotFound for a missing row,
		// so we check RowsAffected.
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrNotFound)
	}
	return nil
}
