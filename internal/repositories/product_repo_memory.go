package repositories

import (
	"fmt"
	"sync"

	"inventory/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It enforces the unique-code constraint atomically
// under its own lock, so it exhibits the same commit-time conflict
// behavior as a real database.
type MemoryProductRepository struct {
	products map[uint]models.Product
	byCode   map[string]uint
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		byCode:   make(map[string]uint),
		nextID:   1,
	}
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetByCode returns a product by its unique code.
func (r *MemoryProductRepository) GetByCode(code string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("product with code %s: %w", code, ErrNotFound)
	}
	product := r.products[id]
	return &product, nil
}

// ExistsByCode reports whether a product with the given unique code exists.
func (r *MemoryProductRepository) ExistsByCode(code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byCode[code]
	return ok, nil
}

// Create adds a new product, assigning the next ID. A duplicate code is
// rejected with ErrDuplicateCode without mutating state.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[product.UniqueCode]; ok {
		return fmt.Errorf("product code %s: %w", product.UniqueCode, ErrDuplicateCode)
	}

	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	r.byCode[product.UniqueCode] = product.ID
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrNotFound)
	}
	r.products[product.ID] = *product
	return nil
}
