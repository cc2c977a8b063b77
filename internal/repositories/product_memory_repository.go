package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// GetAll returns all products ordered by ID.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	productList := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		productList = append(productList, copyProduct(r.products[id]))
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	product = copyProduct(product)
	return &product, nil
}

// Create adds a new product, assigning its ID and timestamps.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	product.ID = r.nextID
	product.CreatedAt = now
	product.UpdatedAt = now
	r.nextID++

	r.products[product.ID] = copyProduct(*product)
	return nil
}

// Update applies changes to an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, id uint, changes models.ProductChanges) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	if !changes.IsEmpty() {
		changes.Apply(&product)
		product.UpdatedAt = time.Now().UTC()
		r.products[id] = product
	}
	product = copyProduct(product)
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// copyProduct detaches the description pointer from the stored value.
func copyProduct(p models.Product) models.Product {
	if p.Description != nil {
		description := *p.Description
		p.Description = &description
	}
	return p
}
