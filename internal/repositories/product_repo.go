package repositories

import (
	"context"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// Lookups of unknown ids return an error wrapping models.ErrProductNotFound.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uint, changes models.ProductChanges) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}
