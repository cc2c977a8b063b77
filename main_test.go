package main

import (
	"context"
	"testing"

	"catalog/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedProducts(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryProductRepository()

	seedProducts(ctx, repo, zerolog.Nop())

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Laptop", products[0].Name)
	assert.Equal(t, uint(1), products[0].ID)
	assert.Nil(t, products[2].Description)
}

func TestSeedProductsSkipsNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryProductRepository()

	seedProducts(ctx, repo, zerolog.Nop())
	seedProducts(ctx, repo, zerolog.Nop())

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}
