package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence.
// Stock only changes through AdjustStock, which must run inside the ledger transaction.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindByIDForUpdate loads the product and holds a row lock until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// AdjustStock atomically adds delta to current_stock and returns the new level.
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)

	// UpdateCost sets cost_per_unit without touching stock.
	UpdateCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error

	// Save writes catalog fields. It never writes current_stock.
	Save(ctx context.Context, product *Product) error
}

// PrepRecipeRepository defines the interface for recipe blueprint persistence
type PrepRecipeRepository interface {
	// FindByID loads the blueprint with its ingredient lines ordered by sort order.
	FindByID(ctx context.Context, id uuid.UUID) (*PrepRecipe, error)
	Save(ctx context.Context, recipe *PrepRecipe) error
}

// DensityRepository defines the interface for density persistence
type DensityRepository interface {
	FindForProduct(ctx context.Context, productID uuid.UUID) (*IngredientDensity, error)
	FindForClass(ctx context.Context, class string) (*IngredientDensity, error)
	Save(ctx context.Context, density *IngredientDensity) error
}
