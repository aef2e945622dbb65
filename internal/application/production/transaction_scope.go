package production

import (
	"context"

	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/production"
)

// TransactionScope runs a production run completion as one database transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are every repository a completion touches, sharing one transaction.
type TransactionalRepositories interface {
	inventoryapp.LedgerRepositories
	RunRepo() production.ProductionRunRepository
	RecipeRepo() catalog.PrepRecipeRepository
}
