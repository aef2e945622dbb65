package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryTransactionRepository is append-only: entries are created and queried, never changed.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *InventoryTransaction) error

	// FindByReferencePrefix returns entries whose reference starts with prefix, oldest first.
	FindByReferencePrefix(ctx context.Context, restaurantID uuid.UUID, prefix string) ([]InventoryTransaction, error)

	FindByProduct(ctx context.Context, restaurantID, productID uuid.UUID, filter shared.Filter) ([]InventoryTransaction, error)

	// SumQuantityByProduct returns the net signed quantity of every entry for a product.
	SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}
