package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LedgerPosting describes one stock movement to record.
// Quantity is signed and already in the product's purchase unit.
type LedgerPosting struct {
	RestaurantID uuid.UUID
	ProductID    uuid.UUID
	Type         inventory.TransactionType
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	Reference    string
	SourceID     *uuid.UUID
	OperatorID   uuid.UUID
	Reason       string
	PostedAt     time.Time
}

// LedgerWriter appends ledger entries and moves the product stock in the same transaction.
type LedgerWriter struct{}

// NewLedgerWriter creates a ledger writer
func NewLedgerWriter() *LedgerWriter {
	return &LedgerWriter{}
}

// Post records posting through repos, which must belong to the caller's transaction.
// The stock increment is atomic at the row level, so concurrent postings on the same
// product serialize instead of losing updates.
func (w *LedgerWriter) Post(ctx context.Context, repos LedgerRepositories, posting LedgerPosting) (*inventory.InventoryTransaction, error) {
	entry, err := inventory.NewInventoryTransaction(
		posting.RestaurantID,
		posting.ProductID,
		posting.Type,
		posting.Quantity,
		posting.UnitCost,
		posting.Reference,
	)
	if err != nil {
		return nil, err
	}

	after, err := repos.ProductRepo().AdjustStock(ctx, posting.ProductID, posting.Quantity)
	if err != nil {
		return nil, fmt.Errorf("adjust stock for product %s: %w", posting.ProductID, err)
	}
	entry.WithStockLevels(after.Sub(posting.Quantity), after)

	if posting.SourceID != nil {
		entry.WithSourceID(*posting.SourceID)
	}
	if posting.OperatorID != uuid.Nil {
		entry.WithOperatorID(posting.OperatorID)
	}
	if posting.Reason != "" {
		entry.WithReason(posting.Reason)
	}
	if !posting.PostedAt.IsZero() {
		entry.WithTransactionDate(posting.PostedAt)
	}

	if err := repos.TransactionRepo().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry %s: %w", posting.Reference, err)
	}
	return entry, nil
}
