package inventory

import (
	"context"

	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to ledger repositories.
// All repository operations inside fn share one database transaction and are
// committed or rolled back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos LedgerRepositories) error) error
}

// LedgerRepositories are the repositories a ledger posting touches.
//   - ProductRepo: stock projection; AdjustStock is the only stock writer.
//   - TransactionRepo: append-only ledger entries.
type LedgerRepositories interface {
	ProductRepo() catalog.ProductRepository
	TransactionRepo() inventory.InventoryTransactionRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	productRepo     catalog.ProductRepository
	transactionRepo inventory.InventoryTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	transactionRepo inventory.InventoryTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos LedgerRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

func (s *NoOpTransactionScope) TransactionRepo() inventory.InventoryTransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ LedgerRepositories = (*NoOpTransactionScope)(nil)
