package persistence

import (
	"context"

	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	productionapp "github.com/kitchenops/backend/internal/application/production"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/kitchenops/backend/internal/domain/production"
	"gorm.io/gorm"
)

// GormTransactionScope implements the production TransactionScope using GORM transactions.
// Every repository handed to fn shares the same transaction; an error rolls all of it back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos productionapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormLedgerScope implements the inventory TransactionScope using GORM transactions.
type GormLedgerScope struct {
	db *gorm.DB
}

// NewGormLedgerScope creates a new GormLedgerScope.
func NewGormLedgerScope(db *gorm.DB) *GormLedgerScope {
	return &GormLedgerScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormLedgerScope) Execute(ctx context.Context, fn func(repos inventoryapp.LedgerRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// TransactionRepo returns the inventory transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() inventory.InventoryTransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

// RunRepo returns the production run repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RunRepo() production.ProductionRunRepository {
	return NewGormProductionRunRepository(r.tx)
}

// RecipeRepo returns the recipe repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecipeRepo() catalog.PrepRecipeRepository {
	return NewGormPrepRecipeRepository(r.tx)
}

var (
	_ productionapp.TransactionScope          = (*GormTransactionScope)(nil)
	_ inventoryapp.TransactionScope           = (*GormLedgerScope)(nil)
	_ productionapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
