package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// FindByIDs finds the products with the given IDs. Missing IDs are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByIDForUpdate loads the product with SELECT ... FOR UPDATE.
// SQLite has no row locks and serializes writers instead.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// AdjustStock adds delta to current_stock in a single statement and returns the new level.
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", delta))
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, shared.ErrNotFound
	}

	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Select("current_stock").
		First(&product, "id = ?", id).Error; err != nil {
		return decimal.Zero, translateNotFound(err)
	}
	return product.CurrentStock, nil
}

// UpdateCost sets cost_per_unit and bumps the version
func (r *GormProductRepository) UpdateCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"cost_per_unit": cost,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates a product. current_stock is never written here.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		// New products start at zero stock; receipts move them from there.
		product.CurrentStock = decimal.Zero
		return r.db.WithContext(ctx).Create(product).Error
	}
	return r.db.WithContext(ctx).Omit("current_stock", "created_at").Save(product).Error
}

// translateNotFound maps gorm's not-found error onto the domain sentinel
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
