package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/production"
	"github.com/kitchenops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductionRunRepository implements ProductionRunRepository using GORM
type GormProductionRunRepository struct {
	db *gorm.DB
}

// NewGormProductionRunRepository creates a new GormProductionRunRepository
func NewGormProductionRunRepository(db *gorm.DB) *GormProductionRunRepository {
	return &GormProductionRunRepository{db: db}
}

func preloadRunIngredients(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// FindByID loads a run with its ingredient lines
func (r *GormProductionRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionRun, error) {
	var run production.ProductionRun
	if err := r.db.WithContext(ctx).
		Preload("Ingredients", preloadRunIngredients).
		First(&run, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &run, nil
}

// FindByIDForUpdate locks the run row, then loads its lines
func (r *GormProductionRunRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*production.ProductionRun, error) {
	var run production.ProductionRun
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&run, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	if err := r.db.WithContext(ctx).
		Where("production_run_id = ?", run.ID).
		Order("sort_order ASC").
		Find(&run.Ingredients).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Create inserts the run and its ingredient lines
func (r *GormProductionRunRepository) Create(ctx context.Context, run *production.ProductionRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// SaveIngredient updates the actual quantity and unit of one line
func (r *GormProductionRunRepository) SaveIngredient(ctx context.Context, line *production.ProductionRunIngredient) error {
	result := r.db.WithContext(ctx).
		Model(&production.ProductionRunIngredient{}).
		Where("id = ?", line.ID).
		UpdateColumns(map[string]any{
			"actual_quantity": line.ActualQuantity,
			"actual_unit":     line.ActualUnit,
			"updated_at":      line.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkCompleted writes the completion fields guarded by status = in_progress.
// Zero affected rows means another writer got there first.
func (r *GormProductionRunRepository) MarkCompleted(ctx context.Context, run *production.ProductionRun) error {
	result := r.db.WithContext(ctx).
		Model(&production.ProductionRun{}).
		Where("id = ? AND status = ?", run.ID, production.RunStatusInProgress).
		UpdateColumns(map[string]any{
			"status":                 run.Status,
			"actual_output_quantity": run.ActualOutputQuantity,
			"actual_output_unit":     run.ActualOutputUnit,
			"total_batch_cost":       run.TotalBatchCost,
			"cost_per_unit":          run.CostPerUnit,
			"zero_yield":             run.ZeroYield,
			"completed_by":           run.CompletedBy,
			"completed_at":           run.CompletedAt,
			"updated_at":             run.UpdatedAt,
			"version":                run.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Production run is already completed")
	}
	return nil
}

// Ensure GormProductionRunRepository implements ProductionRunRepository
var _ production.ProductionRunRepository = (*GormProductionRunRepository)(nil)
