package production

import (
	"context"

	"github.com/google/uuid"
)

// ProductionRunRepository defines the interface for production run persistence
type ProductionRunRepository interface {
	// FindByID loads the run with its ingredient lines
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionRun, error)

	// FindByIDForUpdate loads the run and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ProductionRun, error)

	// Create inserts a new run with its ingredient lines
	Create(ctx context.Context, run *ProductionRun) error

	// SaveIngredient updates the actual figures of one ingredient line
	SaveIngredient(ctx context.Context, line *ProductionRunIngredient) error

	// MarkCompleted persists the completion only if the stored run is still in progress.
	// It returns shared.ErrInvalidState when another writer completed it first.
	MarkCompleted(ctx context.Context, run *ProductionRun) error
}
