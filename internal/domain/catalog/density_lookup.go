package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/shopspring/decimal"
)

// RepositoryDensityLookup resolves densities from the density table.
type RepositoryDensityLookup struct {
	repo DensityRepository
}

var _ service.DensityLookup = (*RepositoryDensityLookup)(nil)

// NewRepositoryDensityLookup creates a density lookup backed by repo.
func NewRepositoryDensityLookup(repo DensityRepository) *RepositoryDensityLookup {
	return &RepositoryDensityLookup{repo: repo}
}

// GramsPerMilliliter implements service.DensityLookup.
func (l *RepositoryDensityLookup) GramsPerMilliliter(ctx context.Context, productID uuid.UUID, class string) (decimal.Decimal, bool, error) {
	if productID != uuid.Nil {
		d, err := l.repo.FindForProduct(ctx, productID)
		switch {
		case err == nil:
			return d.GramsPerMilliliter, true, nil
		case !errors.Is(err, shared.ErrNotFound):
			return decimal.Zero, false, err
		}
	}
	if class == "" {
		return decimal.Zero, false, nil
	}
	d, err := l.repo.FindForClass(ctx, class)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return d.GramsPerMilliliter, true, nil
}
