package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IngredientDensity maps a product, or a class of ingredients, to grams per millilitre.
// A product-specific row takes precedence over a class row.
type IngredientDensity struct {
	shared.BaseEntity
	ProductID          *uuid.UUID      `gorm:"type:uuid;index"`
	DensityClass       string          `gorm:"type:varchar(50);index"`
	GramsPerMilliliter decimal.Decimal `gorm:"type:decimal(24,10);not null"`
}

// TableName returns the table name for GORM
func (IngredientDensity) TableName() string {
	return "ingredient_densities"
}

// NewProductDensity creates a density row for a single product.
func NewProductDensity(productID uuid.UUID, gramsPerMl decimal.Decimal) (*IngredientDensity, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !gramsPerMl.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DENSITY", "Density must be positive")
	}
	return &IngredientDensity{
		BaseEntity:         shared.NewBaseEntity(),
		ProductID:          &productID,
		GramsPerMilliliter: gramsPerMl,
	}, nil
}

// NewClassDensity creates a density row shared by an ingredient class.
func NewClassDensity(class string, gramsPerMl decimal.Decimal) (*IngredientDensity, error) {
	class = strings.ToLower(strings.TrimSpace(class))
	if class == "" {
		return nil, shared.NewDomainError("INVALID_DENSITY_CLASS", "Density class cannot be empty")
	}
	if !gramsPerMl.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DENSITY", "Density must be positive")
	}
	return &IngredientDensity{
		BaseEntity:         shared.NewBaseEntity(),
		DensityClass:       class,
		GramsPerMilliliter: gramsPerMl,
	}, nil
}
