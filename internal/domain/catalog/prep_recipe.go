package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PrepRecipe is the blueprint for producing a batch of prepared food.
// Lines may reference products that are themselves the output of other recipes.
type PrepRecipe struct {
	shared.RestaurantAggregateRoot
	Name            string                 `gorm:"type:varchar(200);not null"`
	YieldQuantity   decimal.Decimal        `gorm:"type:decimal(24,10);not null"`
	YieldUnit       string                 `gorm:"type:varchar(30);not null"`
	OutputProductID *uuid.UUID             `gorm:"type:uuid;index"`
	Ingredients     []PrepRecipeIngredient `gorm:"foreignKey:PrepRecipeID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PrepRecipe) TableName() string {
	return "prep_recipes"
}

// PrepRecipeIngredient is a single blueprint line.
type PrepRecipeIngredient struct {
	shared.BaseEntity
	PrepRecipeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	Unit         string          `gorm:"type:varchar(30);not null"`
	SortOrder    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PrepRecipeIngredient) TableName() string {
	return "prep_recipe_ingredients"
}

// NewPrepRecipe creates an empty blueprint.
func NewPrepRecipe(restaurantID uuid.UUID, name string, yieldQuantity decimal.Decimal, yieldUnit string) (*PrepRecipe, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Recipe name cannot be empty")
	}
	if !yieldQuantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Yield quantity must be positive")
	}
	if strings.TrimSpace(yieldUnit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Yield unit cannot be empty")
	}
	return &PrepRecipe{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		Name:                    strings.TrimSpace(name),
		YieldQuantity:           yieldQuantity,
		YieldUnit:               strings.TrimSpace(yieldUnit),
	}, nil
}

// SetOutputProduct links the blueprint to the product its batches credit.
func (r *PrepRecipe) SetOutputProduct(productID uuid.UUID) {
	r.OutputProductID = &productID
	r.Touch()
}

// AddIngredient appends a blueprint line. Quantity must be positive.
func (r *PrepRecipe) AddIngredient(productID uuid.UUID, quantity decimal.Decimal, unit string) (*PrepRecipeIngredient, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Ingredient quantity must be positive")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Ingredient unit cannot be empty")
	}
	line := PrepRecipeIngredient{
		BaseEntity:   shared.NewBaseEntity(),
		PrepRecipeID: r.ID,
		ProductID:    productID,
		Quantity:     quantity,
		Unit:         strings.TrimSpace(unit),
		SortOrder:    len(r.Ingredients),
	}
	r.Ingredients = append(r.Ingredients, line)
	r.Touch()
	return &r.Ingredients[len(r.Ingredients)-1], nil
}

// Validate checks the blueprint is usable for a production run.
func (r *PrepRecipe) Validate() error {
	if len(r.Ingredients) == 0 {
		return shared.NewDomainError("INVALID_RECIPE", "Recipe must have at least one ingredient")
	}
	return nil
}

// ProductIDs returns the distinct ingredient product IDs in line order.
func (r *PrepRecipe) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Ingredients))
	ids := make([]uuid.UUID, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// ScaleFactor returns the multiplier that scales blueprint lines to a target yield.
// Targets in a different, unconvertible unit are not scaled.
func (r *PrepRecipe) ScaleFactor(targetQuantity decimal.Decimal, targetUnit string) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if !targetQuantity.IsPositive() || !r.YieldQuantity.IsPositive() {
		return one
	}
	if targetUnit == "" || valueobject.SameUnit(targetUnit, r.YieldUnit) {
		return targetQuantity.Div(r.YieldQuantity)
	}
	target, ok1 := valueobject.LookupUnit(targetUnit)
	yield, ok2 := valueobject.LookupUnit(r.YieldUnit)
	if ok1 && ok2 && target.Dimension() == yield.Dimension() {
		return target.Canonical(targetQuantity).Div(yield.Canonical(r.YieldQuantity))
	}
	return one
}
