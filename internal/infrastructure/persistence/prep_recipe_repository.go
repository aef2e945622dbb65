package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormPrepRecipeRepository implements PrepRecipeRepository using GORM
type GormPrepRecipeRepository struct {
	db *gorm.DB
}

// NewGormPrepRecipeRepository creates a new GormPrepRecipeRepository
func NewGormPrepRecipeRepository(db *gorm.DB) *GormPrepRecipeRepository {
	return &GormPrepRecipeRepository{db: db}
}

// FindByID loads a recipe with its ingredient lines in sort order
func (r *GormPrepRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PrepRecipe, error) {
	var recipe catalog.PrepRecipe
	if err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &recipe, nil
}

// Save replaces the recipe and its lines
func (r *GormPrepRecipeRepository) Save(ctx context.Context, recipe *catalog.PrepRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Save(recipe).Error; err != nil {
			return err
		}
		if err := tx.Where("prep_recipe_id = ?", recipe.ID).Delete(&catalog.PrepRecipeIngredient{}).Error; err != nil {
			return err
		}
		if len(recipe.Ingredients) == 0 {
			return nil
		}
		for i := range recipe.Ingredients {
			recipe.Ingredients[i].PrepRecipeID = recipe.ID
		}
		return tx.Create(&recipe.Ingredients).Error
	})
}

// Ensure GormPrepRecipeRepository implements PrepRecipeRepository
var _ catalog.PrepRecipeRepository = (*GormPrepRecipeRepository)(nil)
