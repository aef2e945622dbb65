package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	productionapp "github.com/kitchenops/backend/internal/application/production"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/identity"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/kitchenops/backend/internal/domain/production"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// kitchen wires the real repositories over a SQLite database
type kitchen struct {
	t          *testing.T
	db         *gorm.DB
	products   *GormProductRepository
	recipes    *GormPrepRecipeRepository
	densities  *GormDensityRepository
	ledger     *GormInventoryTransactionRepository
	production *productionapp.ProductionService
	inventory  *inventoryapp.InventoryService
	actor      identity.Actor
}

func newKitchen(t *testing.T) *kitchen {
	t.Helper()
	db := newSQLiteDB(t)
	k := &kitchen{
		t:         t,
		db:        db,
		products:  NewGormProductRepository(db),
		recipes:   NewGormPrepRecipeRepository(db),
		densities: NewGormDensityRepository(db),
		ledger:    NewGormInventoryTransactionRepository(db),
		actor:     identity.Actor{UserID: uuid.New(), RestaurantID: uuid.New()},
	}

	members := NewGormRestaurantMemberRepository(db)
	member, err := identity.NewRestaurantMember(k.actor.RestaurantID, k.actor.UserID, identity.MemberRoleCook)
	require.NoError(t, err)
	require.NoError(t, members.Save(context.Background(), member))
	access := identity.NewMembershipAccessChecker(members)

	converter := service.NewUnitConversionService(catalog.NewRepositoryDensityLookup(k.densities))
	k.production = productionapp.NewProductionService(
		NewGormProductionRunRepository(db), k.recipes, k.products, k.ledger,
		NewGormTransactionScope(db), converter, access, zap.NewNop())
	k.inventory = inventoryapp.NewInventoryService(
		k.products, k.ledger, NewGormLedgerScope(db), converter, access, zap.NewNop())
	return k
}

func (k *kitchen) product(name, unit, cost string) *catalog.Product {
	p, err := catalog.NewProduct(k.actor.RestaurantID, name, unit, decimal.RequireFromString(cost))
	require.NoError(k.t, err)
	require.NoError(k.t, k.products.Save(context.Background(), p))
	return p
}

func (k *kitchen) receive(p *catalog.Product, qty string) {
	_, err := k.inventory.RecordReceipt(context.Background(), k.actor, inventoryapp.RecordReceiptRequest{
		ProductID: p.ID,
		Quantity:  decimal.RequireFromString(qty),
		Unit:      p.PurchaseUnit,
		Document:  "INV-" + p.Name,
	})
	require.NoError(k.t, err)
}

func (k *kitchen) stock(p *catalog.Product) float64 {
	stored, err := k.products.FindByID(context.Background(), p.ID)
	require.NoError(k.t, err)
	return stored.CurrentStock.InexactFloat64()
}

func (k *kitchen) recipe(yield, unit string, output *catalog.Product, ingredient *catalog.Product, qty, qtyUnit string) *catalog.PrepRecipe {
	r, err := catalog.NewPrepRecipe(k.actor.RestaurantID, "Batch", decimal.RequireFromString(yield), unit)
	require.NoError(k.t, err)
	r.SetOutputProduct(output.ID)
	_, err = r.AddIngredient(ingredient.ID, decimal.RequireFromString(qty), qtyUnit)
	require.NoError(k.t, err)
	require.NoError(k.t, k.recipes.Save(context.Background(), r))
	return r
}

func TestProductionFlow_SQLite_OnionStock(t *testing.T) {
	k := newKitchen(t)
	ctx := context.Background()
	onion := k.product("Onion", "lb", "4.99")
	stock := k.product("Onion stock", "L", "0")
	k.receive(onion, "20")
	recipe := k.recipe("10", "L", stock, onion, "5", "lb")

	run, err := k.production.CreateProductionRun(ctx, k.actor, productionapp.CreateRunRequest{PrepRecipeID: recipe.ID})
	require.NoError(t, err)
	require.Len(t, run.Ingredients, 1)

	resp, err := k.production.CompleteProductionRun(ctx, k.actor, run.ID, productionapp.CompleteRunRequest{
		OutputQuantity: decimal.NewFromInt(10),
		OutputUnit:     "L",
	})
	require.NoError(t, err)
	assert.InDelta(t, 24.95, resp.Run.TotalBatchCost.InexactFloat64(), 1e-9)
	assert.InDelta(t, 2.495, resp.Run.CostPerUnit.InexactFloat64(), 1e-9)

	assert.InDelta(t, 15, k.stock(onion), 1e-9)
	assert.InDelta(t, 10, k.stock(stock), 1e-9)

	entries, err := k.production.ListRunLedger(ctx, k.actor, run.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, inventory.RunEntryReference(run.ID, inventory.RoleIngredient, onion.ID), entries[0].Reference)

	stored, err := k.production.GetProductionRun(ctx, k.actor, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(production.RunStatusCompleted), stored.Status)

	for _, p := range []*catalog.Product{onion, stock} {
		rec, err := k.inventory.ReconcileProductStock(ctx, k.actor, p.ID)
		require.NoError(t, err)
		assert.InDelta(t, 0, rec.Difference.InexactFloat64(), 1e-9, "%s ledger and stock agree", p.Name)
	}

	_, err = k.production.CompleteProductionRun(ctx, k.actor, run.ID, productionapp.CompleteRunRequest{OutputQuantity: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.InDelta(t, 15, k.stock(onion), 1e-9, "second completion posts nothing")
}

func TestProductionFlow_SQLite_RollsBackRejectedAdjustment(t *testing.T) {
	k := newKitchen(t)
	ctx := context.Background()
	onion := k.product("Onion", "lb", "4.99")
	stock := k.product("Onion stock", "L", "0")
	outsider := k.product("Garlic", "lb", "6")
	k.receive(onion, "20")
	recipe := k.recipe("10", "L", stock, onion, "5", "lb")

	run, err := k.production.CreateProductionRun(ctx, k.actor, productionapp.CreateRunRequest{PrepRecipeID: recipe.ID})
	require.NoError(t, err)

	_, err = k.production.CompleteProductionRun(ctx, k.actor, run.ID, productionapp.CompleteRunRequest{
		OutputQuantity: decimal.NewFromInt(10),
		Adjustments: []productionapp.AdjustmentRequest{{
			ProductID: outsider.ID,
			Kind:      string(production.AdjustmentWaste),
			Quantity:  decimal.NewFromInt(1),
			Unit:      "lb",
		}},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidAdjustment)

	assert.InDelta(t, 20, k.stock(onion), 1e-9)
	assert.InDelta(t, 0, k.stock(stock), 1e-9)
	entries, err := k.ledger.FindByReferencePrefix(ctx, k.actor.RestaurantID, inventory.RunReferencePrefix(run.ID))
	require.NoError(t, err)
	assert.Empty(t, entries)

	stored, err := k.production.GetProductionRun(ctx, k.actor, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(production.RunStatusInProgress), stored.Status)
}

func TestProductionFlow_SQLite_DensityConversion(t *testing.T) {
	k := newKitchen(t)
	ctx := context.Background()
	flour := k.product("Flour", "kg", "1.20")
	dough := k.product("Dough", "kg", "0")
	density, err := catalog.NewProductDensity(flour.ID, decimal.RequireFromString("0.53"))
	require.NoError(t, err)
	require.NoError(t, k.densities.Save(ctx, density))
	recipe := k.recipe("1", "kg", dough, flour, "1", "cup")

	run, err := k.production.CreateProductionRun(ctx, k.actor, productionapp.CreateRunRequest{PrepRecipeID: recipe.ID})
	require.NoError(t, err)
	resp, err := k.production.CompleteProductionRun(ctx, k.actor, run.ID, productionapp.CompleteRunRequest{OutputQuantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)

	// 236.588 ml at 0.53 g/ml
	assert.InDelta(t, -0.12539164, k.stock(flour), 1e-6)
}

func TestGormInventoryTransactionRepository_SQLite_PrefixIsRestaurantScoped(t *testing.T) {
	k := newKitchen(t)
	ctx := context.Background()
	onion := k.product("Onion", "lb", "1")
	runID := uuid.New()

	mine, err := inventory.NewInventoryTransaction(k.actor.RestaurantID, onion.ID, inventory.TransactionTypeUsage,
		decimal.NewFromInt(-1), decimal.NewFromInt(1), inventory.RunEntryReference(runID, inventory.RoleIngredient, onion.ID))
	require.NoError(t, err)
	theirs, err := inventory.NewInventoryTransaction(uuid.New(), onion.ID, inventory.TransactionTypeUsage,
		decimal.NewFromInt(-1), decimal.NewFromInt(1), inventory.RunEntryReference(runID, inventory.RoleIngredient, onion.ID))
	require.NoError(t, err)
	require.NoError(t, k.ledger.Create(ctx, mine))
	require.NoError(t, k.ledger.Create(ctx, theirs))

	entries, err := k.ledger.FindByReferencePrefix(ctx, k.actor.RestaurantID, inventory.RunReferencePrefix(runID))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mine.ID, entries[0].ID)

	sum, err := k.ledger.SumQuantityByProduct(ctx, onion.ID)
	require.NoError(t, err)
	assert.InDelta(t, -2, sum.InexactFloat64(), 1e-9)
}
