package production

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/identity"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/kitchenops/backend/internal/domain/production"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/kitchenops/backend/internal/domain/shared/valueobject"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Warnings reported alongside a successful completion
const (
	WarningZeroYield          = "zero_yield"
	WarningConversionFallback = "conversion_fallback"
	WarningCostNotConserved   = "cost_not_conserved"
)

// DefaultConservationTolerance is the relative difference allowed between
// ingredient debits and output credits.
var DefaultConservationTolerance = decimal.New(1, -6)

// ProductionService runs production runs from start to completion.
type ProductionService struct {
	runRepo     production.ProductionRunRepository
	recipeRepo  catalog.PrepRecipeRepository
	productRepo catalog.ProductRepository
	ledgerRepo  inventory.InventoryTransactionRepository
	scope       TransactionScope
	converter   *service.UnitConversionService
	allocator   *production.CostAllocator
	writer      *inventoryapp.LedgerWriter
	access      identity.AccessChecker
	publisher   shared.EventPublisher
	metrics     *telemetry.ProductionMetrics
	logger      *zap.Logger
	tolerance   decimal.Decimal
}

// NewProductionService creates a new ProductionService
func NewProductionService(
	runRepo production.ProductionRunRepository,
	recipeRepo catalog.PrepRecipeRepository,
	productRepo catalog.ProductRepository,
	ledgerRepo inventory.InventoryTransactionRepository,
	scope TransactionScope,
	converter *service.UnitConversionService,
	access identity.AccessChecker,
	logger *zap.Logger,
) *ProductionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionService{
		runRepo:     runRepo,
		recipeRepo:  recipeRepo,
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		scope:       scope,
		converter:   converter,
		allocator:   production.NewCostAllocator(),
		writer:      inventoryapp.NewLedgerWriter(),
		access:      access,
		logger:      logger,
		tolerance:   DefaultConservationTolerance,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetProductionMetrics sets the metrics recorder (optional)
func (s *ProductionService) SetProductionMetrics(m *telemetry.ProductionMetrics) {
	s.metrics = m
}

// SetConservationTolerance overrides the relative cost conservation tolerance
func (s *ProductionService) SetConservationTolerance(tolerance decimal.Decimal) {
	if tolerance.IsPositive() {
		s.tolerance = tolerance
	}
}

// publishDomainEvents publishes and clears the run's pending events.
// Publishing happens after commit; failures are logged, not returned.
func (s *ProductionService) publishDomainEvents(ctx context.Context, run *production.ProductionRun) {
	events := run.GetDomainEvents()
	run.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish production run events",
			zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

// loadAuthorizedRun reads a run outside any transaction and checks the actor may use it.
func (s *ProductionService) loadAuthorizedRun(ctx context.Context, actor identity.Actor, runID uuid.UUID) (*production.ProductionRun, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := identity.RequireAccess(ctx, s.access, run.RestaurantID, actor); err != nil {
		return nil, err
	}
	return run, nil
}

// CreateProductionRun starts a run from a prep recipe, scaled to the requested yield.
func (s *ProductionService) CreateProductionRun(ctx context.Context, actor identity.Actor, req CreateRunRequest) (*ProductionRunResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production_run", "create",
		telemetry.SpanAttrRestaurantID, actor.RestaurantID,
		"prep_recipe_id", req.PrepRecipeID)
	defer span.End()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := valueobject.ValidateQuantity(req.TargetQuantity); err != nil {
		return nil, err
	}
	recipe, err := s.recipeRepo.FindByID(ctx, req.PrepRecipeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := identity.RequireAccess(ctx, s.access, recipe.RestaurantID, actor); err != nil {
		return nil, err
	}

	ids := recipe.ProductIDs()
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Recipe references unknown products")
	}
	for _, p := range products {
		if p.RestaurantID != recipe.RestaurantID {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Recipe references another restaurant's product")
		}
	}

	run, err := production.NewProductionRun(recipe, req.TargetQuantity, req.TargetUnit, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to create production run", zap.Error(err))
		return nil, err
	}

	s.publishDomainEvents(ctx, run)
	s.logger.Info("Production run started",
		zap.String("run_id", run.ID.String()),
		zap.String("prep_recipe_id", recipe.ID.String()),
		zap.String("target", run.TargetYieldQuantity.String()+" "+run.TargetYieldUnit))

	resp := ToProductionRunResponse(run)
	return &resp, nil
}

// GetProductionRun returns a run with its ingredient lines
func (s *ProductionService) GetProductionRun(ctx context.Context, actor identity.Actor, runID uuid.UUID) (*ProductionRunResponse, error) {
	run, err := s.loadAuthorizedRun(ctx, actor, runID)
	if err != nil {
		return nil, err
	}
	resp := ToProductionRunResponse(run)
	return &resp, nil
}

// RecordActualUsage overrides what was actually used on one ingredient line.
func (s *ProductionService) RecordActualUsage(ctx context.Context, actor identity.Actor, runID, lineID uuid.UUID, req RecordUsageRequest) (*ProductionRunResponse, error) {
	if err := valueobject.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if _, err := s.loadAuthorizedRun(ctx, actor, runID); err != nil {
		return nil, err
	}

	var run *production.ProductionRun
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		run, err = repos.RunRepo().FindByIDForUpdate(ctx, runID)
		if err != nil {
			return err
		}
		line, err := run.RecordActualUsage(lineID, req.Quantity, req.Unit)
		if err != nil {
			return err
		}
		return repos.RunRepo().SaveIngredient(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductionRunResponse(run)
	return &resp, nil
}

// ListRunLedger returns every ledger entry a run posted
func (s *ProductionService) ListRunLedger(ctx context.Context, actor identity.Actor, runID uuid.UUID) ([]inventoryapp.LedgerEntryResponse, error) {
	run, err := s.loadAuthorizedRun(ctx, actor, runID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.FindByReferencePrefix(ctx, run.RestaurantID, inventory.RunReferencePrefix(run.ID))
	if err != nil {
		return nil, err
	}
	return inventoryapp.ToLedgerEntryResponses(entries), nil
}

// completion accumulates what one completion attempt produced
type completion struct {
	actor    identity.Actor
	run      *production.ProductionRun
	products map[uuid.UUID]*catalog.Product
	entries  []inventory.InventoryTransaction
	warnings []string
	span     trace.Span
}

// productTotals sums signed quantities per product, keeping first-seen order
type productTotals struct {
	order  []uuid.UUID
	totals map[uuid.UUID]decimal.Decimal
	kinds  map[uuid.UUID]inventory.TransactionType
}

func newProductTotals() *productTotals {
	return &productTotals{
		totals: make(map[uuid.UUID]decimal.Decimal),
		kinds:  make(map[uuid.UUID]inventory.TransactionType),
	}
}

func (t *productTotals) add(productID uuid.UUID, qty decimal.Decimal, txType inventory.TransactionType) {
	current, seen := t.totals[productID]
	if !seen {
		t.order = append(t.order, productID)
		t.kinds[productID] = txType
	} else if t.kinds[productID] != txType {
		t.kinds[productID] = inventory.TransactionTypeAdjustment
	}
	t.totals[productID] = current.Add(qty)
}

// CompleteProductionRun completes an in-progress run: every ingredient is debited,
// adjustments are booked, the output is credited at the batch's unit cost and the
// run's cost per unit is fixed. All of it commits together or not at all.
func (s *ProductionService) CompleteProductionRun(ctx context.Context, actor identity.Actor, runID uuid.UUID, req CompleteRunRequest) (*CompletionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production_run", "complete",
		telemetry.SpanAttrRestaurantID, actor.RestaurantID,
		telemetry.SpanAttrRunID, runID)
	defer span.End()

	if err := valueobject.ValidateQuantity(req.OutputQuantity); err != nil {
		return nil, err
	}
	adjustments := req.toAdjustments()
	for _, adj := range adjustments {
		if err := adj.Validate(); err != nil {
			return nil, err
		}
	}
	if _, err := s.loadAuthorizedRun(ctx, actor, runID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	c := &completion{actor: actor, span: span}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c.entries = nil
		c.warnings = nil
		return s.complete(ctx, repos, runID, req, adjustments, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Production run completion failed",
			zap.String("run_id", runID.String()), zap.Error(err))
		return nil, err
	}

	run := c.run
	s.publishDomainEvents(ctx, run)
	s.metrics.RecordRunCompleted(ctx, run.RestaurantID, *run.TotalBatchCost, run.ZeroYield)
	for _, e := range c.entries {
		s.metrics.RecordLedgerEntry(ctx, run.RestaurantID, e.TransactionType.String())
	}
	telemetry.SetAttributes(span,
		"entries", len(c.entries),
		"zero_yield", run.ZeroYield,
		"cost_per_unit", run.CostPerUnit.String())
	s.logger.Info("Production run completed",
		zap.String("run_id", run.ID.String()),
		zap.String("total_batch_cost", run.TotalBatchCost.String()),
		zap.String("cost_per_unit", run.CostPerUnit.String()),
		zap.Int("entries", len(c.entries)),
		zap.Bool("zero_yield", run.ZeroYield))

	return &CompletionResponse{
		Run:      ToProductionRunResponse(run),
		Entries:  inventoryapp.ToLedgerEntryResponses(c.entries),
		Warnings: c.warnings,
	}, nil
}

func (s *ProductionService) complete(
	ctx context.Context,
	repos TransactionalRepositories,
	runID uuid.UUID,
	req CompleteRunRequest,
	adjustments []production.Adjustment,
	c *completion,
) error {
	run, err := repos.RunRepo().FindByIDForUpdate(ctx, runID)
	if err != nil {
		return err
	}
	if run.IsCompleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Production run is already completed")
	}
	c.run = run

	recipe, err := repos.RecipeRepo().FindByID(ctx, run.PrepRecipeID)
	if err != nil {
		return err
	}
	var outputID uuid.UUID
	if recipe.OutputProductID != nil {
		outputID = *recipe.OutputProductID
	}

	for _, adj := range adjustments {
		if !run.HasIngredient(adj.ProductID) && (outputID == uuid.Nil || adj.ProductID != outputID) {
			return shared.NewDomainError(shared.CodeInvalidAdjustment,
				"Product "+adj.ProductID.String()+" is neither an ingredient nor the output of this run")
		}
	}

	if err := s.lockProducts(ctx, repos, c, adjustments, outputID); err != nil {
		return err
	}

	// Ingredient usage
	usage := newProductTotals()
	for _, line := range run.Ingredients {
		if line.ActualQuantity.IsZero() {
			continue
		}
		qty, err := s.convert(ctx, c, c.products[line.ProductID], line.ActualQuantity, line.ActualUnit)
		if err != nil {
			return err
		}
		usage.add(line.ProductID, qty, inventory.TransactionTypeUsage)
	}

	// Adjustments, ingredient side first
	ingredientAdj := newProductTotals()
	outputAdj := newProductTotals()
	for _, adj := range adjustments {
		qty, err := s.convert(ctx, c, c.products[adj.ProductID], adj.Magnitude(), adj.Unit)
		if err != nil {
			return err
		}
		if adj.Sign() < 0 {
			qty = qty.Neg()
		}
		if run.HasIngredient(adj.ProductID) {
			ingredientAdj.add(adj.ProductID, qty, adj.TransactionType())
		} else {
			outputAdj.add(adj.ProductID, qty, adj.TransactionType())
		}
	}

	// Ledger unit costs are non-negative, so corrections may not return more value than was used.
	batchCost := decimal.Zero
	for _, productID := range usage.order {
		batchCost = batchCost.Add(usage.totals[productID].Mul(c.products[productID].CostPerUnit))
	}
	for _, productID := range ingredientAdj.order {
		batchCost = batchCost.Sub(ingredientAdj.totals[productID].Mul(c.products[productID].CostPerUnit))
	}
	if batchCost.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAdjustment, "Ingredient corrections return more than the run used")
	}

	var costLines []production.CostLine
	for _, productID := range usage.order {
		qty := usage.totals[productID]
		product := c.products[productID]
		if err := s.post(ctx, repos, c, product, inventory.TransactionTypeUsage, qty.Neg(), product.CostPerUnit,
			inventory.RoleIngredient, "production usage"); err != nil {
			return err
		}
		costLines = append(costLines, production.CostLine{ProductID: productID, Quantity: qty, UnitCost: product.CostPerUnit})
	}

	for _, productID := range ingredientAdj.order {
		qty := ingredientAdj.totals[productID]
		product := c.products[productID]
		if err := s.post(ctx, repos, c, product, ingredientAdj.kinds[productID], qty, product.CostPerUnit,
			inventory.RoleAdjustment, "production adjustment"); err != nil {
			return err
		}
		costLines = append(costLines, production.CostLine{ProductID: productID, Quantity: qty.Neg(), UnitCost: product.CostPerUnit})
	}

	// Output
	outputUnit := strings.TrimSpace(req.OutputUnit)
	if outputUnit == "" {
		outputUnit = run.TargetYieldUnit
	}
	grossOutput := req.OutputQuantity
	netOutput := req.OutputQuantity
	outputAdjQty := decimal.Zero
	var outputProduct *catalog.Product
	if outputID != uuid.Nil {
		outputProduct = c.products[outputID]
		if grossOutput, err = s.convert(ctx, c, outputProduct, req.OutputQuantity, outputUnit); err != nil {
			return err
		}
		if len(outputAdj.order) > 0 {
			outputAdjQty = outputAdj.totals[outputID]
		}
		netOutput = grossOutput.Add(outputAdjQty)
		if netOutput.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidAdjustment, "Output adjustments remove more than was produced")
		}
	}

	allocation := s.allocator.Allocate(costLines, netOutput)
	if allocation.ZeroYield {
		c.warnings = append(c.warnings, WarningZeroYield)
		telemetry.AddEvent(c.span, "zero_yield")
		s.logger.Warn("Production run produced no output; cost per unit set to zero",
			zap.String("run_id", run.ID.String()),
			zap.String("total_batch_cost", allocation.TotalBatchCost.String()))
	} else if outputProduct != nil {
		if err := s.post(ctx, repos, c, outputProduct, inventory.TransactionTypeTransfer, grossOutput,
			allocation.OutputUnitCost, inventory.RoleOutput, "production output"); err != nil {
			return err
		}
		if err := s.post(ctx, repos, c, outputProduct, outputAdj.kinds[outputID], outputAdjQty,
			allocation.OutputUnitCost, inventory.RoleAdjustment, "production output adjustment"); err != nil {
			return err
		}
		if err := repos.ProductRepo().UpdateCost(ctx, outputProduct.ID, allocation.OutputUnitCost); err != nil {
			return err
		}
		s.checkConservation(c, allocation, netOutput)
	}

	if err := run.Complete(c.actor.UserID, req.OutputQuantity, outputUnit, allocation); err != nil {
		return err
	}
	return repos.RunRepo().MarkCompleted(ctx, run)
}

// lockProducts row-locks every product the completion touches, in ID order so two
// runs sharing ingredients cannot deadlock.
func (s *ProductionService) lockProducts(
	ctx context.Context,
	repos TransactionalRepositories,
	c *completion,
	adjustments []production.Adjustment,
	outputID uuid.UUID,
) error {
	set := make(map[uuid.UUID]struct{})
	for _, line := range c.run.Ingredients {
		set[line.ProductID] = struct{}{}
	}
	for _, adj := range adjustments {
		set[adj.ProductID] = struct{}{}
	}
	if outputID != uuid.Nil {
		set[outputID] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	c.products = make(map[uuid.UUID]*catalog.Product, len(ids))
	for _, id := range ids {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product.RestaurantID != c.run.RestaurantID {
			return shared.NewDomainError(shared.CodeInvalidInput, "Product "+id.String()+" belongs to another restaurant")
		}
		c.products[id] = product
	}
	return nil
}

// convert turns a recorded quantity into purchase units, reporting lossy fallbacks.
func (s *ProductionService) convert(ctx context.Context, c *completion, product *catalog.Product, qty decimal.Decimal, unit string) (decimal.Decimal, error) {
	result, err := s.converter.ToPurchaseUnits(ctx, qty, unit, product.PurchaseUnitSpec())
	if err != nil {
		return decimal.Zero, err
	}
	s.metrics.RecordConversion(ctx, c.run.RestaurantID, result.Method)
	if result.Method.IsLossy() {
		c.warnings = append(c.warnings, WarningConversionFallback+":"+product.ID.String())
		telemetry.AddEvent(c.span, "conversion_fallback",
			telemetry.SpanAttrProductID, product.ID,
			telemetry.SpanAttrUnit, unit)
		s.logger.Warn("Unit conversion fell back to 1:1",
			zap.String("run_id", c.run.ID.String()),
			zap.String("product_id", product.ID.String()),
			zap.String("source_unit", unit),
			zap.String("purchase_unit", product.PurchaseUnit))
	}
	return result.Quantity, nil
}

// post writes one ledger entry for the run. Zero quantities are skipped.
func (s *ProductionService) post(
	ctx context.Context,
	repos TransactionalRepositories,
	c *completion,
	product *catalog.Product,
	txType inventory.TransactionType,
	qty decimal.Decimal,
	unitCost decimal.Decimal,
	role inventory.EntryRole,
	reason string,
) error {
	if qty.IsZero() {
		return nil
	}
	runID := c.run.ID
	entry, err := s.writer.Post(ctx, repos, inventoryapp.LedgerPosting{
		RestaurantID: c.run.RestaurantID,
		ProductID:    product.ID,
		Type:         txType,
		Quantity:     qty,
		UnitCost:     unitCost,
		Reference:    inventory.RunEntryReference(runID, role, product.ID),
		SourceID:     &runID,
		OperatorID:   c.actor.UserID,
		Reason:       reason,
	})
	if err != nil {
		return err
	}
	c.entries = append(c.entries, *entry)
	return nil
}

func (s *ProductionService) checkConservation(c *completion, allocation production.CostAllocation, netOutput decimal.Decimal) {
	credited := allocation.OutputCost(netOutput)
	if production.Conserved(allocation.TotalBatchCost, credited, s.tolerance) {
		return
	}
	c.warnings = append(c.warnings, WarningCostNotConserved)
	s.logger.Error("Production cost not conserved",
		zap.String("run_id", c.run.ID.String()),
		zap.String("debited", allocation.TotalBatchCost.String()),
		zap.String("credited", credited.String()))
}
