package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/identity"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService handles stock previews, receipts and ledger queries.
type InventoryService struct {
	productRepo     catalog.ProductRepository
	transactionRepo inventory.InventoryTransactionRepository
	scope           TransactionScope
	converter       *service.UnitConversionService
	writer          *LedgerWriter
	access          identity.AccessChecker
	logger          *zap.Logger
	metrics         *telemetry.ProductionMetrics
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	productRepo catalog.ProductRepository,
	transactionRepo inventory.InventoryTransactionRepository,
	scope TransactionScope,
	converter *service.UnitConversionService,
	access identity.AccessChecker,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		scope:           scope,
		converter:       converter,
		writer:          NewLedgerWriter(),
		access:          access,
		logger:          logger,
	}
}

// SetProductionMetrics sets the metrics recorder (optional)
func (s *InventoryService) SetProductionMetrics(m *telemetry.ProductionMetrics) {
	s.metrics = m
}

func (s *InventoryService) loadAuthorizedProduct(ctx context.Context, actor identity.Actor, productID uuid.UUID) (*catalog.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := identity.RequireAccess(ctx, s.access, product.RestaurantID, actor); err != nil {
		return nil, err
	}
	return product, nil
}

// CalculateInventoryImpactForProduct previews how quantity of unit would move the
// product's stock and cost. Nothing is written.
func (s *InventoryService) CalculateInventoryImpactForProduct(
	ctx context.Context,
	actor identity.Actor,
	productID uuid.UUID,
	quantity decimal.Decimal,
	unit string,
) (*ImpactResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "impact",
		telemetry.SpanAttrRestaurantID, actor.RestaurantID,
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrQuantity, quantity.String(),
		telemetry.SpanAttrUnit, unit)
	defer span.End()

	product, err := s.loadAuthorizedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	conv, err := s.converter.ToPurchaseUnits(ctx, quantity, unit, product.PurchaseUnitSpec())
	if err != nil {
		return nil, err
	}
	s.metrics.RecordConversion(ctx, product.RestaurantID, conv.Method)
	if conv.Method.IsLossy() {
		s.logger.Warn("Unit conversion fell back to 1:1",
			zap.String("product_id", product.ID.String()),
			zap.String("source_unit", unit),
			zap.String("purchase_unit", product.PurchaseUnit))
	}

	return &ImpactResponse{
		ProductID:        product.ID,
		SourceQuantity:   quantity,
		SourceUnit:       unit,
		PurchaseQuantity: conv.Quantity,
		PurchaseUnit:     product.PurchaseUnit,
		Method:           string(conv.Method),
		Lossy:            conv.Method.IsLossy(),
		UnitCost:         product.CostPerUnit,
		EstimatedCost:    conv.Quantity.Mul(product.CostPerUnit),
		CurrentStock:     product.CurrentStock,
		StockAfterUsage:  product.CurrentStock.Sub(conv.Quantity),
	}, nil
}

// ListLedgerByReference returns the actor's restaurant ledger entries whose reference
// starts with prefix.
func (s *InventoryService) ListLedgerByReference(ctx context.Context, actor identity.Actor, prefix string) ([]LedgerEntryResponse, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Reference prefix is required")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "ledger_by_reference",
		telemetry.SpanAttrRestaurantID, actor.RestaurantID,
		telemetry.SpanAttrReference, prefix)
	defer span.End()
	if err := identity.RequireAccess(ctx, s.access, actor.RestaurantID, actor); err != nil {
		return nil, err
	}
	entries, err := s.transactionRepo.FindByReferencePrefix(ctx, actor.RestaurantID, prefix)
	if err != nil {
		return nil, err
	}
	return ToLedgerEntryResponses(entries), nil
}

// ListProductLedger returns a page of ledger entries for one product
func (s *InventoryService) ListProductLedger(ctx context.Context, actor identity.Actor, productID uuid.UUID, filter shared.Filter) ([]LedgerEntryResponse, error) {
	product, err := s.loadAuthorizedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	entries, err := s.transactionRepo.FindByProduct(ctx, product.RestaurantID, product.ID, filter)
	if err != nil {
		return nil, err
	}
	return ToLedgerEntryResponses(entries), nil
}

// RecordReceipt posts purchased stock arriving. The quantity is converted into the
// product's purchase unit like any other posting.
func (s *InventoryService) RecordReceipt(ctx context.Context, actor identity.Actor, req RecordReceiptRequest) (*LedgerEntryResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Receipt quantity must be positive")
	}
	if req.UnitCost != nil && req.UnitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unit cost cannot be negative")
	}
	product, err := s.loadAuthorizedProduct(ctx, actor, req.ProductID)
	if err != nil {
		return nil, err
	}

	conv, err := s.converter.ToPurchaseUnits(ctx, req.Quantity, req.Unit, product.PurchaseUnitSpec())
	if err != nil {
		return nil, err
	}
	s.metrics.RecordConversion(ctx, product.RestaurantID, conv.Method)
	if conv.Method.IsLossy() {
		s.logger.Warn("Receipt unit conversion fell back to 1:1",
			zap.String("product_id", product.ID.String()),
			zap.String("source_unit", req.Unit),
			zap.String("purchase_unit", product.PurchaseUnit))
	}
	if conv.Quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Receipt converts to zero purchase units")
	}

	unitCost := product.CostPerUnit
	if req.UnitCost != nil {
		unitCost = *req.UnitCost
	}

	var entry *inventory.InventoryTransaction
	err = s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		if _, err := repos.ProductRepo().FindByIDForUpdate(ctx, product.ID); err != nil {
			return err
		}
		entry, err = s.writer.Post(ctx, repos, LedgerPosting{
			RestaurantID: product.RestaurantID,
			ProductID:    product.ID,
			Type:         inventory.TransactionTypeReceipt,
			Quantity:     conv.Quantity,
			UnitCost:     unitCost,
			Reference:    inventory.ReceiptReference(req.Document),
			OperatorID:   actor.UserID,
			Reason:       "receipt",
		})
		if err != nil {
			return err
		}
		if req.UnitCost != nil && !req.UnitCost.Equal(product.CostPerUnit) {
			return repos.ProductRepo().UpdateCost(ctx, product.ID, *req.UnitCost)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record receipt", zap.String("product_id", product.ID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordLedgerEntry(ctx, product.RestaurantID, entry.TransactionType.String())
	s.logger.Info("Receipt recorded",
		zap.String("product_id", product.ID.String()),
		zap.String("reference", entry.Reference),
		zap.String("quantity", entry.Quantity.String()))

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// ReconcileProductStock compares the product's stock projection with the sum of its ledger.
func (s *InventoryService) ReconcileProductStock(ctx context.Context, actor identity.Actor, productID uuid.UUID) (*ReconciliationResponse, error) {
	product, err := s.loadAuthorizedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.transactionRepo.SumQuantityByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	diff := product.CurrentStock.Sub(ledger)
	resp := &ReconciliationResponse{
		ProductID:    product.ID,
		CurrentStock: product.CurrentStock,
		LedgerStock:  ledger,
		Difference:   diff,
		InSync:       diff.IsZero(),
		Negative:     product.CurrentStock.IsNegative(),
	}
	if !resp.InSync {
		s.logger.Error("Stock projection diverged from ledger",
			zap.String("product_id", product.ID.String()),
			zap.String("current_stock", product.CurrentStock.String()),
			zap.String("ledger_stock", ledger.String()))
	}
	return resp, nil
}
