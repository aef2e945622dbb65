package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	"github.com/kitchenops/backend/internal/domain/identity"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/interfaces/http/dto"
	"github.com/kitchenops/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// InventoryService is the inventory use-case surface used by the handler
type InventoryService interface {
	CalculateInventoryImpactForProduct(ctx context.Context, actor identity.Actor, productID uuid.UUID, quantity decimal.Decimal, unit string) (*inventoryapp.ImpactResponse, error)
	ListLedgerByReference(ctx context.Context, actor identity.Actor, prefix string) ([]inventoryapp.LedgerEntryResponse, error)
	ListProductLedger(ctx context.Context, actor identity.Actor, productID uuid.UUID, filter shared.Filter) ([]inventoryapp.LedgerEntryResponse, error)
	RecordReceipt(ctx context.Context, actor identity.Actor, req inventoryapp.RecordReceiptRequest) (*inventoryapp.LedgerEntryResponse, error)
	ReconcileProductStock(ctx context.Context, actor identity.Actor, productID uuid.UUID) (*inventoryapp.ReconciliationResponse, error)
}

// InventoryHandler handles stock and ledger endpoints
type InventoryHandler struct {
	BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	inv.POST("/impact", h.Impact)
	inv.GET("/ledger", h.LedgerByReference)
	inv.POST("/receipts", h.RecordReceipt)
	inv.GET("/products/:id/ledger", h.ProductLedger)
	inv.GET("/products/:id/reconcile", h.Reconcile)
}

// Impact godoc
// @ID           calculateInventoryImpact
// @Summary      Preview inventory impact
// @Description  Convert a quantity into the product's purchase unit and show the resulting stock and cost
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ImpactRequest true "Quantity to convert"
// @Success      200 {object} dto.Response{data=inventoryapp.ImpactResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/impact [post]
func (h *InventoryHandler) Impact(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.ImpactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	impact, err := h.service.CalculateInventoryImpactForProduct(c.Request.Context(), actor, req.ProductID, req.Quantity, req.Unit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, impact)
}

// LedgerByReference godoc
// @ID           listLedgerByReference
// @Summary      List ledger entries by reference
// @Description  Return ledger entries whose reference starts with the given prefix
// @Tags         inventory
// @Produce      json
// @Param        reference query string true "Reference prefix" maxlength(150)
// @Success      200 {object} dto.Response{data=[]inventoryapp.LedgerEntryResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/ledger [get]
func (h *InventoryHandler) LedgerByReference(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q dto.ReferenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entries, err := h.service.ListLedgerByReference(c.Request.Context(), actor, q.Reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// RecordReceipt godoc
// @ID           recordInventoryReceipt
// @Summary      Record a receipt
// @Description  Book purchased stock into the ledger, optionally updating the product cost
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RecordReceiptRequest true "Receipt"
// @Success      201 {object} dto.Response{data=inventoryapp.LedgerEntryResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/receipts [post]
func (h *InventoryHandler) RecordReceipt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.RecordReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.service.RecordReceipt(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ProductLedger godoc
// @ID           listProductLedger
// @Summary      List a product's ledger entries
// @Description  Return a page of the product's ledger entries, oldest first by default
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50) maximum(500)
// @Param        order_by query string false "Order by field" default(transaction_date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(asc)
// @Success      200 {object} dto.Response{data=[]inventoryapp.LedgerEntryResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/products/{id}/ledger [get]
func (h *InventoryHandler) ProductLedger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c)
	if !ok {
		return
	}
	var q dto.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	filter.OrderBy = "transaction_date"
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}

	entries, err := h.service.ListProductLedger(c.Request.Context(), actor, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Reconcile godoc
// @ID           reconcileProductStock
// @Summary      Reconcile product stock
// @Description  Compare the product's current stock with the sum of its ledger entries
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.ReconciliationResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.service.ReconcileProductStock(c.Request.Context(), actor, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
