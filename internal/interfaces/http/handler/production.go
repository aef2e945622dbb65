package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	productionapp "github.com/kitchenops/backend/internal/application/production"
	"github.com/kitchenops/backend/internal/domain/identity"
	"github.com/kitchenops/backend/internal/infrastructure/export"
	"github.com/kitchenops/backend/internal/interfaces/http/dto"
	"github.com/kitchenops/backend/internal/interfaces/http/middleware"
)

// ProductionService is the production run use-case surface used by the handler
type ProductionService interface {
	CreateProductionRun(ctx context.Context, actor identity.Actor, req productionapp.CreateRunRequest) (*productionapp.ProductionRunResponse, error)
	GetProductionRun(ctx context.Context, actor identity.Actor, runID uuid.UUID) (*productionapp.ProductionRunResponse, error)
	RecordActualUsage(ctx context.Context, actor identity.Actor, runID, lineID uuid.UUID, req productionapp.RecordUsageRequest) (*productionapp.ProductionRunResponse, error)
	CompleteProductionRun(ctx context.Context, actor identity.Actor, runID uuid.UUID, req productionapp.CompleteRunRequest) (*productionapp.CompletionResponse, error)
	ListRunLedger(ctx context.Context, actor identity.Actor, runID uuid.UUID) ([]inventoryapp.LedgerEntryResponse, error)
}

// ProductionHandler handles production run endpoints
type ProductionHandler struct {
	BaseHandler
	service ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(service ProductionService) *ProductionHandler {
	return &ProductionHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ProductionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	runs := rg.Group("/production-runs")
	runs.POST("", h.Create)
	runs.GET("/:id", h.Get)
	runs.PUT("/:id/ingredients/:lineId", h.RecordUsage)
	runs.POST("/:id/complete", h.Complete)
	runs.GET("/:id/ledger", h.Ledger)
	runs.GET("/:id/ledger/export", h.ExportLedger)
}

// Create godoc
// @ID           createProductionRun
// @Summary      Start a production run
// @Description  Create an in-progress run from a prep recipe, scaling its ingredient lines to the target yield
// @Tags         production-runs
// @Accept       json
// @Produce      json
// @Param        request body productionapp.CreateRunRequest true "Run target"
// @Success      201 {object} dto.Response{data=productionapp.ProductionRunResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /production-runs [post]
func (h *ProductionHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req productionapp.CreateRunRequest
	if !h.bindJSON(c, &req) {
		return
	}

	run, err := h.service.CreateProductionRun(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, run)
}

// Get godoc
// @ID           getProductionRun
// @Summary      Get a production run
// @Description  Return a production run with its ingredient lines
// @Tags         production-runs
// @Produce      json
// @Param        id path string true "Production run ID" format(uuid)
// @Success      200 {object} dto.Response{data=productionapp.ProductionRunResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /production-runs/{id} [get]
func (h *ProductionHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	runID, ok := h.pathID(c)
	if !ok {
		return
	}

	run, err := h.service.GetProductionRun(c.Request.Context(), actor, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, run)
}

// RecordUsage godoc
// @ID           recordProductionRunUsage
// @Summary      Record actual ingredient usage
// @Description  Override an ingredient line's actual quantity while the run is in progress
// @Tags         production-runs
// @Accept       json
// @Produce      json
// @Param        id path string true "Production run ID" format(uuid)
// @Param        lineId path string true "Ingredient line ID" format(uuid)
// @Param        request body productionapp.RecordUsageRequest true "Actual usage"
// @Success      200 {object} dto.Response{data=productionapp.ProductionRunResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /production-runs/{id}/ingredients/{lineId} [put]
func (h *ProductionHandler) RecordUsage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var uri dto.RunLineRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	var req productionapp.RecordUsageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	run, err := h.service.RecordActualUsage(c.Request.Context(), actor, uuid.MustParse(uri.ID), uuid.MustParse(uri.LineID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, run)
}

// Complete godoc
// @ID           completeProductionRun
// @Summary      Complete a production run
// @Description  Post usage, adjustment and output ledger entries in one transaction and compute the output cost per unit
// @Tags         production-runs
// @Accept       json
// @Produce      json
// @Param        id path string true "Production run ID" format(uuid)
// @Param        request body productionapp.CompleteRunRequest false "Output and adjustments"
// @Success      200 {object} dto.Response{data=productionapp.CompletionResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /production-runs/{id}/complete [post]
func (h *ProductionHandler) Complete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	runID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req productionapp.CompleteRunRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.CompleteProductionRun(c.Request.Context(), actor, runID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Ledger godoc
// @ID           listProductionRunLedger
// @Summary      List a run's ledger entries
// @Tags         production-runs
// @Produce      json
// @Param        id path string true "Production run ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]inventoryapp.LedgerEntryResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /production-runs/{id}/ledger [get]
func (h *ProductionHandler) Ledger(c *gin.Context) {
	entries, ok := h.runLedger(c)
	if !ok {
		return
	}
	h.Success(c, entries)
}

// ExportLedger godoc
// @ID           exportProductionRunLedger
// @Summary      Export a run's ledger
// @Description  Download the run's ledger entries as an XLSX workbook
// @Tags         production-runs
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Production run ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /production-runs/{id}/ledger/export [get]
func (h *ProductionHandler) ExportLedger(c *gin.Context) {
	entries, ok := h.runLedger(c)
	if !ok {
		return
	}

	c.Header("Content-Type", export.XLSXContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=production-run-%s-ledger.xlsx", c.Param("id")))
	if err := export.WriteLedgerXLSX(c.Writer, entries); err != nil {
		h.HandleError(c, err)
	}
}

func (h *ProductionHandler) runLedger(c *gin.Context) ([]inventoryapp.LedgerEntryResponse, bool) {
	actor, ok := h.actor(c)
	if !ok {
		return nil, false
	}
	runID, ok := h.pathID(c)
	if !ok {
		return nil, false
	}
	entries, err := h.service.ListRunLedger(c.Request.Context(), actor, runID)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return entries, true
}
