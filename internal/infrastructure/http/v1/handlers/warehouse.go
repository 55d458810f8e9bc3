// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"varasto/internal/domain/warehouse"
	"varasto/internal/infrastructure/http/v1/dto"
)

// WarehouseDirectory is the part of warehouse.Directory the HTTP layer uses.
type WarehouseDirectory interface {
	Create(ctx context.Context, in warehouse.CreateInput) (*warehouse.Warehouse, error)
	Get(ctx context.Context, id int64) (*warehouse.Warehouse, error)
	List(ctx context.Context) ([]*warehouse.Warehouse, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, in warehouse.UpdateInput) (*warehouse.Warehouse, error)
	Delete(ctx context.Context, id int64) (*warehouse.Warehouse, error)
	AddStock(ctx context.Context, id int64, amount string) (warehouse.MovementResult, error)
	RemoveStock(ctx context.Context, id int64, amount string) (warehouse.MovementResult, error)
	AddProduct(ctx context.Context, id int64, product, amount string) (warehouse.MovementResult, error)
	RemoveProduct(ctx context.Context, id int64, product, amount string) (warehouse.MovementResult, error)
	History(ctx context.Context, id int64, limit int) ([]warehouse.HistoryEntry, error)
}

// WarehouseHandler serves the warehouse endpoints.
type WarehouseHandler struct {
	*BaseHandler
	directory WarehouseDirectory
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, directory WarehouseDirectory) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, directory: directory}
}

// List handles GET /warehouses.
func (h *WarehouseHandler) List(c *gin.Context) {
	items, err := h.directory.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromWarehouses(items),
		TotalCount: int64(len(items)),
	})
}

// Create handles POST /warehouses.
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	wh, err := h.directory.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromWarehouse(wh))
}

// Get handles GET /warehouses/:id.
func (h *WarehouseHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	wh, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromWarehouse(wh))
}

// Update handles PUT /warehouses/:id.
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	wh, err := h.directory.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromWarehouse(wh))
}

// Delete handles DELETE /warehouses/:id.
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	wh, err := h.directory.Delete(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, fmt.Sprintf("Warehouse %q deleted successfully", wh.Name))
}

// AddStock handles POST /warehouses/:id/stock/add.
func (h *WarehouseHandler) AddStock(c *gin.Context) {
	h.stockMovement(c, h.directory.AddStock, "Added %s to warehouse")
}

// RemoveStock handles POST /warehouses/:id/stock/remove.
func (h *WarehouseHandler) RemoveStock(c *gin.Context) {
	h.stockMovement(c, h.directory.RemoveStock, "Removed %s from warehouse")
}

func (h *WarehouseHandler) stockMovement(
	c *gin.Context,
	move func(context.Context, int64, string) (warehouse.MovementResult, error),
	message string,
) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.StockMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := move(c.Request.Context(), id, req.Amount.String())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMovement(fmt.Sprintf(message, res.Applied.String()), res))
}

// AddProduct handles POST /warehouses/:id/products/add.
func (h *WarehouseHandler) AddProduct(c *gin.Context) {
	h.productMovement(c, h.directory.AddProduct, "Added %s %s to warehouse")
}

// RemoveProduct handles POST /warehouses/:id/products/remove.
func (h *WarehouseHandler) RemoveProduct(c *gin.Context) {
	h.productMovement(c, h.directory.RemoveProduct, "Removed %s %s from warehouse")
}

func (h *WarehouseHandler) productMovement(
	c *gin.Context,
	move func(context.Context, int64, string, string) (warehouse.MovementResult, error),
	message string,
) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.ProductMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := move(c.Request.Context(), id, req.ProductName, req.Amount.String())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMovement(fmt.Sprintf(message, res.Applied.String(), res.Product), res))
}

// History handles GET /warehouses/:id/history?limit=N.
func (h *WarehouseHandler) History(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	entries, err := h.directory.History(c.Request.Context(), id, h.ParseIntQuery(c, "limit", warehouse.DefaultHistoryLimit))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromHistory(entries),
		TotalCount: int64(len(entries)),
	})
}

// RegisterRoutes registers warehouse routes on rg.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/stock/add", h.AddStock)
	rg.POST("/:id/stock/remove", h.RemoveStock)
	rg.POST("/:id/products/add", h.AddProduct)
	rg.POST("/:id/products/remove", h.RemoveProduct)
	rg.GET("/:id/history", h.History)
}
