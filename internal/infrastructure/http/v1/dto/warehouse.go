package dto

import (
	"encoding/json"
	"time"

	"varasto/internal/core/types"
	"varasto/internal/domain/warehouse"
)

// --- Request DTOs ---

// CreateWarehouseRequest is the request body for creating a warehouse.
// Numeric fields accept a JSON number or a string and are validated by the directory.
type CreateWarehouseRequest struct {
	Name           string            `json:"name"`
	Capacity       types.NumericText `json:"capacity"`
	InitialBalance types.NumericText `json:"initialBalance"`
}

// ToInput converts the request into directory input.
func (r *CreateWarehouseRequest) ToInput() warehouse.CreateInput {
	return warehouse.CreateInput{
		Name:           r.Name,
		Capacity:       r.Capacity.String(),
		InitialBalance: r.InitialBalance.String(),
	}
}

// UpdateWarehouseRequest is the request body for updating a warehouse.
type UpdateWarehouseRequest struct {
	Name     string            `json:"name"`
	Capacity types.NumericText `json:"capacity"`
}

// ToInput converts the request into directory input.
func (r *UpdateWarehouseRequest) ToInput() warehouse.UpdateInput {
	return warehouse.UpdateInput{
		Name:     r.Name,
		Capacity: r.Capacity.String(),
	}
}

// StockMovementRequest moves quantity in or out of the warehouse stock.
type StockMovementRequest struct {
	Amount types.NumericText `json:"amount"`
}

// ProductMovementRequest moves quantity of a named product.
type ProductMovementRequest struct {
	ProductName string            `json:"productName"`
	Amount      types.NumericText `json:"amount"`
}

// --- Response DTOs ---

// WarehouseResponse is the response body for a warehouse.
type WarehouseResponse struct {
	ID                int64                     `json:"id"`
	Name              string                    `json:"name"`
	Capacity          types.Quantity            `json:"capacity"`
	Balance           types.Quantity            `json:"balance"`
	RemainingCapacity types.Quantity            `json:"remainingCapacity"`
	Summary           string                    `json:"summary"`
	Products          map[string]types.Quantity `json:"products"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

// FromWarehouse creates response DTO from domain entity.
func FromWarehouse(wh *warehouse.Warehouse) *WarehouseResponse {
	products := make(map[string]types.Quantity, len(wh.Products))
	for name, qty := range wh.Products {
		products[name] = qty
	}
	return &WarehouseResponse{
		ID:                wh.ID,
		Name:              wh.Name,
		Capacity:          wh.Stock.Capacity(),
		Balance:           wh.Stock.Balance(),
		RemainingCapacity: wh.Stock.RemainingCapacity(),
		Summary:           wh.Stock.String(),
		Products:          products,
		CreatedAt:         wh.CreatedAt,
		UpdatedAt:         wh.UpdatedAt,
	}
}

// FromWarehouses maps a slice of warehouses.
func FromWarehouses(items []*warehouse.Warehouse) []*WarehouseResponse {
	out := make([]*WarehouseResponse, len(items))
	for i, wh := range items {
		out[i] = FromWarehouse(wh)
	}
	return out
}

// MovementResponse reports what a movement actually applied.
type MovementResponse struct {
	Product   string             `json:"product,omitempty"`
	Applied   types.Quantity     `json:"applied"`
	Quantity  types.Quantity     `json:"quantity"`
	Message   string             `json:"message"`
	Warehouse *WarehouseResponse `json:"warehouse"`
}

// FromMovement creates a movement response.
func FromMovement(message string, res warehouse.MovementResult) *MovementResponse {
	return &MovementResponse{
		Product:   res.Product,
		Applied:   res.Applied,
		Quantity:  res.Quantity,
		Message:   message,
		Warehouse: FromWarehouse(res.Warehouse),
	}
}

// HistoryEntryResponse is one entry of a warehouse history.
type HistoryEntryResponse struct {
	ID        string           `json:"id"`
	Action    warehouse.Action `json:"action"`
	RequestID string           `json:"requestId,omitempty"`
	Changes   json.RawMessage  `json:"changes"`
	CreatedAt time.Time        `json:"createdAt"`
}

// FromHistory maps history entries.
func FromHistory(entries []warehouse.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			RequestID: e.RequestID,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}
