package warehouse

import (
	"context"
	"encoding/json"
	"time"

	"varasto/internal/core/types"
)

// Repository defines persistence for warehouses.
// Implementations must return copies; mutation goes through Update.
type Repository interface {
	// Create stores a new warehouse and assigns its ID. IDs are never reused.
	Create(ctx context.Context, wh *Warehouse) error

	// GetByID returns the warehouse or an apperror not-found error.
	GetByID(ctx context.Context, id int64) (*Warehouse, error)

	// List returns all warehouses ordered by ID.
	List(ctx context.Context) ([]*Warehouse, error)

	// Update applies fn to a private copy of the warehouse atomically.
	// The copy replaces the stored record only when fn returns nil.
	Update(ctx context.Context, id int64, fn func(wh *Warehouse) error) (*Warehouse, error)

	// Delete removes the warehouse and returns the removed record.
	Delete(ctx context.Context, id int64) (*Warehouse, error)

	// Count returns the number of stored warehouses.
	Count(ctx context.Context) (int, error)
}

// Action identifies a directory operation in the history journal and metrics.
type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionAddStock      Action = "add_stock"
	ActionRemoveStock   Action = "remove_stock"
	ActionAddProduct    Action = "add_product"
	ActionRemoveProduct Action = "remove_product"
)

// HistoryEntry is one recorded change of a warehouse.
type HistoryEntry struct {
	ID          string
	WarehouseID int64
	Action      Action
	RequestID   string
	Changes     json.RawMessage
	CreatedAt   time.Time
}

// Journal records and replays warehouse history.
type Journal interface {
	Record(ctx context.Context, warehouseID int64, action Action, changes map[string]any) error
	History(ctx context.Context, warehouseID int64, limit int) ([]HistoryEntry, error)
}

// Observer receives operational signals from the directory (metrics).
type Observer interface {
	WarehouseCount(n int)
	Movement(action Action, requested, applied types.Quantity)
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, int64, Action, map[string]any) error { return nil }
func (nopJournal) History(context.Context, int64, int) ([]HistoryEntry, error) {
	return []HistoryEntry{}, nil
}

type nopObserver struct{}

func (nopObserver) WarehouseCount(int)                              {}
func (nopObserver) Movement(Action, types.Quantity, types.Quantity) {}
