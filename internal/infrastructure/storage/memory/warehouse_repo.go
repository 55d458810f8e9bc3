// Package memory provides in-process storage for the warehouse directory.
// State lives for the lifetime of the repository value; nothing is persisted.
package memory

import (
	"context"
	"sort"
	"sync"

	"varasto/internal/core/apperror"
	"varasto/internal/domain/warehouse"
)

// Compile-time check that WarehouseRepo implements warehouse.Repository.
var _ warehouse.Repository = (*WarehouseRepo)(nil)

// WarehouseRepo implements warehouse.Repository on a map guarded by one RWMutex.
// Every method returns copies, so callers never alias stored records.
type WarehouseRepo struct {
	mu         sync.RWMutex
	warehouses map[int64]*warehouse.Warehouse
	lastID     int64
}

// NewWarehouseRepo creates an empty repository. The first ID handed out is 1.
func NewWarehouseRepo() *WarehouseRepo {
	return &WarehouseRepo{
		warehouses: make(map[int64]*warehouse.Warehouse),
	}
}

// Create assigns the next ID to wh and stores a copy of it.
func (r *WarehouseRepo) Create(ctx context.Context, wh *warehouse.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	wh.ID = r.lastID
	r.warehouses[wh.ID] = wh.Clone()
	return nil
}

// GetByID returns a copy of the warehouse.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*warehouse.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wh, ok := r.warehouses[id]
	if !ok {
		return nil, notFound(id)
	}
	return wh.Clone(), nil
}

// List returns copies of all warehouses ordered by ID.
func (r *WarehouseRepo) List(ctx context.Context) ([]*warehouse.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*warehouse.Warehouse, 0, len(r.warehouses))
	for _, wh := range r.warehouses {
		items = append(items, wh.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Update runs fn on a working copy under the write lock and commits it only
// if fn succeeds.
func (r *WarehouseRepo) Update(ctx context.Context, id int64, fn func(wh *warehouse.Warehouse) error) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.warehouses[id]
	if !ok {
		return nil, notFound(id)
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	r.warehouses[id] = working
	return working.Clone(), nil
}

// Delete removes the warehouse. The ID is not reused.
func (r *WarehouseRepo) Delete(ctx context.Context, id int64) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wh, ok := r.warehouses[id]
	if !ok {
		return nil, notFound(id)
	}
	delete(r.warehouses, id)
	return wh, nil
}

// Count returns the number of stored warehouses.
func (r *WarehouseRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.warehouses), nil
}

func notFound(id int64) error {
	return apperror.NewNotFound("warehouse", id)
}
