// Package warehouse provides the warehouse directory: named warehouses, each
// owning a bounded stock ledger and a set of per-product quantities.
package warehouse

import (
	"sort"
	"time"

	"varasto/internal/core/types"
	"varasto/internal/domain/ledger"
)

// Warehouse is a named storage location.
//
// Stock is the single bounded balance of the warehouse. Products tracks named
// goods independently of Stock; product quantities are not limited by the
// warehouse capacity and an entry exists only while its quantity is positive.
type Warehouse struct {
	ID        int64
	Name      string
	Stock     *ledger.Ledger
	Products  map[string]types.Quantity
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWarehouse creates an unsaved warehouse. The ID is assigned by the repository.
func NewWarehouse(name string, stock *ledger.Ledger, now time.Time) *Warehouse {
	return &Warehouse{
		Name:      name,
		Stock:     stock,
		Products:  make(map[string]types.Quantity),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers never share mutable state with the directory.
func (w *Warehouse) Clone() *Warehouse {
	c := *w
	if w.Stock != nil {
		c.Stock = w.Stock.Clone()
	}
	c.Products = make(map[string]types.Quantity, len(w.Products))
	for name, qty := range w.Products {
		c.Products[name] = qty
	}
	return &c
}

// ProductQuantity returns the stocked quantity of a product and whether it is present.
func (w *Warehouse) ProductQuantity(product string) (types.Quantity, bool) {
	qty, ok := w.Products[product]
	return qty, ok
}

// ProductNames returns product names in lexical order.
func (w *Warehouse) ProductNames() []string {
	names := make([]string, 0, len(w.Products))
	for name := range w.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// addProduct increases a product quantity, creating the entry if needed.
func (w *Warehouse) addProduct(product string, amount types.Quantity) types.Quantity {
	current, ok := w.Products[product]
	if !ok {
		current = types.ZeroQuantity()
	}
	w.Products[product] = current.Add(amount)
	return w.Products[product]
}

// removeProduct takes up to amount of a stocked product and drops the entry once empty.
// The caller must ensure the product exists.
func (w *Warehouse) removeProduct(product string, amount types.Quantity) types.Quantity {
	entry := ledger.New(w.Products[product], w.Products[product])
	taken := entry.Remove(amount)
	if entry.Balance().IsZero() {
		delete(w.Products, product)
	} else {
		w.Products[product] = entry.Balance()
	}
	return taken
}
