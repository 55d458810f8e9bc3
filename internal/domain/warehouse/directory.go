package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"varasto/internal/core/apperror"
	"varasto/internal/core/types"
	"varasto/internal/domain/ledger"
	"varasto/pkg/logger"
)

var tracer = otel.Tracer("varasto/warehouse")

// DefaultHistoryLimit caps History when the caller passes a non-positive limit.
const DefaultHistoryLimit = 50

// DirectoryConfig configures the directory.
type DirectoryConfig struct {
	Repo Repository

	// Journal is optional; history is discarded when nil.
	Journal Journal

	// Observer is optional.
	Observer Observer

	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Directory provides create/read/update/delete over warehouses and the
// stock movements on them. It is safe for concurrent use when the
// repository is.
type Directory struct {
	repo     Repository
	journal  Journal
	observer Observer
	now      func() time.Time
}

// NewDirectory creates a warehouse directory.
func NewDirectory(cfg DirectoryConfig) *Directory {
	d := &Directory{
		repo:     cfg.Repo,
		journal:  cfg.Journal,
		observer: cfg.Observer,
		now:      cfg.Now,
	}
	if d.journal == nil {
		d.journal = nopJournal{}
	}
	if d.observer == nil {
		d.observer = nopObserver{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// MovementResult describes the outcome of a stock or product movement.
type MovementResult struct {
	// Applied is the amount actually added or removed after clamping.
	Applied types.Quantity

	// Quantity is the resulting stock balance or product quantity.
	Quantity types.Quantity

	// Product is the normalised product name; empty for stock movements.
	Product string

	Warehouse *Warehouse
}

// Create validates input and stores a new warehouse.
func (d *Directory) Create(ctx context.Context, in CreateInput) (_ *Warehouse, err error) {
	ctx, span := tracer.Start(ctx, "warehouse.Create")
	defer func() { endSpan(span, err) }()

	params, err := in.parse()
	if err != nil {
		return nil, err
	}

	wh := NewWarehouse(params.name, ledger.New(params.capacity, params.initial), d.now().UTC())
	if err := d.repo.Create(ctx, wh); err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}
	span.SetAttributes(attribute.Int64("warehouse.id", wh.ID))

	d.record(ctx, wh.ID, ActionCreate, map[string]any{
		"name":     wh.Name,
		"capacity": wh.Stock.Capacity().String(),
		"balance":  wh.Stock.Balance().String(),
	})
	d.refreshCount(ctx)

	logger.Info(ctx, "warehouse created",
		"warehouse_id", wh.ID,
		"name", wh.Name,
		"stock", wh.Stock.String(),
	)
	return wh, nil
}

// Get returns a warehouse by ID.
func (d *Directory) Get(ctx context.Context, id int64) (*Warehouse, error) {
	wh, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, normalizeGetErr(err, id)
	}
	return wh, nil
}

// List returns all warehouses ordered by ID.
func (d *Directory) List(ctx context.Context) ([]*Warehouse, error) {
	items, err := d.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	if items == nil {
		items = []*Warehouse{}
	}
	return items, nil
}

// Count returns the number of warehouses without copying them.
func (d *Directory) Count(ctx context.Context) (int, error) {
	n, err := d.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count warehouses: %w", err)
	}
	return n, nil
}

// Update renames and resizes a warehouse. The current balance is kept and
// re-clamped against the new capacity; products are untouched.
func (d *Directory) Update(ctx context.Context, id int64, in UpdateInput) (_ *Warehouse, err error) {
	ctx, span := d.startSpan(ctx, "warehouse.Update", id)
	defer func() { endSpan(span, err) }()

	var before struct{ name, capacity, balance string }
	wh, err := d.repo.Update(ctx, id, func(wh *Warehouse) error {
		params, err := in.parse()
		if err != nil {
			return err
		}
		before.name = wh.Name
		before.capacity = wh.Stock.Capacity().String()
		before.balance = wh.Stock.Balance().String()

		wh.Name = params.name
		wh.Stock = wh.Stock.Resize(params.capacity)
		wh.UpdatedAt = d.now().UTC()
		return nil
	})
	if err != nil {
		return nil, normalizeGetErr(err, id)
	}

	d.record(ctx, id, ActionUpdate, map[string]any{
		"name":     map[string]any{"old": before.name, "new": wh.Name},
		"capacity": map[string]any{"old": before.capacity, "new": wh.Stock.Capacity().String()},
		"balance":  map[string]any{"old": before.balance, "new": wh.Stock.Balance().String()},
	})

	logger.Info(ctx, "warehouse updated",
		"warehouse_id", id,
		"name", wh.Name,
		"stock", wh.Stock.String(),
	)
	return wh, nil
}

// Delete removes a warehouse and returns the removed record.
func (d *Directory) Delete(ctx context.Context, id int64) (_ *Warehouse, err error) {
	ctx, span := d.startSpan(ctx, "warehouse.Delete", id)
	defer func() { endSpan(span, err) }()

	wh, err := d.repo.Delete(ctx, id)
	if err != nil {
		return nil, normalizeGetErr(err, id)
	}

	d.record(ctx, id, ActionDelete, map[string]any{
		"name":     wh.Name,
		"balance":  wh.Stock.Balance().String(),
		"products": len(wh.Products),
	})
	d.refreshCount(ctx)

	logger.Info(ctx, "warehouse deleted", "warehouse_id", id, "name", wh.Name)
	return wh, nil
}

// AddStock adds amount to the warehouse stock ledger. Anything above the
// remaining capacity is discarded; Applied reports what was stored.
func (d *Directory) AddStock(ctx context.Context, id int64, amount string) (MovementResult, error) {
	return d.moveStock(ctx, id, ActionAddStock, amount, (*ledger.Ledger).Add)
}

// RemoveStock takes up to amount from the warehouse stock ledger.
func (d *Directory) RemoveStock(ctx context.Context, id int64, amount string) (MovementResult, error) {
	return d.moveStock(ctx, id, ActionRemoveStock, amount, (*ledger.Ledger).Remove)
}

func (d *Directory) moveStock(
	ctx context.Context,
	id int64,
	action Action,
	rawAmount string,
	apply func(*ledger.Ledger, types.Quantity) types.Quantity,
) (_ MovementResult, err error) {
	ctx, span := d.startSpan(ctx, "warehouse."+string(action), id)
	defer func() { endSpan(span, err) }()

	var requested, applied types.Quantity
	wh, err := d.repo.Update(ctx, id, func(wh *Warehouse) error {
		amount, err := parseAmount(rawAmount)
		if err != nil {
			return err
		}
		requested = amount
		applied = apply(wh.Stock, amount)
		wh.UpdatedAt = d.now().UTC()
		return nil
	})
	if err != nil {
		return MovementResult{}, normalizeGetErr(err, id)
	}

	d.afterMovement(ctx, wh, action, "", requested, applied, wh.Stock.Balance())
	return MovementResult{Applied: applied, Quantity: wh.Stock.Balance(), Warehouse: wh}, nil
}

// AddProduct increases the quantity of a named product. Product quantities
// are not limited by the warehouse capacity.
func (d *Directory) AddProduct(ctx context.Context, id int64, product, amount string) (_ MovementResult, err error) {
	ctx, span := d.startSpan(ctx, "warehouse.add_product", id)
	defer func() { endSpan(span, err) }()

	var name string
	var requested, quantity types.Quantity
	wh, err := d.repo.Update(ctx, id, func(wh *Warehouse) error {
		n, err := parseProductName(product)
		if err != nil {
			return err
		}
		a, err := parseAmount(amount)
		if err != nil {
			return err
		}
		name, requested = n, a
		quantity = wh.addProduct(name, requested)
		wh.UpdatedAt = d.now().UTC()
		return nil
	})
	if err != nil {
		return MovementResult{}, normalizeGetErr(err, id)
	}

	d.afterMovement(ctx, wh, ActionAddProduct, name, requested, requested, quantity)
	return MovementResult{Applied: requested, Quantity: quantity, Product: name, Warehouse: wh}, nil
}

// RemoveProduct takes up to amount of a named product. The entry is removed
// once its quantity reaches zero.
func (d *Directory) RemoveProduct(ctx context.Context, id int64, product, amount string) (_ MovementResult, err error) {
	ctx, span := d.startSpan(ctx, "warehouse.remove_product", id)
	defer func() { endSpan(span, err) }()

	var name string
	var requested, taken types.Quantity
	wh, err := d.repo.Update(ctx, id, func(wh *Warehouse) error {
		n, err := parseProductName(product)
		if err != nil {
			return err
		}
		a, err := parseAmount(amount)
		if err != nil {
			return err
		}
		if _, ok := wh.ProductQuantity(n); !ok {
			return apperror.NewProductNotFound(id, n)
		}
		name, requested = n, a
		taken = wh.removeProduct(name, requested)
		wh.UpdatedAt = d.now().UTC()
		return nil
	})
	if err != nil {
		return MovementResult{}, normalizeGetErr(err, id)
	}

	remaining, _ := wh.ProductQuantity(name)
	d.afterMovement(ctx, wh, ActionRemoveProduct, name, requested, taken, remaining)
	return MovementResult{Applied: taken, Quantity: remaining, Product: name, Warehouse: wh}, nil
}

// History returns recorded changes of a warehouse, newest first.
// History outlives the warehouse itself.
func (d *Directory) History(ctx context.Context, id int64, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := d.journal.History(ctx, id, limit)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("warehouse_id", id)
	}
	return entries, nil
}

func (d *Directory) afterMovement(
	ctx context.Context,
	wh *Warehouse,
	action Action,
	product string,
	requested, applied, quantity types.Quantity,
) {
	changes := map[string]any{
		"requested": requested.String(),
		"applied":   applied.String(),
		"quantity":  quantity.String(),
	}
	if product != "" {
		changes["product"] = product
	}
	d.record(ctx, wh.ID, action, changes)
	d.observer.Movement(action, requested, applied)

	if !applied.Equal(requested) {
		logger.Debug(ctx, "stock movement clamped",
			"warehouse_id", wh.ID,
			"action", action,
			"product", product,
			"requested", requested.String(),
			"applied", applied.String(),
		)
	}
}

// record writes a history entry. Failures are logged, never returned:
// the change itself has already been applied.
func (d *Directory) record(ctx context.Context, id int64, action Action, changes map[string]any) {
	if err := d.journal.Record(ctx, id, action, changes); err != nil {
		logger.Warn(ctx, "failed to record warehouse history",
			"warehouse_id", id,
			"action", action,
			"error", err,
		)
	}
}

func (d *Directory) refreshCount(ctx context.Context) {
	n, err := d.Count(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to count warehouses", "error", err)
		return
	}
	d.observer.WarehouseCount(n)
}

func (d *Directory) startSpan(ctx context.Context, name string, id int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("warehouse.id", id)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// normalizeGetErr keeps AppErrors as they are and maps everything else to an internal error.
func normalizeGetErr(err error, id int64) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", "warehouse").WithDetail("id", id)
}
