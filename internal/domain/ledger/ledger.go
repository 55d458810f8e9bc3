// Package ledger provides the bounded quantity ledger that backs every warehouse.
//
// A Ledger models a physical container: it never holds more than its capacity
// and never goes below zero. Out-of-range input is normalised to the nearest
// valid value instead of being reported as an error.
package ledger

import (
	"fmt"

	"varasto/internal/core/types"
)

// Ledger tracks a single bounded balance.
// The zero value is an empty ledger with zero capacity.
type Ledger struct {
	capacity types.Quantity
	balance  types.Quantity
}

// New creates a ledger. A non-positive capacity becomes 0 and the initial
// balance is clamped into [0, capacity].
func New(capacity, initial types.Quantity) *Ledger {
	if !capacity.IsPositive() {
		capacity = types.ZeroQuantity()
	}
	return &Ledger{
		capacity: capacity,
		balance:  clamp(initial, capacity),
	}
}

// Capacity returns the maximum balance.
func (l *Ledger) Capacity() types.Quantity { return l.capacity }

// Balance returns the stored quantity.
func (l *Ledger) Balance() types.Quantity { return l.balance }

// RemainingCapacity returns capacity - balance.
func (l *Ledger) RemainingCapacity() types.Quantity {
	return l.capacity.Sub(l.balance)
}

// Add stores amount and returns how much was actually accepted.
// Negative amounts are ignored; anything above the remaining capacity is discarded.
func (l *Ledger) Add(amount types.Quantity) types.Quantity {
	if amount.IsNegative() {
		return types.ZeroQuantity()
	}
	accepted := types.Min(amount, l.RemainingCapacity())
	l.balance = l.balance.Add(accepted)
	return accepted
}

// Remove takes up to amount out of the ledger and returns what was taken.
// Non-positive amounts return 0 and leave the balance untouched.
func (l *Ledger) Remove(amount types.Quantity) types.Quantity {
	if !amount.IsPositive() {
		return types.ZeroQuantity()
	}
	taken := types.Min(amount, l.balance)
	l.balance = l.balance.Sub(taken)
	return taken
}

// Resize returns a new ledger with the given capacity holding the current
// balance, subject to the same normalisation as New.
func (l *Ledger) Resize(capacity types.Quantity) *Ledger {
	return New(capacity, l.balance)
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := *l
	return &c
}

// String describes the ledger, e.g. "balance = 6, remaining capacity 4".
func (l *Ledger) String() string {
	return fmt.Sprintf("balance = %s, remaining capacity %s", l.balance.String(), l.RemainingCapacity().String())
}

func clamp(v, upper types.Quantity) types.Quantity {
	if v.IsNegative() {
		return types.ZeroQuantity()
	}
	return types.Min(v, upper)
}
