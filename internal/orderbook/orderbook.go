// Package orderbook is the indexed store of all orders plus the FIFO
// queue of ids still pending a fill.
package orderbook

import (
	"fmt"

	"ashare-paper/pkg/types"
)

// Book stores every order by id and keeps a FIFO queue of pending ids.
// Not concurrency-safe on its own; the owning service serializes access.
type Book struct {
	orders  map[types.OrderID]*types.Order
	pending []types.OrderID
}

// New creates an empty order book.
func New() *Book {
	return &Book{orders: make(map[types.OrderID]*types.Order)}
}

// Add appends a new order to the book and, if it's PENDING, to the queue.
func (b *Book) Add(o *types.Order) {
	b.orders[o.ID] = o
	if o.Status == types.Pending {
		b.pending = append(b.pending, o.ID)
	}
}

// Get returns the order with id, or nil if unknown.
func (b *Book) Get(id types.OrderID) *types.Order {
	return b.orders[id]
}

// All returns every order in the book (insertion order not guaranteed).
func (b *Book) All() []*types.Order {
	out := make([]*types.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o)
	}
	return out
}

// PendingSnapshot returns a copy of the current pending-id queue, safe for
// the caller to range over while the book is mutated (e.g. during a
// matching pass that removes ids as it goes).
func (b *Book) PendingSnapshot() []types.OrderID {
	out := make([]types.OrderID, len(b.pending))
	copy(out, b.pending)
	return out
}

// removeFromQueue does an O(n) scan-and-remove; n is small in practice
// (bounded pending-order count per account).
func (b *Book) removeFromQueue(id types.OrderID) {
	for i, qid := range b.pending {
		if qid == id {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}
}

// Transition moves order id from PENDING to a terminal status, removing it
// from the pending queue. PENDING is the only legal source state; any
// other source is an IllegalTransition.
func (b *Book) Transition(id types.OrderID, to types.Status) error {
	o, ok := b.orders[id]
	if !ok {
		return fmt.Errorf("orderbook: unknown order %s", id)
	}
	if o.Status != types.Pending {
		return fmt.Errorf("orderbook: illegal transition for order %s: %s -> %s", id, o.Status, to)
	}
	if !to.Terminal() {
		return fmt.Errorf("orderbook: %s is not a terminal status", to)
	}
	o.Status = to
	b.removeFromQueue(id)
	return nil
}

// ExportState returns every order in the book as a flat slice, suitable
// for gob encoding by internal/persist.
func (b *Book) ExportState() []*types.Order {
	out := make([]*types.Order, 0, len(b.orders))
	for _, o := range b.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out
}

// ImportState replaces the book's contents with a previously exported
// order slice, rebuilding the pending queue from each order's status.
func (b *Book) ImportState(orders []*types.Order) {
	b.orders = make(map[types.OrderID]*types.Order, len(orders))
	b.pending = nil
	for _, o := range orders {
		b.orders[o.ID] = o
		if o.Status == types.Pending {
			b.pending = append(b.pending, o.ID)
		}
	}
}
