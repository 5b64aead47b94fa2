package orderbook

import (
	"testing"
	"time"

	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

func newOrder(id types.OrderID) *types.Order {
	now := time.Date(2026, 7, 27, 9, 30, 0, 0, time.UTC)
	return &types.Order{
		ID:        id,
		Side:      types.Buy,
		Symbol:    "sh600000",
		LimitPrice: money.New(10),
		Quantity:  100,
		Status:    types.Pending,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
}

func TestAddAndGet(t *testing.T) {
	t.Parallel()
	b := New()
	o := newOrder("o1")
	b.Add(o)

	if got := b.Get("o1"); got != o {
		t.Fatalf("Get returned %+v, want %+v", got, o)
	}
	if got := b.Get("missing"); got != nil {
		t.Fatalf("Get(missing) = %+v, want nil", got)
	}
}

func TestPendingSnapshotIsFIFOAndIsolated(t *testing.T) {
	t.Parallel()
	b := New()
	b.Add(newOrder("o1"))
	b.Add(newOrder("o2"))
	b.Add(newOrder("o3"))

	snap := b.PendingSnapshot()
	want := []types.OrderID{"o1", "o2", "o3"}
	for i, id := range want {
		if snap[i] != id {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i], id)
		}
	}

	// Mutating the book afterward must not affect the already-taken snapshot.
	if err := b.Transition("o2", types.Canceled); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("earlier snapshot mutated, len = %d, want 3", len(snap))
	}

	after := b.PendingSnapshot()
	if len(after) != 2 || after[0] != "o1" || after[1] != "o3" {
		t.Fatalf("post-cancel snapshot = %v, want [o1 o3]", after)
	}
}

func TestTransitionRejectsNonPendingSource(t *testing.T) {
	t.Parallel()
	b := New()
	b.Add(newOrder("o1"))
	if err := b.Transition("o1", types.Filled); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if err := b.Transition("o1", types.Canceled); err == nil {
		t.Fatal("expected error transitioning an already-terminal order")
	}
}

func TestTransitionRejectsUnknownOrder(t *testing.T) {
	t.Parallel()
	b := New()
	if err := b.Transition("ghost", types.Canceled); err == nil {
		t.Fatal("expected error for unknown order id")
	}
}

func TestTransitionRejectsNonTerminalTarget(t *testing.T) {
	t.Parallel()
	b := New()
	b.Add(newOrder("o1"))
	if err := b.Transition("o1", types.Pending); err == nil {
		t.Fatal("expected error transitioning to a non-terminal status")
	}
}
