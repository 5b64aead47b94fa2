package journal

import (
	"testing"
	"time"

	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

func TestRecordFillAppendsInOrder(t *testing.T) {
	t.Parallel()
	j := New()
	j.RecordFill(types.Fill{OrderID: "o1"})
	j.RecordFill(types.Fill{OrderID: "o2"})

	fills := j.Fills()
	if len(fills) != 2 || fills[0].OrderID != "o1" || fills[1].OrderID != "o2" {
		t.Fatalf("Fills() = %+v, want [o1 o2]", fills)
	}
}

func TestFillsReturnsDefensiveCopy(t *testing.T) {
	t.Parallel()
	j := New()
	j.RecordFill(types.Fill{OrderID: "o1"})

	fills := j.Fills()
	fills[0].OrderID = "tampered"

	if got := j.Fills()[0].OrderID; got != "o1" {
		t.Fatalf("internal fill mutated via returned slice: %s", got)
	}
}

func TestRecordEquityOverwritesSameTimestamp(t *testing.T) {
	t.Parallel()
	j := New()
	ts := time.Date(2026, 7, 27, 10, 0, 0, 0, time.UTC)

	j.RecordEquity(types.EquitySample{Timestamp: ts, TotalAssets: money.New(100)})
	j.RecordEquity(types.EquitySample{Timestamp: ts, TotalAssets: money.New(150)})

	curve := j.Equity()
	if len(curve) != 1 {
		t.Fatalf("len(Equity()) = %d, want 1", len(curve))
	}
	if !curve[0].TotalAssets.Equal(money.New(150)) {
		t.Errorf("TotalAssets = %s, want 150", curve[0].TotalAssets)
	}
}

func TestRecordEquityCapsAtMax(t *testing.T) {
	t.Parallel()
	j := New()
	base := time.Date(2026, 7, 27, 10, 0, 0, 0, time.UTC)

	for i := 0; i < maxEquitySamples+10; i++ {
		j.RecordEquity(types.EquitySample{
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			TotalAssets: money.NewFromInt(int64(i)),
		})
	}

	curve := j.Equity()
	if len(curve) != maxEquitySamples {
		t.Fatalf("len(Equity()) = %d, want %d", len(curve), maxEquitySamples)
	}
	// Oldest samples should have been dropped; the curve should end at the
	// most recent value pushed in.
	last := curve[len(curve)-1]
	if !last.TotalAssets.Equal(money.NewFromInt(int64(maxEquitySamples + 9))) {
		t.Errorf("last sample = %s, want %d", last.TotalAssets, maxEquitySamples+9)
	}
}

func TestLastEquityEmpty(t *testing.T) {
	t.Parallel()
	j := New()
	if _, ok := j.LastEquity(); ok {
		t.Error("LastEquity should report false on an empty journal")
	}
}
