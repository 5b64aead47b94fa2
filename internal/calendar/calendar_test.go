package calendar

import (
	"testing"
	"time"
)

func at(hh, mm int) time.Time {
	// Monday 2026-07-27 is a trading day with no holidays configured.
	return time.Date(2026, 7, 27, hh, mm, 0, 0, time.UTC)
}

func TestPhaseBoundaries(t *testing.T) {
	t.Parallel()
	c := New(nil, nil)

	cases := []struct {
		hh, mm int
		want   Phase
	}{
		{9, 15, PreOpen},
		{9, 19, PreOpen},
		{9, 20, OpenCallNoCancel},
		{9, 25, OpenCall},
		{9, 30, ContinuousAM},
		{11, 29, ContinuousAM},
		{11, 30, Break},
		{13, 0, ContinuousPM},
		{14, 56, ContinuousPM},
		{14, 57, CloseCall},
		{15, 0, PostMarket},
		{15, 29, PostMarket},
		{15, 30, Closed},
		{23, 0, Closed},
		{9, 14, Closed},
	}
	for _, tc := range cases {
		got := c.Phase(at(tc.hh, tc.mm))
		if got != tc.want {
			t.Errorf("Phase(%02d:%02d) = %v, want %v", tc.hh, tc.mm, got, tc.want)
		}
	}
}

func TestIsTradingDayWeekend(t *testing.T) {
	t.Parallel()
	c := New(nil, nil)
	saturday := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if c.IsTradingDay(saturday) {
		t.Error("Saturday should not be a trading day")
	}
}

func TestIsTradingDayHoliday(t *testing.T) {
	t.Parallel()
	holidays := NewStaticHolidaySource([]string{"2026-07-27"})
	c := New(holidays, nil)
	if c.IsTradingDay(at(10, 0)) {
		t.Error("configured holiday should not be a trading day")
	}
	if c.Phase(at(10, 0)) != NonTrading {
		t.Errorf("Phase on holiday = %v, want NonTrading", c.Phase(at(10, 0)))
	}
}

func TestCancellableAndPlacement(t *testing.T) {
	t.Parallel()
	if !PreOpen.Cancellable() {
		t.Error("pre_open should be cancellable")
	}
	if OpenCall.Cancellable() {
		t.Error("open_call should not be cancellable")
	}
	if Closed.PlacementAllowed() {
		t.Error("closed should not allow placement")
	}
	if !ContinuousAM.PlacementAllowed() {
		t.Error("continuous_am should allow placement")
	}
	if !PreOpen.PreMarket() || !OpenCall.PreMarket() || !OpenCallNoCancel.PreMarket() {
		t.Error("pre_open/open_call/open_call_no_cancel should all be pre-market")
	}
	if ContinuousAM.PreMarket() {
		t.Error("continuous_am should not be pre-market")
	}
}
