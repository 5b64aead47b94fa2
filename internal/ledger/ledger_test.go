package ledger

import (
	"testing"
	"time"

	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

func TestApplyBuyFillWorkedExample(t *testing.T) {
	t.Parallel()
	l := New(money.New(100000))
	date := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)

	l.ApplyBuyFill("sh600000", money.New(10.00), 1000, money.New(5.1), date)

	want := money.New(89994.90)
	if !l.Cash().Equal(want) {
		t.Errorf("cash after buy = %s, want %s", l.Cash(), want)
	}
	lots := l.Lots("sh600000")
	if len(lots) != 1 || lots[0].Quantity != 1000 || !lots[0].CostPrice.Equal(money.New(10.00)) {
		t.Errorf("unexpected lots: %+v", lots)
	}
}

func TestApplySellFillFIFO(t *testing.T) {
	t.Parallel()
	l := New(money.New(100000))
	d1 := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 7, 21, 0, 0, 0, 0, time.UTC)

	l.ApplyBuyFill("sh600000", money.New(10), 500, money.New(5), d1)
	l.ApplyBuyFill("sh600000", money.New(12), 500, money.New(5), d2)

	res := l.ApplySellFill("sh600000", money.New(11), 700)
	if res.ExecutedQty != 700 {
		t.Fatalf("ExecutedQty = %d, want 700", res.ExecutedQty)
	}
	// First slice: 500 shares from the d1 lot (cost 10), second: 200 from d2 (cost 12).
	if len(res.SliceQtys) != 2 || res.SliceQtys[0] != 500 || res.SliceQtys[1] != 200 {
		t.Errorf("slice quantities = %v, want [500 200]", res.SliceQtys)
	}

	lots := l.Lots("sh600000")
	if len(lots) != 1 || lots[0].Quantity != 300 || !lots[0].CostPrice.Equal(money.New(12)) {
		t.Errorf("remaining lots = %+v, want one lot of 300 @ 12", lots)
	}
}

func TestFreezeUnfreezeCashClampsAtZero(t *testing.T) {
	t.Parallel()
	l := New(money.New(1000))
	l.UnfreezeCash(money.New(50)) // nothing frozen yet
	if !l.FrozenCash().IsZero() {
		t.Errorf("FrozenCash = %s, want 0 after over-release", l.FrozenCash())
	}
}

func TestFreezeUnfreezeQtyClampsAtZero(t *testing.T) {
	t.Parallel()
	l := New(money.New(1000))
	l.FreezeQty("sh600000", 100)
	l.UnfreezeQty("sh600000", 300)
	if l.FrozenQty("sh600000") != 0 {
		t.Errorf("FrozenQty = %d, want 0", l.FrozenQty("sh600000"))
	}
}

func TestCanSellBlocksOnFreshLot(t *testing.T) {
	t.Parallel()
	l := New(money.New(100000))
	today := time.Date(2026, 7, 27, 10, 0, 0, 0, time.UTC)
	l.ApplyBuyFill("sh600000", money.New(10), 500, money.New(5), today)

	if l.CanSell("sh600000", today, 1) {
		t.Error("CanSell should be false for a same-day lot under T+1")
	}
}

func TestCanSellAllowsSettledLot(t *testing.T) {
	t.Parallel()
	l := New(money.New(100000))
	buyDate := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, 7, 27, 10, 0, 0, 0, time.UTC)
	l.ApplyBuyFill("sh600000", money.New(10), 500, money.New(5), buyDate)

	if !l.CanSell("sh600000", later, 1) {
		t.Error("CanSell should be true once the lot clears T+1")
	}
}

func TestAccumulateTodayProfitSumsAcrossCalls(t *testing.T) {
	t.Parallel()
	l := New(money.New(100000))
	l.AccumulateTodayProfit(money.New(12.5))
	l.AccumulateTodayProfit(money.New(-2))

	want := money.New(10.5)
	if !l.TodayProfit().Equal(want) {
		t.Errorf("TodayProfit = %s, want %s", l.TodayProfit(), want)
	}
}

func TestExportImportStateRoundTripsTodayProfit(t *testing.T) {
	t.Parallel()
	l := New(money.New(100000))
	l.AccumulateTodayProfit(money.New(42))
	tradingDay := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	l.lastTradingDay = tradingDay

	state := l.ExportState()

	restored := New(money.New(0))
	restored.ImportState(state)

	if !restored.TodayProfit().Equal(money.New(42)) {
		t.Errorf("restored TodayProfit = %s, want 42", restored.TodayProfit())
	}
	if !restored.LastTradingDay().Equal(tradingDay) {
		t.Errorf("restored LastTradingDay = %s, want %s", restored.LastTradingDay(), tradingDay)
	}
}

func TestCheckInvariantsCatchesNegativeCash(t *testing.T) {
	t.Parallel()
	l := New(money.New(100))
	l.cash = money.New(-1)
	if err := l.CheckInvariants(); err == nil {
		t.Error("expected invariant violation for negative cash")
	}
}
