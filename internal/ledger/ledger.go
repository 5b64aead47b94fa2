// Package ledger tracks cash, frozen cash, per-symbol lot positions, and
// frozen position quantities for one paper-trading account.
//
// Ledger is not concurrency-safe on its own — the owning TradingService
// serializes all mutation under its single service-wide mutex, the same
// shape the teacher's Inventory uses but scoped across an account instead
// of a single market.
package ledger

import (
	"fmt"
	"time"

	"ashare-paper/internal/fees"
	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// Ledger is the cash/position source of truth for one account.
type Ledger struct {
	initialCash money.Money
	cash        money.Money
	frozenCash  money.Money

	positions       map[types.Symbol][]types.Lot
	frozenPositions map[types.Symbol]int

	todayProfit    money.Money
	lastTradingDay time.Time

	fees fees.Schedule
}

// New creates a Ledger seeded with initialCash.
func New(initialCash money.Money) *Ledger {
	return &Ledger{
		initialCash:     initialCash,
		cash:            initialCash,
		positions:       make(map[types.Symbol][]types.Lot),
		frozenPositions: make(map[types.Symbol]int),
		lastTradingDay:  time.Now(),
	}
}

// InitialCash is immutable after construction.
func (l *Ledger) InitialCash() money.Money { return l.initialCash }

// Cash returns total cash, including frozen cash.
func (l *Ledger) Cash() money.Money { return l.cash }

// FrozenCash returns cash reserved against pending BUY orders.
func (l *Ledger) FrozenCash() money.Money { return l.frozenCash }

// AvailableCash is cash not reserved against a pending order.
func (l *Ledger) AvailableCash() money.Money { return l.cash.Sub(l.frozenCash) }

// TotalHoldings returns the sum of lot quantities for symbol.
func (l *Ledger) TotalHoldings(symbol types.Symbol) int {
	total := 0
	for _, lot := range l.positions[symbol] {
		total += lot.Quantity
	}
	return total
}

// FrozenQty returns the quantity of symbol reserved against pending SELL
// orders.
func (l *Ledger) FrozenQty(symbol types.Symbol) int {
	return l.frozenPositions[symbol]
}

// AvailableQty is holdings not reserved against a pending order.
func (l *Ledger) AvailableQty(symbol types.Symbol) int {
	return l.TotalHoldings(symbol) - l.frozenPositions[symbol]
}

// Lots returns a copy of the FIFO lot slice for symbol (nil if none held).
func (l *Ledger) Lots(symbol types.Symbol) []types.Lot {
	src := l.positions[symbol]
	if len(src) == 0 {
		return nil
	}
	out := make([]types.Lot, len(src))
	copy(out, src)
	return out
}

// TodayProfit is the realized profit accumulated from SELL fills since the
// ledger was constructed or last restored from a snapshot.
func (l *Ledger) TodayProfit() money.Money { return l.todayProfit }

// LastTradingDay is the trading day this ledger's today_profit accrual is
// associated with, carried across restarts as persisted metadata (mirrors
// the source system's last_trading_day field).
func (l *Ledger) LastTradingDay() time.Time { return l.lastTradingDay }

// AccumulateTodayProfit adds profit (which may itself be negative) to the
// running today_profit total. Called once per SELL fill with the sum of
// that fill's per-lot realized profit.
func (l *Ledger) AccumulateTodayProfit(profit money.Money) {
	l.todayProfit = l.todayProfit.Add(profit)
}

// Symbols returns every symbol currently holding at least one lot.
func (l *Ledger) Symbols() []types.Symbol {
	out := make([]types.Symbol, 0, len(l.positions))
	for s, lots := range l.positions {
		if len(lots) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// FreezeCash reserves amount against a pending BUY order.
func (l *Ledger) FreezeCash(amount money.Money) {
	l.frozenCash = l.frozenCash.Add(amount)
}

// UnfreezeCash releases amount, clamping at zero to tolerate duplicate
// releases (e.g. a cancel racing an expire).
func (l *Ledger) UnfreezeCash(amount money.Money) {
	l.frozenCash = l.frozenCash.Sub(amount)
	if l.frozenCash.IsNegative() {
		l.frozenCash = money.Zero
	}
}

// FreezeQty reserves qty shares of symbol against a pending SELL order.
func (l *Ledger) FreezeQty(symbol types.Symbol, qty int) {
	l.frozenPositions[symbol] += qty
}

// UnfreezeQty releases qty shares, clamping at zero.
func (l *Ledger) UnfreezeQty(symbol types.Symbol, qty int) {
	remaining := l.frozenPositions[symbol] - qty
	if remaining < 0 {
		remaining = 0
	}
	l.frozenPositions[symbol] = remaining
}

// ApplyBuyFill debits cash for price*qty+fee and appends a new Lot.
func (l *Ledger) ApplyBuyFill(symbol types.Symbol, price money.Money, qty int, fee money.Money, date time.Time) {
	notional := price.MulInt(qty)
	l.cash = l.cash.Sub(notional.Add(fee))
	l.positions[symbol] = append(l.positions[symbol], types.Lot{
		Quantity:  qty,
		CostPrice: price,
		BuyDate:   date,
	})
}

// SellResult aggregates the outcome of consuming FIFO lots for a sale.
type SellResult struct {
	RealizedProfit money.Money
	TotalFee       money.Money
	ExecutedQty    int
	SliceFees      []money.Money // fee charged per consumed lot slice
	SliceQtys      []int         // quantity consumed per slice, same order
	SliceProfits   []money.Money // realized profit per slice
}

// ApplySellFill consumes up to qtyReq shares of symbol FIFO across lots,
// crediting cash and accumulating realized profit and fees per slice. It
// returns early if the symbol runs out of lots before qtyReq is reached
// (callers are expected to have already validated sufficient available
// quantity).
func (l *Ledger) ApplySellFill(symbol types.Symbol, price money.Money, qtyReq int) SellResult {
	var res SellResult
	remaining := qtyReq
	lots := l.positions[symbol]

	for remaining > 0 && len(lots) > 0 {
		lot := lots[0]
		sliceQty := lot.Quantity
		if sliceQty > remaining {
			sliceQty = remaining
		}

		sliceNotional := price.MulInt(sliceQty)
		sliceFee := l.fees.SellFee(sliceNotional)
		sliceProfit := price.Sub(lot.CostPrice).MulInt(sliceQty).Sub(sliceFee)

		l.cash = l.cash.Add(sliceNotional.Sub(sliceFee))

		res.RealizedProfit = res.RealizedProfit.Add(sliceProfit)
		res.TotalFee = res.TotalFee.Add(sliceFee)
		res.ExecutedQty += sliceQty
		res.SliceFees = append(res.SliceFees, sliceFee)
		res.SliceQtys = append(res.SliceQtys, sliceQty)
		res.SliceProfits = append(res.SliceProfits, sliceProfit)

		if sliceQty == lot.Quantity {
			lots = lots[1:]
		} else {
			lots[0].Quantity -= sliceQty
		}
		remaining -= sliceQty
	}

	if len(lots) == 0 {
		delete(l.positions, symbol)
	} else {
		l.positions[symbol] = lots
	}
	return res
}

// CanSell reports whether every lot held for symbol is old enough to sell
// under the T+X rule: every lot's buy_date must be more than tPlus
// calendar days before asOf's date (spec.md §9 — this is the source's
// all-lots-settleable behavior, not per-lot; see DESIGN.md).
func (l *Ledger) CanSell(symbol types.Symbol, asOf time.Time, tPlus int) bool {
	lots := l.positions[symbol]
	if len(lots) == 0 {
		return false
	}
	asOfDate := asOf.Truncate(24 * time.Hour)
	for _, lot := range lots {
		daysDiff := int(asOfDate.Sub(lot.BuyDate.Truncate(24*time.Hour)).Hours() / 24)
		if daysDiff <= tPlus {
			return false
		}
	}
	return true
}

// CheckInvariants validates the ledger-level invariants from spec.md §3
// that don't require the order book (cash/frozen-cash bounds, frozen
// position bounds per symbol). The caller (TradingService) additionally
// cross-checks frozen totals against the pending order book.
func (l *Ledger) CheckInvariants() error {
	if l.cash.IsNegative() {
		return fmt.Errorf("ledger invariant: cash %s < 0", l.cash)
	}
	if l.frozenCash.IsNegative() {
		return fmt.Errorf("ledger invariant: frozen_cash %s < 0", l.frozenCash)
	}
	if l.frozenCash.GreaterThan(l.cash) {
		return fmt.Errorf("ledger invariant: frozen_cash %s > cash %s", l.frozenCash, l.cash)
	}
	for symbol, frozen := range l.frozenPositions {
		if frozen < 0 {
			return fmt.Errorf("ledger invariant: frozen_positions[%s] = %d < 0", symbol, frozen)
		}
		if frozen > l.TotalHoldings(symbol) {
			return fmt.Errorf("ledger invariant: frozen_positions[%s] = %d > holdings %d", symbol, frozen, l.TotalHoldings(symbol))
		}
	}
	return nil
}

// State is a deep, persistence-friendly snapshot of a Ledger, used by
// internal/persist to round-trip account state across restarts.
type State struct {
	InitialCash     money.Money
	Cash            money.Money
	FrozenCash      money.Money
	Positions       map[types.Symbol][]types.Lot
	FrozenPositions map[types.Symbol]int
	TodayProfit     money.Money
	LastTradingDay  time.Time
}

// ExportState returns a deep copy of the ledger's current state.
func (l *Ledger) ExportState() State {
	positions := make(map[types.Symbol][]types.Lot, len(l.positions))
	for symbol, lots := range l.positions {
		cp := make([]types.Lot, len(lots))
		copy(cp, lots)
		positions[symbol] = cp
	}
	frozenPositions := make(map[types.Symbol]int, len(l.frozenPositions))
	for symbol, qty := range l.frozenPositions {
		frozenPositions[symbol] = qty
	}
	return State{
		InitialCash:     l.initialCash,
		Cash:            l.cash,
		FrozenCash:      l.frozenCash,
		Positions:       positions,
		FrozenPositions: frozenPositions,
		TodayProfit:     l.todayProfit,
		LastTradingDay:  l.lastTradingDay,
	}
}

// ImportState replaces the ledger's state with a previously exported one.
func (l *Ledger) ImportState(s State) {
	l.initialCash = s.InitialCash
	l.cash = s.Cash
	l.frozenCash = s.FrozenCash
	l.positions = s.Positions
	l.frozenPositions = s.FrozenPositions
	l.todayProfit = s.TodayProfit
	l.lastTradingDay = s.LastTradingDay
	if l.positions == nil {
		l.positions = make(map[types.Symbol][]types.Lot)
	}
	if l.frozenPositions == nil {
		l.frozenPositions = make(map[types.Symbol]int)
	}
	if l.lastTradingDay.IsZero() {
		l.lastTradingDay = time.Now()
	}
}
