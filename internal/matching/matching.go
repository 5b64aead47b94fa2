// Package matching runs the single-pass matching loop: it expires stale
// orders, enforces the session-phase guard, and fills pending orders once
// the polled last price crosses their limit — the fill itself always
// executes at the order's own limit price, never at the triggering last
// price.
package matching

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ashare-paper/internal/calendar"
	"ashare-paper/internal/fees"
	"ashare-paper/internal/journal"
	"ashare-paper/internal/ledger"
	"ashare-paper/internal/marketdata"
	"ashare-paper/internal/orderbook"
	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// Engine runs the matching loop over a shared order book, ledger, and
// journal. It does not lock anything itself — the caller (TradingService)
// serializes every call under its own mutex, the same single-writer shape
// the teacher uses for its strategy loop.
type Engine struct {
	book        *orderbook.Book
	led         *ledger.Ledger
	jrnl        *journal.Journal
	cal         *calendar.Calendar
	prices      marketdata.Source
	fees        fees.Schedule
	maxAttempts int
	logger      *slog.Logger
}

// New builds a matching Engine. maxAttempts is the number of unsuccessful
// match attempts a pending order tolerates before it is auto-canceled.
func New(book *orderbook.Book, led *ledger.Ledger, jrnl *journal.Journal, cal *calendar.Calendar, prices marketdata.Source, maxAttempts int, logger *slog.Logger) *Engine {
	return &Engine{
		book:        book,
		led:         led,
		jrnl:        jrnl,
		cal:         cal,
		prices:      prices,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "matching"),
	}
}

// Run starts the background matching loop, ticking every pollInterval
// until ctx is canceled. wg.Done is called on exit so the caller can wait
// for a clean shutdown alongside its other goroutines.
func (e *Engine) Run(ctx context.Context, pollInterval time.Duration, mu *sync.Mutex, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu.Lock()
			e.ProcessPending(ctx, time.Now())
			mu.Unlock()
		}
	}
}

// ProcessPending runs one synchronous matching pass: expire, guard, match.
// It's exported separately from Run so tests and manual ticking can drive
// the engine without a background goroutine.
func (e *Engine) ProcessPending(ctx context.Context, now time.Time) {
	phase := e.cal.Phase(now)

	for _, id := range e.book.PendingSnapshot() {
		order := e.book.Get(id)
		if order == nil {
			continue
		}

		if now.After(order.ExpiresAt) {
			e.Release(order, types.Expired)
			continue
		}

		if !phase.PlacementAllowed() || phase == calendar.Break {
			continue // no matching outside a tradeable session
		}

		filled, err := e.tryFill(ctx, order, now)
		if err != nil {
			e.logger.Warn("price lookup failed", "symbol", order.Symbol, "error", err)
			continue
		}
		if filled {
			continue
		}

		order.Attempts++
		if order.Attempts > e.maxAttempts {
			e.Release(order, types.Canceled)
		}
	}
}

// tryFill attempts to match order against the current last price. It
// reports whether the order filled.
func (e *Engine) tryFill(ctx context.Context, order *types.Order, now time.Time) (bool, error) {
	last, err := e.prices.LastPrice(ctx, order.Symbol)
	if err != nil {
		return false, err
	}

	switch order.Side {
	case types.Buy:
		if last.GreaterThan(order.LimitPrice) {
			return false, nil
		}
	case types.Sell:
		if last.LessThan(order.LimitPrice) {
			return false, nil
		}
	}

	e.execute(ctx, order, now)
	return true, nil
}

// execute applies the economic effect of a full fill, releases the
// order's original freeze, transitions it to Filled, and journals the
// resulting trade. Fills always execute at the order's own limit price,
// never at the polled last price that merely triggered the match.
func (e *Engine) execute(ctx context.Context, order *types.Order, now time.Time) {
	execPrice := order.LimitPrice
	switch order.Side {
	case types.Buy:
		e.led.UnfreezeCash(order.FrozenAmount(e.fees.BuyFee))
		notional := execPrice.MulInt(order.Quantity)
		fee := e.fees.BuyFee(notional)
		e.led.ApplyBuyFill(order.Symbol, execPrice, order.Quantity, fee, now)
		e.jrnl.RecordFill(types.Fill{
			OrderID:       order.ID,
			Side:          order.Side,
			Symbol:        order.Symbol,
			ExecutedPrice: execPrice,
			Quantity:      order.Quantity,
			GrossAmount:   notional,
			Commission:    fee,
			DateTime:      now,
		})
	case types.Sell:
		e.led.UnfreezeQty(order.Symbol, order.Quantity)
		res := e.led.ApplySellFill(order.Symbol, execPrice, order.Quantity)
		for i, sliceQty := range res.SliceQtys {
			e.jrnl.RecordFill(types.Fill{
				OrderID:        order.ID,
				Side:           order.Side,
				Symbol:         order.Symbol,
				ExecutedPrice:  execPrice,
				Quantity:       sliceQty,
				GrossAmount:    execPrice.MulInt(sliceQty),
				Commission:     res.SliceFees[i],
				RealizedProfit: res.SliceProfits[i],
				DateTime:       now,
			})
		}
		e.led.AccumulateTodayProfit(res.RealizedProfit)
	}

	if err := e.book.Transition(order.ID, types.Filled); err != nil {
		e.logger.Warn("order transition failed", "order", order.ID, "error", err)
	}
	e.recordEquity(ctx, now)
}

// Release reverses an order's original freeze and moves it to a terminal
// non-filled status (Expired or Canceled). Used both internally (expiry,
// attempt-exhaustion) and by the trading service for user-initiated cancel.
func (e *Engine) Release(order *types.Order, to types.Status) {
	switch order.Side {
	case types.Buy:
		e.led.UnfreezeCash(order.FrozenAmount(e.fees.BuyFee))
	case types.Sell:
		e.led.UnfreezeQty(order.Symbol, order.Quantity)
	}
	if err := e.book.Transition(order.ID, to); err != nil {
		e.logger.Warn("order transition failed", "order", order.ID, "error", err)
	}
}

// recordEquity appends an equity-curve sample computed from current cash
// plus the mark-to-market value of every held symbol. A symbol whose price
// can't be fetched is valued at its most recent lot cost instead, so a
// transient feed outage doesn't stall the curve.
func (e *Engine) recordEquity(ctx context.Context, now time.Time) {
	stockValue := money.Zero
	for _, symbol := range e.led.Symbols() {
		qty := e.led.TotalHoldings(symbol)
		if qty == 0 {
			continue
		}
		price, err := e.prices.LastPrice(ctx, symbol)
		if err != nil {
			lots := e.led.Lots(symbol)
			if len(lots) == 0 {
				continue
			}
			price = lots[len(lots)-1].CostPrice
		}
		stockValue = stockValue.Add(price.MulInt(qty))
	}

	cash := e.led.Cash()
	e.jrnl.RecordEquity(types.EquitySample{
		Timestamp:   now,
		TotalAssets: cash.Add(stockValue),
		Cash:        cash,
		StockValue:  stockValue,
	})
}
