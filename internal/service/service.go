// Package service is the trading facade: every public operation acquires
// a single service-wide mutex and performs one flattened call path into
// the ledger, order book, journal, and matching engine. There is no
// re-entrant locking anywhere below this layer, the same single-writer
// shape the teacher's engine uses to serialize strategy decisions.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ashare-paper/internal/apierr"
	"ashare-paper/internal/calendar"
	"ashare-paper/internal/fees"
	"ashare-paper/internal/journal"
	"ashare-paper/internal/ledger"
	"ashare-paper/internal/marketdata"
	"ashare-paper/internal/matching"
	"ashare-paper/internal/orderbook"
	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// Params carries the fixed, config-derived knobs the service needs at
// construction time.
type Params struct {
	LotSize  int
	TPlus    int
	OrderTTL time.Duration
}

// Service is the single entry point callers use to place, cancel, and
// inspect paper-trading activity.
type Service struct {
	mu sync.Mutex

	params Params
	cal    *calendar.Calendar
	fees   fees.Schedule
	prices marketdata.Source

	led     *ledger.Ledger
	book    *orderbook.Book
	journal *journal.Journal
	engine  *matching.Engine
	store   Store
}

// Store is the minimal persistence surface the service needs for its own
// Save/Load convenience methods. internal/persist.Persistor satisfies it;
// kept as a local interface so this package doesn't need to import persist.
type Store interface {
	Save() error
	Load() error
}

// New wires a Service from already-constructed collaborators.
func New(params Params, cal *calendar.Calendar, prices marketdata.Source, led *ledger.Ledger, book *orderbook.Book, jrnl *journal.Journal, engine *matching.Engine) *Service {
	return &Service{
		params:  params,
		cal:     cal,
		prices:  prices,
		led:     led,
		book:    book,
		journal: jrnl,
		engine:  engine,
	}
}

// Mutex exposes the service's own lock so the background matching loop can
// serialize against Buy/Sell/CancelOrder under the exact same mutex instead
// of a second, independently-held one.
func (s *Service) Mutex() *sync.Mutex {
	return &s.mu
}

// AttachStore wires the snapshot store used by Save and Load. Optional —
// a service with no store attached returns apierr.NotFound from both.
func (s *Service) AttachStore(store Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// Save writes an account snapshot through the attached store. Safe to call
// from outside the matching loop; it takes the same lock Buy/Sell/Cancel do
// so the snapshot never observes half-applied state.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return apierr.New(apierr.NotFound, "no snapshot store attached")
	}
	return s.store.Save()
}

// Load restores an account snapshot through the attached store, replacing
// the ledger, order book, and journal state in place.
func (s *Service) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return apierr.New(apierr.NotFound, "no snapshot store attached")
	}
	return s.store.Load()
}

// PositionDetail reports one held symbol's current state for the account report.
type PositionDetail struct {
	Symbol        types.Symbol `json:"symbol"`
	Quantity      int          `json:"quantity"`
	AvailableQty  int          `json:"available_quantity"`
	AvgCostPrice  money.Money  `json:"avg_cost_price"`
	LastPrice     money.Money  `json:"last_price"`
	MarketValue   money.Money  `json:"market_value"`
	UnrealizedPnL money.Money  `json:"unrealized_pnl"`
	EarliestBuyDate time.Time  `json:"earliest_buy_date"`
}

// Report is the account-level summary surfaced to callers and the
// read-only dashboard.
type Report struct {
	Cash          money.Money       `json:"cash"`
	FrozenCash    money.Money       `json:"frozen_cash"`
	AvailableCash money.Money       `json:"available_cash"`
	StockValue    money.Money       `json:"stock_value"`
	TotalAssets   money.Money       `json:"total_assets"`
	TotalProfit   money.Money       `json:"total_profit"`
	Positions     []PositionDetail  `json:"positions"`
}

// Buy places a BUY order. In a continuous or call-auction session it
// attempts an immediate match before returning; outside those phases
// (pre-open) it simply queues.
func (s *Service) Buy(ctx context.Context, symbol types.Symbol, limitPrice money.Money, qty int, now time.Time) (*types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateOrderShape(symbol, limitPrice, qty); err != nil {
		return nil, err
	}

	phase := s.cal.Phase(now)
	if !phase.PlacementAllowed() {
		return nil, apierr.New(apierr.SessionForbidden, fmt.Sprintf("orders cannot be placed during %s", phase))
	}

	if err := s.checkPriceLimits(ctx, types.Buy, symbol, limitPrice); err != nil {
		return nil, err
	}

	notional := limitPrice.MulInt(qty)
	fee := s.fees.BuyFee(notional)
	frozen := notional.Add(fee)
	if s.led.AvailableCash().LessThan(frozen) {
		return nil, apierr.New(apierr.InsufficientFunds, fmt.Sprintf("need %s available cash, have %s", frozen, s.led.AvailableCash()))
	}

	order := s.newOrder(types.Buy, symbol, limitPrice, qty, now)
	s.led.FreezeCash(frozen)
	s.book.Add(order)

	if !phase.PreMarket() {
		s.engine.ProcessPending(ctx, now)
	}
	return order, nil
}

// Sell places a SELL order, enforcing the T+X settlement restriction and
// available-quantity check before queuing.
func (s *Service) Sell(ctx context.Context, symbol types.Symbol, limitPrice money.Money, qty int, now time.Time) (*types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateOrderShape(symbol, limitPrice, qty); err != nil {
		return nil, err
	}

	phase := s.cal.Phase(now)
	if !phase.PlacementAllowed() {
		return nil, apierr.New(apierr.SessionForbidden, fmt.Sprintf("orders cannot be placed during %s", phase))
	}

	if err := s.checkPriceLimits(ctx, types.Sell, symbol, limitPrice); err != nil {
		return nil, err
	}

	if s.led.AvailableQty(symbol) < qty {
		return nil, apierr.New(apierr.InsufficientHolding, fmt.Sprintf("need %d available shares of %s, have %d", qty, symbol, s.led.AvailableQty(symbol)))
	}
	if !s.led.CanSell(symbol, now, s.params.TPlus) {
		return nil, apierr.New(apierr.TPlusRestriction, fmt.Sprintf("%s has lots that haven't cleared T+%d settlement", symbol, s.params.TPlus))
	}

	order := s.newOrder(types.Sell, symbol, limitPrice, qty, now)
	s.led.FreezeQty(symbol, qty)
	s.book.Add(order)

	if !phase.PreMarket() {
		s.engine.ProcessPending(ctx, now)
	}
	return order, nil
}

// CancelOrder cancels a still-pending order, releasing its reserved cash
// or quantity. Orders may only be canceled during a cancellable phase.
func (s *Service) CancelOrder(id types.OrderID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.book.Get(id)
	if order == nil {
		return apierr.New(apierr.NotFound, fmt.Sprintf("order %s not found", id))
	}
	if order.Status != types.Pending {
		return apierr.New(apierr.IllegalTransition, fmt.Sprintf("order %s is already %s", id, order.Status))
	}
	if !s.cal.Phase(now).Cancellable() {
		return apierr.New(apierr.SessionForbidden, "orders cannot be canceled in the current session phase")
	}

	s.engine.Release(order, types.Canceled)
	return nil
}

// ProcessPending runs one matching pass over the order book. Callers that
// embed the service without the background matching goroutine (e.g.
// single-step tests) drive the engine through this method instead.
func (s *Service) ProcessPending(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ProcessPending(ctx, now)
}

// Orders returns every order in the book, filled or not.
func (s *Service) Orders() []*types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.All()
}

// TradeHistory returns every recorded fill.
func (s *Service) TradeHistory() []types.Fill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Fills()
}

// EquityHistory returns the capped equity curve.
func (s *Service) EquityHistory() []types.EquitySample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Equity()
}

// AvailableCash is cash not reserved against a pending BUY.
func (s *Service) AvailableCash() money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led.AvailableCash()
}

// AvailableQty is shares of symbol not reserved against a pending SELL.
func (s *Service) AvailableQty(symbol types.Symbol) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led.AvailableQty(symbol)
}

// Report builds the full account summary: cash, frozen cash, per-symbol
// position detail (avg cost, mark-to-market value, unrealized PnL,
// earliest lot date), total assets, and total profit since inception.
func (s *Service) Report(ctx context.Context) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	stockValue := money.Zero
	var positions []PositionDetail
	for _, symbol := range s.led.Symbols() {
		lots := s.led.Lots(symbol)
		if len(lots) == 0 {
			continue
		}
		qty := s.led.TotalHoldings(symbol)
		totalCost := money.Zero
		earliest := lots[0].BuyDate
		for _, lot := range lots {
			totalCost = totalCost.Add(lot.CostPrice.MulInt(lot.Quantity))
			if lot.BuyDate.Before(earliest) {
				earliest = lot.BuyDate
			}
		}
		avgCost := totalCost.Div(money.NewFromInt(int64(qty)))

		last, err := s.prices.LastPrice(ctx, symbol)
		if err != nil {
			last = avgCost
		}
		marketValue := last.MulInt(qty)
		stockValue = stockValue.Add(marketValue)

		positions = append(positions, PositionDetail{
			Symbol:          symbol,
			Quantity:        qty,
			AvailableQty:    s.led.AvailableQty(symbol),
			AvgCostPrice:    avgCost,
			LastPrice:       last,
			MarketValue:     marketValue,
			UnrealizedPnL:   marketValue.Sub(totalCost),
			EarliestBuyDate: earliest,
		})
	}

	cash := s.led.Cash()
	totalAssets := cash.Add(stockValue)
	totalProfit := totalAssets.Sub(s.led.InitialCash())

	return Report{
		Cash:          cash,
		FrozenCash:    s.led.FrozenCash(),
		AvailableCash: s.led.AvailableCash(),
		StockValue:    stockValue,
		TotalAssets:   totalAssets,
		TotalProfit:   totalProfit,
		Positions:     positions,
	}
}

// TotalAssets is cash plus mark-to-market stock value.
func (s *Service) TotalAssets(ctx context.Context) money.Money {
	return s.Report(ctx).TotalAssets
}

// StockValue is the mark-to-market value of every held position.
func (s *Service) StockValue(ctx context.Context) money.Money {
	return s.Report(ctx).StockValue
}

// TotalProfit is total assets minus the account's initial cash.
func (s *Service) TotalProfit(ctx context.Context) money.Money {
	return s.Report(ctx).TotalProfit
}

func (s *Service) validateOrderShape(symbol types.Symbol, limitPrice money.Money, qty int) error {
	if !symbol.Valid() {
		return apierr.New(apierr.BadInput, fmt.Sprintf("invalid symbol %q", symbol))
	}
	if !limitPrice.IsPositive() {
		return apierr.New(apierr.BadInput, "limit price must be positive")
	}
	if qty <= 0 || qty%s.params.LotSize != 0 {
		return apierr.New(apierr.BadInput, fmt.Sprintf("quantity must be a positive multiple of %d lots", s.params.LotSize))
	}
	return nil
}

// checkPriceLimits rejects a BUY priced above the daily upper limit and a
// SELL priced below the daily lower limit. The opposite bound is not
// restrictive for that side: a BUY below the floor or a SELL above the
// ceiling is a legal order that simply queues until the market reaches it.
func (s *Service) checkPriceLimits(ctx context.Context, side types.Side, symbol types.Symbol, limitPrice money.Money) error {
	upper, lower, err := s.prices.Limits(ctx, symbol)
	if err != nil {
		return apierr.Wrap(apierr.MarketDataUnavailable, "fetching price limits", err)
	}
	switch side {
	case types.Buy:
		if limitPrice.GreaterThan(upper) {
			return apierr.New(apierr.LimitViolation, fmt.Sprintf("limit price %s above daily upper limit %s", limitPrice, upper))
		}
	case types.Sell:
		if limitPrice.LessThan(lower) {
			return apierr.New(apierr.LimitViolation, fmt.Sprintf("limit price %s below daily lower limit %s", limitPrice, lower))
		}
	}
	return nil
}

func (s *Service) newOrder(side types.Side, symbol types.Symbol, limitPrice money.Money, qty int, now time.Time) *types.Order {
	return &types.Order{
		ID:         types.OrderID(uuid.NewString()),
		Side:       side,
		Symbol:     symbol,
		LimitPrice: limitPrice,
		Quantity:   qty,
		Status:     types.Pending,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.params.OrderTTL),
	}
}
