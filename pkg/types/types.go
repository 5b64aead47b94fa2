// Package types defines shared data structures used across all packages.
//
// This is the common vocabulary for the paper-trading engine — symbols,
// orders, lots, fills, and session phases. It has no dependency on any
// internal package, so it can be imported by every layer.
package types

import (
	"strings"
	"time"

	"ashare-paper/pkg/money"
)

// Side is the direction of an order: BUY or SELL.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Status is the lifecycle stage of an order. Orders are created Pending
// and transition exactly once to a terminal status.
type Status string

const (
	Pending  Status = "PENDING"
	Filled   Status = "FILLED"
	Canceled Status = "CANCELED"
	Expired  Status = "EXPIRED"
)

// Terminal reports whether s is a terminal (immutable) status.
func (s Status) Terminal() bool {
	return s == Filled || s == Canceled || s == Expired
}

// Symbol is an opaque ticker string. The leading two characters encode the
// exchange prefix ("sh" for market code 1, "sz" for market code 0); the
// remainder is the numeric ticker.
type Symbol string

// MarketCode returns the Eastmoney-style market code for the symbol's
// exchange prefix: 1 for sh*, 0 for sz*. ok is false for a malformed symbol.
func (s Symbol) MarketCode() (code int, ok bool) {
	str := string(s)
	if len(str) < 3 {
		return 0, false
	}
	switch strings.ToLower(str[:2]) {
	case "sh":
		return 1, true
	case "sz":
		return 0, true
	default:
		return 0, false
	}
}

// Ticker returns the numeric portion of the symbol, stripped of its
// exchange prefix.
func (s Symbol) Ticker() string {
	str := string(s)
	if len(str) < 3 {
		return ""
	}
	return str[2:]
}

// Valid reports whether s is well-formed: a recognized exchange prefix
// followed by a non-empty numeric ticker.
func (s Symbol) Valid() bool {
	_, ok := s.MarketCode()
	return ok && s.Ticker() != ""
}

// Lot is a single purchase record: quantity, cost basis, and buy date.
// Lots are kept per symbol in insertion order, which is also FIFO
// consumption order on sale.
type Lot struct {
	Quantity  int        `json:"quantity"`
	CostPrice money.Money `json:"cost_price"`
	BuyDate   time.Time  `json:"buy_date"` // truncated to a calendar date
}

// OrderID is a globally unique opaque token identifying one order.
type OrderID string

// Order is a single buy or sell instruction, pending until it fills,
// is canceled, or expires.
type Order struct {
	ID         OrderID     `json:"id"`
	Side       Side        `json:"side"`
	Symbol     Symbol      `json:"symbol"`
	LimitPrice money.Money `json:"limit_price"`
	Quantity   int         `json:"quantity"`
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Attempts   int         `json:"attempts"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// FrozenAmount returns the cash this order would freeze if it is a BUY,
// computed from the order's own fields (not a stored fee) so cancel/expire
// can always recompute the exact amount to release.
func (o Order) FrozenAmount(buyFee func(notional money.Money) money.Money) money.Money {
	notional := o.LimitPrice.MulInt(o.Quantity)
	return notional.Add(buyFee(notional))
}

// Fill is one realized execution, written to the trade journal. A single
// SELL order may produce multiple Fills (one per FIFO lot slice consumed).
type Fill struct {
	OrderID        OrderID     `json:"order_id"`
	Side           Side        `json:"side"`
	Symbol         Symbol      `json:"symbol"`
	ExecutedPrice  money.Money `json:"executed_price"`
	Quantity       int         `json:"quantity"`
	GrossAmount    money.Money `json:"gross_amount"`
	Commission     money.Money `json:"commission"`
	RealizedProfit money.Money `json:"realized_profit"` // zero for BUY
	DateTime       time.Time   `json:"datetime"`
}

// EquitySample is one point in the equity-curve time series.
type EquitySample struct {
	Timestamp   time.Time   `json:"timestamp"`
	TotalAssets money.Money `json:"total_assets"`
	Cash        money.Money `json:"cash"`
	StockValue  money.Money `json:"stock_value"`
}
