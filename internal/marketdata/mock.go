package marketdata

import (
	"context"
	"sync"

	"ashare-paper/internal/apierr"
	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// quote is the per-symbol state a MockSource serves.
type quote struct {
	last  money.Money
	upper money.Money
	lower money.Money
}

// MockSource is an in-memory Source for tests and dry-run mode. Missing
// symbols return MarketDataUnavailable, mirroring a real feed that has
// never heard of a ticker.
type MockSource struct {
	mu     sync.RWMutex
	quotes map[types.Symbol]quote
}

// NewMockSource builds an empty mock feed.
func NewMockSource() *MockSource {
	return &MockSource{quotes: make(map[types.Symbol]quote)}
}

// Set configures the last price and daily limits served for symbol.
func (m *MockSource) Set(symbol types.Symbol, last, upper, lower money.Money) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = quote{last: last, upper: upper, lower: lower}
}

// SetLastPrice updates only the last price, leaving limits untouched.
func (m *MockSource) SetLastPrice(symbol types.Symbol, last money.Money) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.quotes[symbol]
	q.last = last
	m.quotes[symbol] = q
}

func (m *MockSource) LastPrice(_ context.Context, symbol types.Symbol) (money.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[symbol]
	if !ok {
		return money.Zero, apierr.New(apierr.MarketDataUnavailable, "unknown symbol")
	}
	return q.last, nil
}

func (m *MockSource) Limits(_ context.Context, symbol types.Symbol) (upper, lower money.Money, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[symbol]
	if !ok {
		return money.Zero, money.Zero, apierr.New(apierr.MarketDataUnavailable, "unknown symbol")
	}
	return q.upper, q.lower, nil
}
