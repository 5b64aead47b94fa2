package marketdata

import (
	"context"
	"sync"
	"time"

	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// TTL is how long a cached last-price entry is served without calling the
// underlying source again. Limits are not cached: they change at most
// daily and are queried rarely.
const TTL = 1 * time.Second

type priceEntry struct {
	price   money.Money
	fetched time.Time
}

// Cache wraps a Source with a per-symbol TTL memoization of LastPrice, to
// throttle polling against a rate-limited or slow upstream.
type Cache struct {
	src Source

	mu      sync.Mutex
	entries map[types.Symbol]priceEntry
}

// NewCache wraps src with TTL-based last-price memoization.
func NewCache(src Source) *Cache {
	return &Cache{src: src, entries: make(map[types.Symbol]priceEntry)}
}

// LastPrice returns the cached price if it is younger than TTL; otherwise
// it fetches from the underlying source and refreshes the cache.
func (c *Cache) LastPrice(ctx context.Context, symbol types.Symbol) (money.Money, error) {
	c.mu.Lock()
	if e, ok := c.entries[symbol]; ok && time.Since(e.fetched) < TTL {
		c.mu.Unlock()
		return e.price, nil
	}
	c.mu.Unlock()

	price, err := c.src.LastPrice(ctx, symbol)
	if err != nil {
		return money.Zero, err
	}

	c.mu.Lock()
	c.entries[symbol] = priceEntry{price: price, fetched: time.Now()}
	c.mu.Unlock()
	return price, nil
}

// Limits passes straight through to the underlying source — daily price
// bands are not cached.
func (c *Cache) Limits(ctx context.Context, symbol types.Symbol) (upper, lower money.Money, err error) {
	return c.src.Limits(ctx, symbol)
}
