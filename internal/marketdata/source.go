// Package marketdata provides the abstract market price/limit contract and
// a short-TTL cache over it, plus a reference adapter targeting the
// Eastmoney public quote endpoint.
package marketdata

import (
	"context"

	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// Source is the abstract market-data contract. Implementations may be
// remote; callers must tolerate latency and transient failure.
type Source interface {
	// LastPrice returns the most recent traded price for symbol.
	LastPrice(ctx context.Context, symbol types.Symbol) (money.Money, error)
	// Limits returns the daily (upper, lower) price band for symbol.
	Limits(ctx context.Context, symbol types.Symbol) (upper, lower money.Money, err error)
}
