package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ashare-paper/internal/apierr"
	"ashare-paper/pkg/money"
	"ashare-paper/pkg/types"
)

// eastmoneyToken is the public ut= token used by the reference endpoint's
// unauthenticated quote API.
const eastmoneyToken = "fa5fd1943c7b386f172d6893dbfba10b"

// EastmoneyClient is the reference MarketDataSource adapter, targeting
// https://push2.eastmoney.com/api/qt/stock/get. It wraps a resty.Client
// configured for bounded timeout and retry-on-5xx, same shape as the
// exchange REST client it's adapted from.
type EastmoneyClient struct {
	http *resty.Client
}

// NewEastmoneyClient builds an adapter against the given base URL (pass
// "" to use the default production endpoint) and request timeout (pass 0
// to use a 5s default).
func NewEastmoneyClient(baseURL string, timeout time.Duration) *EastmoneyClient {
	if baseURL == "" {
		baseURL = "https://push2.eastmoney.com/api/qt/stock/get"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	return &EastmoneyClient{http: httpClient.SetBaseURL(baseURL)}
}

type quoteResponse struct {
	RC   int `json:"rc"`
	Data struct {
		F43   *int64 `json:"f43"` // last price, scaled by 10^f59
		F51   *int64 `json:"f51"` // upper limit
		F52   *int64 `json:"f52"` // lower limit
		F59   *int   `json:"f59"` // decimal scale
	} `json:"data"`
}

func secID(symbol types.Symbol) (string, error) {
	market, ok := symbol.MarketCode()
	if !ok {
		return "", apierr.New(apierr.BadInput, "bad symbol")
	}
	return fmt.Sprintf("%d.%s", market, symbol.Ticker()), nil
}

func scale(raw int64, decimalScale *int) money.Money {
	v := money.NewFromInt(raw)
	if decimalScale == nil || *decimalScale == 0 || *decimalScale == -1 {
		return v
	}
	divisor := money.NewFromInt(1)
	ten := money.NewFromInt(10)
	for i := 0; i < *decimalScale; i++ {
		divisor = divisor.Mul(ten)
	}
	return v.Div(divisor)
}

func (c *EastmoneyClient) fetch(ctx context.Context, symbol types.Symbol, fields string) (*quoteResponse, error) {
	sec, err := secID(symbol)
	if err != nil {
		return nil, err
	}

	var out quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"invt":   "2",
			"fltt":   "1",
			"fields": fields,
			"secid":  sec,
			"ut":     eastmoneyToken,
			"_":      fmt.Sprintf("%d", time.Now().UnixMilli()),
		}).
		SetResult(&out).
		Get("")
	if err != nil {
		return nil, apierr.Wrap(apierr.MarketDataUnavailable, "eastmoney request failed", err)
	}
	if resp.IsError() {
		return nil, apierr.New(apierr.MarketDataUnavailable, fmt.Sprintf("eastmoney status %d", resp.StatusCode()))
	}
	if out.RC != 0 {
		return nil, apierr.New(apierr.MarketDataUnavailable, "eastmoney rc != 0")
	}
	return &out, nil
}

// LastPrice implements Source.
func (c *EastmoneyClient) LastPrice(ctx context.Context, symbol types.Symbol) (money.Money, error) {
	q, err := c.fetch(ctx, symbol, "f43,f59")
	if err != nil {
		return money.Zero, err
	}
	if q.Data.F43 == nil {
		return money.Zero, apierr.New(apierr.MarketDataUnavailable, "no last price field")
	}
	return scale(*q.Data.F43, q.Data.F59), nil
}

// Limits implements Source.
func (c *EastmoneyClient) Limits(ctx context.Context, symbol types.Symbol) (upper, lower money.Money, err error) {
	q, err := c.fetch(ctx, symbol, "f51,f52,f59")
	if err != nil {
		return money.Zero, money.Zero, err
	}
	if q.Data.F51 == nil || q.Data.F52 == nil {
		return money.Zero, money.Zero, apierr.New(apierr.MarketDataUnavailable, "no limit-price fields")
	}
	return scale(*q.Data.F51, q.Data.F59), scale(*q.Data.F52, q.Data.F59), nil
}
