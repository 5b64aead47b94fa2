package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ashare-paper/pkg/money"
)

func TestEastmoneyLastPriceScalesByDecimal(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rc":0,"data":{"f43":1023,"f59":2}}`))
	}))
	defer srv.Close()

	c := NewEastmoneyClient(srv.URL, 0)
	last, err := c.LastPrice(context.Background(), "sh600000")
	if err != nil {
		t.Fatalf("LastPrice: %v", err)
	}
	if !last.Equal(money.New(10.23)) {
		t.Errorf("LastPrice = %s, want 10.23", last)
	}
}

func TestEastmoneyLimitsScalesByDecimal(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rc":0,"data":{"f51":1100,"f52":900,"f59":2}}`))
	}))
	defer srv.Close()

	c := NewEastmoneyClient(srv.URL, 0)
	upper, lower, err := c.Limits(context.Background(), "sh600000")
	if err != nil {
		t.Fatalf("Limits: %v", err)
	}
	if !upper.Equal(money.New(11)) || !lower.Equal(money.New(9)) {
		t.Errorf("Limits = (%s, %s), want (11, 9)", upper, lower)
	}
}

func TestEastmoneyRCErrorIsMarketDataUnavailable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rc":-1,"data":{}}`))
	}))
	defer srv.Close()

	c := NewEastmoneyClient(srv.URL, 0)
	if _, err := c.LastPrice(context.Background(), "sh600000"); err == nil {
		t.Fatal("expected an error for a non-zero rc response")
	}
}

func TestEastmoneyBadSymbolRejectedBeforeRequest(t *testing.T) {
	t.Parallel()
	c := NewEastmoneyClient("http://localhost:0", 0)
	if _, err := c.LastPrice(context.Background(), "xx123456"); err == nil {
		t.Fatal("expected an error for a malformed symbol prefix")
	}
}
