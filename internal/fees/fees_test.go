package fees

import (
	"testing"

	"ashare-paper/pkg/money"
)

func TestBuyFeeMatchesWorkedExample(t *testing.T) {
	t.Parallel()
	s := Schedule{}
	notional := money.New(10.00).MulInt(1000) // 10000.00
	got := s.BuyFee(notional)
	want := money.New(5.1) // 5.00 commission + 0.10 transfer
	if !got.Equal(want) {
		t.Errorf("BuyFee(10000) = %s, want %s", got, want)
	}
}

func TestCommissionFloor(t *testing.T) {
	t.Parallel()
	s := Schedule{}
	small := money.New(1000) // 1000*0.00025 = 0.25, below the 5.00 floor
	got := s.Commission(small)
	if !got.Equal(money.New(5)) {
		t.Errorf("Commission(1000) = %s, want 5", got)
	}
}

func TestSellFeeIncludesStampDuty(t *testing.T) {
	t.Parallel()
	s := Schedule{}
	notional := money.New(10000)
	buy := s.BuyFee(notional)
	sell := s.SellFee(notional)
	if !sell.GreaterThan(buy) {
		t.Errorf("SellFee(%s) should exceed BuyFee(%s) due to stamp duty", sell, buy)
	}
}

func TestFeeMonotonicity(t *testing.T) {
	t.Parallel()
	s := Schedule{}
	a, b := money.New(5000), money.New(10000)
	if s.BuyFee(a).GreaterThan(s.BuyFee(b)) {
		t.Error("BuyFee should be non-decreasing in notional")
	}
	if s.SellFee(a).GreaterThan(s.SellFee(b)) {
		t.Error("SellFee should be non-decreasing in notional")
	}
}
