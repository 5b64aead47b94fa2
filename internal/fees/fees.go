// Package fees computes commissions, stamp duty, and transfer fees for a
// trade notional, using bit-exact decimal fractions (spec.md §6).
package fees

import "ashare-paper/pkg/money"

var (
	commissionRate = money.New(0.00025)
	commissionFloor = money.New(5.00)
	transferRate    = money.New(0.00001)
	stampDutyRate   = money.New(0.001)
)

// Schedule computes the fee components for a notional amount A = price*qty.
// All fields are exact rationals of the notional; any rounding is deferred
// to display.
type Schedule struct{}

// Commission is max(A*0.00025, 5.00).
func (Schedule) Commission(notional money.Money) money.Money {
	return money.Max(notional.Mul(commissionRate), commissionFloor)
}

// Transfer is A*0.00001.
func (Schedule) Transfer(notional money.Money) money.Money {
	return notional.Mul(transferRate)
}

// StampDuty is A*0.001 (sell-side only).
func (Schedule) StampDuty(notional money.Money) money.Money {
	return notional.Mul(stampDutyRate)
}

// BuyFee is commission + transfer.
func (s Schedule) BuyFee(notional money.Money) money.Money {
	return s.Commission(notional).Add(s.Transfer(notional))
}

// SellFee is commission + transfer + stamp duty.
func (s Schedule) SellFee(notional money.Money) money.Money {
	return s.Commission(notional).Add(s.Transfer(notional)).Add(s.StampDuty(notional))
}
