// Package calendar classifies a timestamp into one of the exchange's
// session phases and answers whether a given date is a trading day.
//
// The holiday set itself is an external collaborator (spec.md treats it
// as out-of-core): callers supply a HolidaySource. StaticHolidaySource is
// the reference implementation, loaded from config.
package calendar

import "time"

// Phase is one of the exchange's disjoint session phases.
type Phase string

const (
	PreOpen           Phase = "pre_open"
	OpenCallNoCancel   Phase = "open_call_no_cancel"
	OpenCall           Phase = "open_call"
	ContinuousAM       Phase = "continuous_am"
	Break              Phase = "break"
	ContinuousPM       Phase = "continuous_pm"
	CloseCall          Phase = "close_call"
	PostMarket         Phase = "post_market"
	Closed             Phase = "closed"
	NonTrading         Phase = "non_trading"
)

// Cancellable reports whether a PENDING order may be canceled while the
// market is in this phase.
func (p Phase) Cancellable() bool {
	switch p {
	case PreOpen, ContinuousAM, ContinuousPM:
		return true
	default:
		return false
	}
}

// PreMarket reports whether p is one of the pre-open / call-auction phases.
func (p Phase) PreMarket() bool {
	switch p {
	case PreOpen, OpenCall, OpenCallNoCancel:
		return true
	default:
		return false
	}
}

// PlacementAllowed reports whether new orders may be placed while in p.
func (p Phase) PlacementAllowed() bool {
	return p != NonTrading && p != Closed
}

type window struct {
	phase            Phase
	startH, startM   int
	endH, endM       int
}

// windows is evaluated in order; the closed phase straddles midnight and
// is detected by its own wrap-around test, same as the source.
var windows = []window{
	{PreOpen, 9, 15, 9, 20},
	{OpenCallNoCancel, 9, 20, 9, 25},
	{OpenCall, 9, 25, 9, 30},
	{ContinuousAM, 9, 30, 11, 30},
	{Break, 11, 30, 13, 0},
	{ContinuousPM, 13, 0, 14, 57},
	{CloseCall, 14, 57, 15, 0},
	{PostMarket, 15, 0, 15, 30},
	{Closed, 15, 30, 9, 15},
}

// HolidaySource answers whether a given calendar date is a market holiday.
type HolidaySource interface {
	IsHoliday(date time.Time) bool
}

// StaticHolidaySource holds a fixed set of holiday dates (normalized to
// midnight UTC calendar dates), loaded once from config.
type StaticHolidaySource struct {
	dates map[string]struct{} // keyed by "2006-01-02"
}

// NewStaticHolidaySource builds a holiday set from a list of ISO dates
// ("2026-01-01"). Malformed entries are skipped.
func NewStaticHolidaySource(isoDates []string) *StaticHolidaySource {
	s := &StaticHolidaySource{dates: make(map[string]struct{}, len(isoDates))}
	for _, d := range isoDates {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			s.dates[t.Format("2006-01-02")] = struct{}{}
		}
	}
	return s
}

func (s *StaticHolidaySource) IsHoliday(date time.Time) bool {
	_, ok := s.dates[date.Format("2006-01-02")]
	return ok
}

// Calendar classifies timestamps into session phases using the exchange's
// local wall clock and a pluggable holiday source.
type Calendar struct {
	holidays HolidaySource
	loc      *time.Location
}

// New builds a Calendar. loc is the exchange's local time zone (e.g.
// Asia/Shanghai); pass nil to use the timestamp's own location.
func New(holidays HolidaySource, loc *time.Location) *Calendar {
	return &Calendar{holidays: holidays, loc: loc}
}

// IsTradingDay reports whether t's calendar date is a trading day: a
// weekday that is not in the holiday set.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	t = c.local(t)
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if c.holidays != nil && c.holidays.IsHoliday(t) {
		return false
	}
	return true
}

// Phase classifies t into exactly one session phase.
func (c *Calendar) Phase(t time.Time) Phase {
	t = c.local(t)
	if !c.IsTradingDay(t) {
		return NonTrading
	}

	hh, mm := t.Hour(), t.Minute()
	cur := hh*60 + mm

	for _, w := range windows {
		start := w.startH*60 + w.startM
		end := w.endH*60 + w.endM
		if start > end {
			// wraps midnight (the "closed" window)
			if cur >= start || cur < end {
				return w.phase
			}
			continue
		}
		if cur >= start && cur < end {
			return w.phase
		}
	}
	return Closed
}

func (c *Calendar) local(t time.Time) time.Time {
	if c.loc == nil {
		return t
	}
	return t.In(c.loc)
}
