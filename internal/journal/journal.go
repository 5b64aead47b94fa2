// Package journal holds the append-only trade history and a bounded
// equity-curve sample log for one account.
package journal

import (
	"ashare-paper/pkg/types"
)

// maxEquitySamples bounds the in-memory equity curve the same way the
// teacher's dashboard snapshot caps its recent-fills ring.
const maxEquitySamples = 100

// Journal is not concurrency-safe on its own; the owning service
// serializes access under its single mutex.
type Journal struct {
	fills  []types.Fill
	equity []types.EquitySample
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{}
}

// RecordFill appends a fill to the trade history. History is unbounded;
// it's the book of record for realized profit and tax reporting.
func (j *Journal) RecordFill(f types.Fill) {
	j.fills = append(j.fills, f)
}

// Fills returns a copy of the full trade history.
func (j *Journal) Fills() []types.Fill {
	out := make([]types.Fill, len(j.fills))
	copy(out, j.fills)
	return out
}

// RecordEquity appends an equity-curve sample. If the newest existing
// sample shares the same timestamp as s, it's overwritten in place
// instead of appended, so repeated ticks within the same instant don't
// inflate the curve. The curve is capped at maxEquitySamples, dropping
// the oldest sample once full.
func (j *Journal) RecordEquity(s types.EquitySample) {
	if n := len(j.equity); n > 0 && j.equity[n-1].Timestamp.Equal(s.Timestamp) {
		j.equity[n-1] = s
		return
	}
	if len(j.equity) >= maxEquitySamples {
		j.equity = append(j.equity[1:], s)
		return
	}
	j.equity = append(j.equity, s)
}

// Equity returns a copy of the current equity curve, oldest first.
func (j *Journal) Equity() []types.EquitySample {
	out := make([]types.EquitySample, len(j.equity))
	copy(out, j.equity)
	return out
}

// LastEquity returns the most recent equity sample and whether one exists.
func (j *Journal) LastEquity() (types.EquitySample, bool) {
	if len(j.equity) == 0 {
		return types.EquitySample{}, false
	}
	return j.equity[len(j.equity)-1], true
}

// State is a persistence-friendly snapshot of a Journal.
type State struct {
	Fills  []types.Fill
	Equity []types.EquitySample
}

// ExportState returns a deep copy of the journal's fill history and
// equity curve.
func (j *Journal) ExportState() State {
	return State{Fills: j.Fills(), Equity: j.Equity()}
}

// ImportState replaces the journal's history with a previously exported one.
func (j *Journal) ImportState(s State) {
	j.fills = append([]types.Fill(nil), s.Fills...)
	j.equity = append([]types.EquitySample(nil), s.Equity...)
}
