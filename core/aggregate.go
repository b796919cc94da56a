package core

import "github.com/ltin1214/dcurves/schema"

// aggregator collects rows for a fixed set of strategies over a fixed grid.
// The backing slice is pre-sized at construction and every (strategy,
// threshold) pair owns a distinct slot, so concurrent workers write without
// locking.
type aggregator struct {
	grid       []float64
	strategies []string
	rows       []schema.ResultRow
}

func newAggregator(grid []float64, strategies []string) *aggregator {
	return &aggregator{
		grid:       grid,
		strategies: strategies,
		rows:       make([]schema.ResultRow, len(strategies)*len(grid)),
	}
}

// put stores one row in its slot.
func (a *aggregator) put(strategyIdx, thresholdIdx int, row schema.ResultRow) {
	a.rows[strategyIdx*len(a.grid)+thresholdIdx] = row
}

// annotate runs the smoothing pass over each predictor's net benefit curve.
// The treat-all and treat-none references stay exact; smoothed values sit
// alongside the exact ones, never replacing them.
func (a *aggregator) annotate(span float64, minPoints int) {
	nb := make([]float64, len(a.grid))
	for s, name := range a.strategies {
		if schema.IsReferenceStrategy(name) {
			continue
		}
		base := s * len(a.grid)
		for i := range a.grid {
			nb[i] = a.rows[base+i].NetBenefit
		}
		smoothed := smoothCurve(a.grid, nb, span, minPoints)
		if smoothed == nil {
			continue
		}
		for i := range a.grid {
			a.rows[base+i].SmoothedNetBenefit = smoothed[i]
			a.rows[base+i].Smoothed = true
		}
	}
}

// freeze hands the rows to an immutable table. The aggregator must not be
// reused afterwards.
func (a *aggregator) freeze() *schema.ResultTable {
	rows := a.rows
	a.rows = nil
	return schema.NewResultTable(rows)
}
