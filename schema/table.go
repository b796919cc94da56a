package schema

// ResultTable is the frozen long-format decision curve table: one row per
// (strategy, threshold) pair, strategy-major then threshold-ascending, with
// the treat-all and treat-none reference strategies first. All accessors are
// read-only projections; rows are copied out so callers can never mutate the
// frozen table.
type ResultTable struct {
	rows []ResultRow
}

// NewResultTable freezes rows into a table. The table takes ownership of the
// slice; callers must not retain it.
func NewResultTable(rows []ResultRow) *ResultTable {
	return &ResultTable{rows: rows}
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	return len(t.rows)
}

// Rows returns a copy of every row in insertion order.
func (t *ResultTable) Rows() []ResultRow {
	out := make([]ResultRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Strategies returns the distinct strategy names in insertion order.
func (t *ResultTable) Strategies() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, r := range t.rows {
		if _, ok := seen[r.Strategy]; ok {
			continue
		}
		seen[r.Strategy] = struct{}{}
		names = append(names, r.Strategy)
	}
	return names
}

// Strategy returns the rows for a single strategy, threshold-ascending.
func (t *ResultTable) Strategy(name string) []ResultRow {
	var out []ResultRow
	for _, r := range t.rows {
		if r.Strategy == name {
			out = append(out, r)
		}
	}
	return out
}

// ThresholdRange restricts the table to thresholds in [lo, hi].
func (t *ResultTable) ThresholdRange(lo, hi float64) []ResultRow {
	var out []ResultRow
	for _, r := range t.rows {
		if r.Threshold >= lo && r.Threshold <= hi {
			out = append(out, r)
		}
	}
	return out
}

// InterventionsAvoidedPer re-expresses the table as net unnecessary
// interventions avoided per scale subjects. This is a projection over the
// same frozen rows, not a separate computation path.
func (t *ResultTable) InterventionsAvoidedPer(scale int) []InterventionRow {
	out := make([]InterventionRow, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, InterventionRow{
			Strategy:             r.Strategy,
			Threshold:            r.Threshold,
			InterventionsAvoided: r.NetInterventionAvoided * float64(scale),
			Scale:                scale,
		})
	}
	return out
}
