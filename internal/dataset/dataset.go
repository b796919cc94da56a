// Package dataset loads subject tables from CSV files into cohorts.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
)

// Load reads the subject table at cfg.DataPath and assembles the cohort for
// the configured regime. The header row names the columns; every data row is
// one subject. Missing predictor scores (empty, NA, NaN) become NaN and drop
// the subject for that predictor only; missing outcome fields are an error
// because no estimator can absorb them.
func Load(cfg *contract.Config) (*schema.Cohort, error) {
	f, err := os.Open(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open subject table: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", cfg.DataPath, err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", cfg.DataPath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("subject table %s has no data rows", cfg.DataPath)
	}

	coh := &schema.Cohort{N: len(records)}
	if err := loadOutcome(cfg, coh, colIdx, records); err != nil {
		return nil, err
	}
	if err := loadPredictors(cfg, coh, colIdx, records); err != nil {
		return nil, err
	}
	return coh, nil
}

// loadOutcome fills the regime's outcome representation.
func loadOutcome(cfg *contract.Config, coh *schema.Cohort, colIdx map[string]int, records [][]string) error {
	switch cfg.Regime {
	case schema.BinaryRegime, schema.CaseControlRegime:
		idx, ok := colIdx[cfg.OutcomeCol]
		if !ok {
			return fmt.Errorf("outcome column %q not found in subject table", cfg.OutcomeCol)
		}
		coh.Outcome = make([]bool, len(records))
		for row, rec := range records {
			v, err := contract.ParseBoolString(strings.TrimSpace(rec[idx]))
			if err != nil {
				return fmt.Errorf("row %d: invalid outcome value %q: %w", row+1, rec[idx], err)
			}
			coh.Outcome[row] = v
		}

	case schema.SurvivalRegime:
		timeIdx, ok := colIdx[cfg.TimeCol]
		if !ok {
			return fmt.Errorf("time column %q not found in subject table", cfg.TimeCol)
		}
		eventIdx, ok := colIdx[cfg.EventCol]
		if !ok {
			return fmt.Errorf("event column %q not found in subject table", cfg.EventCol)
		}
		coh.Time = make([]float64, len(records))
		coh.Event = make([]int, len(records))
		for row, rec := range records {
			t, err := strconv.ParseFloat(strings.TrimSpace(rec[timeIdx]), 64)
			if err != nil || math.IsNaN(t) || t < 0 {
				return fmt.Errorf("row %d: invalid follow-up time %q", row+1, rec[timeIdx])
			}
			ev, err := strconv.Atoi(strings.TrimSpace(rec[eventIdx]))
			if err != nil || ev < 0 {
				return fmt.Errorf("row %d: invalid event level %q", row+1, rec[eventIdx])
			}
			coh.Time[row] = t
			coh.Event[row] = ev
		}

	default:
		return fmt.Errorf("unknown outcome regime %q", cfg.Regime)
	}
	return nil
}

// loadPredictors fills one predictor per configured column, in config order.
func loadPredictors(cfg *contract.Config, coh *schema.Cohort, colIdx map[string]int, records [][]string) error {
	coh.Predictors = make([]schema.Predictor, 0, len(cfg.Predictors))
	for _, name := range cfg.Predictors {
		idx, ok := colIdx[name]
		if !ok {
			return fmt.Errorf("predictor column %q not found in subject table", name)
		}
		scores := make([]float64, len(records))
		for row, rec := range records {
			v, err := parseScore(rec[idx])
			if err != nil {
				return fmt.Errorf("row %d: invalid score for %q: %w", row+1, name, err)
			}
			scores[row] = v
		}
		coh.Predictors = append(coh.Predictors, schema.Predictor{
			Name:   name,
			Kind:   cfg.KindFor(name),
			Scores: scores,
		})
	}
	return nil
}

// parseScore converts one cell to a score, mapping the usual missing-value
// spellings to NaN.
func parseScore(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
