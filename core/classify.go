package core

import (
	"fmt"
	"math"

	"github.com/ltin1214/dcurves/schema"
)

// classifier turns one predictor's scores into would-act labels at any
// threshold. Scores are normalized once at construction and cached for reuse
// across the whole grid; subjects with missing (NaN) scores are dropped for
// this predictor only, with index mapping rows back to the cohort.
type classifier struct {
	name   string
	kind   schema.ScoreKind
	scores []float64 // normalized to [0,1], one per retained subject
	index  []int     // cohort row for each retained subject
}

// newClassifier validates and normalizes a predictor against a cohort of n
// subjects. All predictor-kind failures are reported here, before any
// threshold is evaluated.
func newClassifier(p schema.Predictor, n int) (*classifier, error) {
	if len(p.Scores) != n {
		return nil, fmt.Errorf("%w: predictor %q has %d scores for %d subjects",
			ErrMismatchedLength, p.Name, len(p.Scores), n)
	}

	c := &classifier{name: p.Name, kind: p.Kind}
	for i, v := range p.Scores {
		if math.IsNaN(v) {
			continue
		}
		c.scores = append(c.scores, v)
		c.index = append(c.index, i)
	}
	if len(c.scores) == 0 {
		return nil, fmt.Errorf("%w: predictor %q has no observed scores", ErrDegenerateScore, p.Name)
	}

	switch p.Kind {
	case schema.ProbabilityKind:
		for _, v := range c.scores {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("%w: predictor %q has probability %g outside [0,1]",
					ErrInvalidPredictorKind, p.Name, v)
			}
		}

	case schema.IndicatorKind:
		for _, v := range c.scores {
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("%w: predictor %q has indicator value %g outside {0,1}",
					ErrInvalidPredictorKind, p.Name, v)
			}
		}

	case schema.RawKind:
		lo, hi := c.scores[0], c.scores[0]
		for _, v := range c.scores {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi == lo {
			return nil, fmt.Errorf("%w: predictor %q is constant at %g, rescaling is undefined",
				ErrDegenerateScore, p.Name, lo)
		}
		for i, v := range c.scores {
			c.scores[i] = (v - lo) / (hi - lo)
		}

	default:
		return nil, fmt.Errorf("%w: predictor %q has unknown kind %q",
			ErrInvalidPredictorKind, p.Name, p.Kind)
	}

	return c, nil
}

// n returns the number of subjects retained for this predictor.
func (c *classifier) n() int {
	return len(c.scores)
}

// wouldAct labels each retained subject at threshold pt. Binary indicators
// classify by the indicator itself at every threshold: the labels never
// change across the grid, only the odds weighting of the benefit does.
func (c *classifier) wouldAct(pt float64) []bool {
	act := make([]bool, len(c.scores))
	if c.kind == schema.IndicatorKind {
		for i, v := range c.scores {
			act[i] = v == 1
		}
		return act
	}
	for i, v := range c.scores {
		act[i] = v >= pt
	}
	return act
}
