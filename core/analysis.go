package core

import (
	"fmt"
	"sync"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
)

// strategyRun pairs a validated predictor with the estimator over its
// retained subject subset.
type strategyRun struct {
	name string
	cls  *classifier
	est  estimator
	harm float64
}

// Run sweeps every strategy across the threshold grid and returns the frozen
// decision curve table. Predictor-scoped failures skip that predictor and
// land in Skipped; regime-scoped failures abort the run.
func Run(cfg *contract.Config, coh *schema.Cohort) (*schema.AnalysisResult, error) {
	grid, err := newThresholdGrid(cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	factory, err := newEstimatorFactory(cfg, coh)
	if err != nil {
		return nil, err
	}

	// The treat-all reference is the full-cohort estimator with everyone
	// acting. No estimator's rates depend on the threshold, only the odds
	// weighting downstream does, so one estimate covers the whole grid.
	fullEst, err := factory(identityIndex(coh.N))
	if err != nil {
		return nil, err
	}
	refAll := treatAllEstimate(fullEst, coh.N)

	runs, skipped := buildStrategyRuns(cfg, coh, factory)

	strategies := make([]string, 0, len(runs)+2)
	strategies = append(strategies, schema.TreatAllStrategy, schema.TreatNoneStrategy)
	for _, r := range runs {
		strategies = append(strategies, r.name)
	}
	agg := newAggregator(grid, strategies)

	// Reference strategy rows are cheap; fill them before fanning out.
	for t, pt := range grid {
		nbAll := netBenefit(refAll, pt, 0)
		agg.put(0, t, schema.ResultRow{
			Strategy:       schema.TreatAllStrategy,
			Threshold:      pt,
			N:              coh.N,
			TPRate:         refAll.tpRate,
			FPRate:         refAll.fpRate,
			TruePositives:  refAll.tpRate * float64(coh.N),
			FalsePositives: refAll.fpRate * float64(coh.N),
			NetBenefit:     nbAll,
			LowConfidence:  refAll.lowConfidence,
		})
		agg.put(1, t, schema.ResultRow{
			Strategy:               schema.TreatNoneStrategy,
			Threshold:              pt,
			N:                      coh.N,
			NetInterventionAvoided: netInterventionAvoided(0, nbAll, pt),
		})
	}

	type unit struct {
		run       int
		threshold int
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}

	units := make(chan unit)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for u := range units {
				r := runs[u.run]
				pt := grid[u.threshold]
				est := r.est.estimate(r.cls.wouldAct(pt), pt)
				nb := netBenefit(est, pt, r.harm)
				nbAll := netBenefit(refAll, pt, 0)
				n := float64(r.cls.n())
				agg.put(2+u.run, u.threshold, schema.ResultRow{
					Strategy:               r.name,
					Threshold:              pt,
					N:                      r.cls.n(),
					TPRate:                 est.tpRate,
					FPRate:                 est.fpRate,
					TruePositives:          est.tpRate * n,
					FalsePositives:         est.fpRate * n,
					Harm:                   r.harm,
					NetBenefit:             nb,
					NetInterventionAvoided: netInterventionAvoided(nb, nbAll, pt),
					LowConfidence:          est.lowConfidence,
				})
			}
		})
	}
	for i := range runs {
		for t := range grid {
			units <- unit{run: i, threshold: t}
		}
	}
	close(units)
	wg.Wait()

	if cfg.Smooth {
		span := cfg.Span
		if span <= 0 || span > 1 {
			span = contract.DefaultSpan
		}
		minPoints := cfg.SmoothMinPoints
		if minPoints <= 0 {
			minPoints = contract.DefaultSmoothMinPoints
		}
		agg.annotate(span, minPoints)
	}

	return &schema.AnalysisResult{Table: agg.freeze(), Skipped: skipped}, nil
}

// buildStrategyRuns validates each predictor and constructs its subgroup
// estimator. Failures here are isolated per predictor: the offender is
// skipped with a warning and the rest of the run proceeds.
func buildStrategyRuns(cfg *contract.Config, coh *schema.Cohort, factory estimatorFactory) ([]strategyRun, []schema.PredictorFailure) {
	var runs []strategyRun
	var skipped []schema.PredictorFailure
	for _, p := range coh.Predictors {
		cls, err := newClassifier(p, coh.N)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("skipping predictor %s", p.Name), err)
			skipped = append(skipped, schema.PredictorFailure{Name: p.Name, Err: err})
			continue
		}
		est, err := factory(cls.index)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("skipping predictor %s", p.Name), err)
			skipped = append(skipped, schema.PredictorFailure{Name: p.Name, Err: err})
			continue
		}
		runs = append(runs, strategyRun{
			name: p.Name,
			cls:  cls,
			est:  est,
			harm: cfg.HarmFor(p.Name),
		})
	}
	return runs, skipped
}
