package core

import "fmt"

// caseControlEstimator reweights sample counts by an external prevalence.
// The sample's case fraction reflects the sampling design, not the
// population, so sensitivity and the false positive rate are estimated
// within cases and controls separately and rescaled to population units.
type caseControlEstimator struct {
	cases      []bool
	prevalence float64
	nCases     int
	nControls  int
}

func newCaseControlEstimator(cases []bool, prevalence float64) (*caseControlEstimator, error) {
	e := &caseControlEstimator{cases: cases, prevalence: prevalence}
	for _, c := range cases {
		if c {
			e.nCases++
		} else {
			e.nControls++
		}
	}
	if e.nCases == 0 || e.nControls == 0 {
		return nil, fmt.Errorf("case-control sample needs both cases and controls (%d cases, %d controls)",
			e.nCases, e.nControls)
	}
	return e, nil
}

func (e *caseControlEstimator) estimate(act []bool, _ float64) estimate {
	var actCases, actControls float64
	for i, a := range act {
		if !a {
			continue
		}
		if e.cases[i] {
			actCases++
		} else {
			actControls++
		}
	}
	sensitivity := actCases / float64(e.nCases)
	falsePositiveRate := actControls / float64(e.nControls)
	return estimate{
		tpRate: sensitivity * e.prevalence,
		fpRate: falsePositiveRate * (1 - e.prevalence),
	}
}
