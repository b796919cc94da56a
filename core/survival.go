package core

// survivalEstimator decomposes the would-act group's outcome rates through
// the cumulative incidence at the time horizon:
//
//	tpRate = P(act) * CIF_act(horizon)
//	fpRate = P(act) * (1 - CIF_act(horizon))
//
// where CIF_act is estimated within the would-act subgroup only. Censored
// subjects therefore contribute partial follow-up instead of being dropped
// or miscounted as event-free.
type survivalEstimator struct {
	times     []float64
	events    []int
	horizon   float64
	competing bool
}

func (e *survivalEstimator) estimate(act []bool, _ float64) estimate {
	n := len(act)
	actTimes := make([]float64, 0, n)
	actEvents := make([]int, 0, n)
	for i, a := range act {
		if a {
			actTimes = append(actTimes, e.times[i])
			actEvents = append(actEvents, e.events[i])
		}
	}
	if len(actTimes) == 0 {
		// Nobody acts at this threshold. Both rates are zero by definition
		// and no subgroup curve exists to extrapolate.
		return estimate{}
	}

	pAct := float64(len(actTimes)) / float64(n)
	cif, low := cumulativeIncidence(actTimes, actEvents, e.horizon, e.competing)
	return estimate{
		tpRate:        pAct * cif,
		fpRate:        pAct * (1 - cif),
		lowConfidence: low,
	}
}
