package core

// odds converts a threshold probability to the harm-to-benefit exchange rate
// pt/(1-pt). Grid validation keeps pt strictly inside (0,1).
func odds(pt float64) float64 {
	return pt / (1 - pt)
}

// netBenefit scores one strategy at one threshold in units of net true
// positives per subject. False positives are discounted by the threshold
// odds; harm is a flat cost of acting, so a strategy that acts on nobody
// incurs none and coincides with treat-none. Every estimator reports zero
// rates exactly when the would-act count is zero.
func netBenefit(est estimate, pt, harm float64) float64 {
	if est.tpRate == 0 && est.fpRate == 0 {
		harm = 0
	}
	return est.tpRate - est.fpRate*odds(pt) - harm
}

// netInterventionAvoided re-expresses a strategy's advantage over treat-all
// in units of interventions avoided per subject: how many unnecessary
// actions the strategy spares relative to intervening on everyone, at equal
// net benefit.
func netInterventionAvoided(nb, nbTreatAll, pt float64) float64 {
	return (nb - nbTreatAll) / odds(pt)
}

// treatAllEstimate is the everyone-acts reference at one threshold. For the
// binary and case-control regimes this reduces to prevalence and its
// complement; for survival it is the full-cohort cumulative incidence.
func treatAllEstimate(est estimator, n int) estimate {
	act := make([]bool, n)
	for i := range act {
		act[i] = true
	}
	// The threshold does not influence any estimator's rates, only the
	// downstream odds weighting, so one evaluation covers the whole grid.
	return est.estimate(act, 0)
}
