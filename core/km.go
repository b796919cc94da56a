package core

import (
	"fmt"
	"sort"
)

// cumulativeIncidence estimates the probability of the event of interest by
// time t from right-censored follow-up. Without competing risks this is the
// Kaplan-Meier complement 1-S(t); with competing risks it is the
// Aalen-Johansen estimator, which increments by S(t_i-)*d1_i/n_i at each
// event time so that subjects removed by a competing event stop contributing
// risk instead of being treated as censored.
//
// When t exceeds the last observed follow-up time the estimate is carried
// forward from the last step and flagged low-confidence.
func cumulativeIncidence(times []float64, events []int, t float64, competing bool) (cif float64, lowConfidence bool) {
	if len(times) == 0 {
		return 0, true
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	atRisk := float64(len(times))
	survival := 1.0 // overall event-free probability, any event type

	i := 0
	for i < len(order) {
		ti := times[order[i]]
		if ti > t {
			break
		}

		// Tally everything tied at this time before updating the curves.
		var interest, anyEvent, censored float64
		for i < len(order) && times[order[i]] == ti {
			ev := events[order[i]]
			switch {
			case ev == 0:
				censored++
			case !competing || ev == 1:
				interest++
				anyEvent++
			default:
				anyEvent++
			}
			i++
		}

		cif += survival * interest / atRisk
		survival *= 1 - anyEvent/atRisk
		atRisk -= anyEvent + censored
	}

	return cif, t > times[order[len(order)-1]]
}

// validateTimeHorizon rejects a horizon the follow-up cannot support: a
// nonpositive value, or one past the maximum observed time with fewer than
// minAtRisk subjects still under observation.
func validateTimeHorizon(times []float64, horizon float64, minAtRisk int) error {
	if horizon <= 0 {
		return fmt.Errorf("%w: horizon %g must be positive", ErrInvalidTimeHorizon, horizon)
	}
	maxTime := 0.0
	atRisk := 0
	for _, ti := range times {
		if ti > maxTime {
			maxTime = ti
		}
		if ti >= horizon {
			atRisk++
		}
	}
	if horizon > maxTime && atRisk < minAtRisk {
		return fmt.Errorf("%w: horizon %g exceeds maximum observed follow-up %g with %d subjects at risk",
			ErrInvalidTimeHorizon, horizon, maxTime, atRisk)
	}
	return nil
}
