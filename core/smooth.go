package core

import "math"

// smoothCurve runs a lowess pass (locally weighted linear regression with
// tricube weights) over one strategy's net benefit curve. span is the
// fraction of points contributing to each local fit. The input is never
// modified; the caller stores the smoothed values alongside the exact ones.
//
// Curves with fewer than minPoints thresholds are returned nil: a local fit
// over one or two points is just the points again.
func smoothCurve(thresholds, values []float64, span float64, minPoints int) []float64 {
	n := len(values)
	if n < minPoints {
		return nil
	}

	window := int(math.Ceil(span * float64(n)))
	if window < 2 {
		window = 2
	}
	if window > n {
		window = n
	}

	smoothed := make([]float64, n)
	for i := range values {
		lo, hi := windowAround(thresholds, i, window)
		smoothed[i] = localLinearFit(thresholds, values, i, lo, hi)
	}
	return smoothed
}

// windowAround finds the contiguous window of the given size whose span of
// x-distances from point i is smallest.
func windowAround(x []float64, i, window int) (lo, hi int) {
	lo = i - window + 1
	if lo < 0 {
		lo = 0
	}
	hi = lo + window - 1
	for hi < len(x)-1 {
		// Slide right while the next point is closer than the current left edge.
		if x[i]-x[lo] > x[hi+1]-x[i] {
			lo++
			hi++
		} else {
			break
		}
	}
	return lo, hi
}

// localLinearFit evaluates a tricube-weighted least squares line over
// x[lo:hi+1] at x[i].
func localLinearFit(x, y []float64, i, lo, hi int) float64 {
	maxDist := math.Max(x[i]-x[lo], x[hi]-x[i])
	if maxDist == 0 {
		return y[i]
	}

	var sw, swx, swy, swxx, swxy float64
	for j := lo; j <= hi; j++ {
		d := math.Abs(x[j]-x[i]) / maxDist
		if d >= 1 {
			continue
		}
		u := 1 - d*d*d
		w := u * u * u
		sw += w
		swx += w * x[j]
		swy += w * y[j]
		swxx += w * x[j] * x[j]
		swxy += w * x[j] * y[j]
	}

	denom := sw*swxx - swx*swx
	if denom == 0 || sw == 0 {
		if sw == 0 {
			return y[i]
		}
		return swy / sw
	}
	slope := (sw*swxy - swx*swy) / denom
	intercept := (swy - slope*swx) / sw
	return intercept + slope*x[i]
}
