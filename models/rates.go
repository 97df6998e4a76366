package models

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/dupire/interpolation"
)

// RateFunc maps a time in years to a continuously compounded rate or yield.
// It must be defined for every time the calculator samples; NaN marks a time
// where it is not.
type RateFunc func(t float64) float64

func ConstantRate(r float64) RateFunc {
	return func(float64) float64 { return r }
}

// CurveRate interpolates a rate term structure. The interpolator has to
// extrapolate on both sides so the result is total. Extrapolators are tried
// on both sides up front; one that still fails later yields NaN, never a
// silent zero.
func CurveRate(times, rates []float64, interpolator interpolation.CombinedInterpolatorExtrapolator) (RateFunc, error) {
	if interpolator.Left == interpolation.NoExtrapolator || interpolator.Right == interpolation.NoExtrapolator {
		return nil, fmt.Errorf("%w: rate curve must extrapolate on both sides", interpolation.ErrInvalidArgument)
	}
	curve, err := interpolator.Bind(times, rates)
	if err != nil {
		return nil, err
	}
	lo, hi := times[0], times[0]
	for _, t := range times {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	for _, t := range []float64{lo - 1, hi + 1} {
		if _, err := curve.Value(t); err != nil {
			return nil, fmt.Errorf("rate curve at t=%v: %w", t, err)
		}
	}
	return func(t float64) float64 {
		r, err := curve.Value(t)
		if err != nil {
			return math.NaN()
		}
		return r
	}, nil
}
