package interpolation

import "fmt"

// interpolatorExtrapolator extends the boundary pieces of the interpolator.
type interpolatorExtrapolator struct{}

func (interpolatorExtrapolator) Name() string { return "interpolator" }

func (interpolatorExtrapolator) Extrapolate(b BoundInterpolator1D, x float64) (float64, error) {
	return b.Interpolate(x), nil
}

func (interpolatorExtrapolator) ParameterSensitivity(b BoundInterpolator1D, x float64) ([]float64, error) {
	return b.ParameterSensitivity(x), nil
}

// flatExtrapolator holds the nearest end value.
type flatExtrapolator struct{}

func (flatExtrapolator) Name() string { return "flat" }

func (flatExtrapolator) Extrapolate(b BoundInterpolator1D, x float64) (float64, error) {
	return b.YValues()[nearestEnd(b, x)], nil
}

func (flatExtrapolator) ParameterSensitivity(b BoundInterpolator1D, x float64) ([]float64, error) {
	return unit(len(b.XValues()), nearestEnd(b, x)), nil
}

// linearExtrapolator continues along the tangent at the nearest end node.
type linearExtrapolator struct{}

func (linearExtrapolator) Name() string { return "linear" }

func (linearExtrapolator) Extrapolate(b BoundInterpolator1D, x float64) (float64, error) {
	i := nearestEnd(b, x)
	x0 := b.XValues()[i]
	return b.YValues()[i] + b.FirstDerivative(x0)*(x-x0), nil
}

func (linearExtrapolator) ParameterSensitivity(b BoundInterpolator1D, x float64) ([]float64, error) {
	i := nearestEnd(b, x)
	x0 := b.XValues()[i]
	out := b.FirstDerivativeParameterSensitivity(x0)
	for j := range out {
		out[j] *= x - x0
	}
	out[i]++
	return out, nil
}

// noExtrapolator refuses every point outside the node range.
type noExtrapolator struct{}

func (noExtrapolator) Name() string { return "none" }

func (noExtrapolator) Extrapolate(b BoundInterpolator1D, x float64) (float64, error) {
	return 0, outOfRange(b, x)
}

func (noExtrapolator) ParameterSensitivity(b BoundInterpolator1D, x float64) ([]float64, error) {
	return nil, outOfRange(b, x)
}

func outOfRange(b BoundInterpolator1D, x float64) error {
	xs := b.XValues()
	return fmt.Errorf("%w: %v outside node range [%v, %v] and extrapolation is disabled", ErrInvalidArgument, x, xs[0], xs[len(xs)-1])
}

func nearestEnd(b BoundInterpolator1D, x float64) int {
	xs := b.XValues()
	if x < xs[0] {
		return 0
	}
	return len(xs) - 1
}
