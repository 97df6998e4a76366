package interpolation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned for malformed inputs: mismatched lengths,
// duplicate nodes, unknown names, or points a strategy refuses to extrapolate to.
var ErrInvalidArgument = errors.New("invalid argument")

// Interpolator1D fits a curve through a set of sorted nodes. The fitted
// curve must be linear in the y-values, so that its value is the dot product
// of ParameterSensitivity with the y-values. Extrapolators are held to the same rule.
type Interpolator1D interface {
	Name() string
	Bind(xs, ys []float64) (BoundInterpolator1D, error)
}

// BoundInterpolator1D is an interpolator fitted to one set of nodes.
// Interpolate and FirstDerivative accept points outside the node range and
// extend the boundary pieces there.
type BoundInterpolator1D interface {
	XValues() []float64
	YValues() []float64
	Interpolate(x float64) float64
	FirstDerivative(x float64) float64
	// ParameterSensitivity returns dInterpolate(x)/dy_i for every node.
	ParameterSensitivity(x float64) []float64
	// FirstDerivativeParameterSensitivity returns dFirstDerivative(x)/dy_i.
	FirstDerivativeParameterSensitivity(x float64) []float64
}

// Extrapolator1D evaluates a bound interpolator outside its node range.
type Extrapolator1D interface {
	Name() string
	Extrapolate(b BoundInterpolator1D, x float64) (float64, error)
	ParameterSensitivity(b BoundInterpolator1D, x float64) ([]float64, error)
}

var (
	NaturalSpline Interpolator1D = naturalSplineInterpolator{}
	Linear        Interpolator1D = linearInterpolator{}

	InterpolatorExtrapolator Extrapolator1D = interpolatorExtrapolator{}
	FlatExtrapolator         Extrapolator1D = flatExtrapolator{}
	LinearExtrapolator       Extrapolator1D = linearExtrapolator{}
	NoExtrapolator           Extrapolator1D = noExtrapolator{}
)

var interpolators = map[string]Interpolator1D{
	NaturalSpline.Name(): NaturalSpline,
	Linear.Name():        Linear,
}

var extrapolators = map[string]Extrapolator1D{
	InterpolatorExtrapolator.Name(): InterpolatorExtrapolator,
	FlatExtrapolator.Name():         FlatExtrapolator,
	LinearExtrapolator.Name():       LinearExtrapolator,
	NoExtrapolator.Name():           NoExtrapolator,
}

func InterpolatorByName(name string) (Interpolator1D, error) {
	i, ok := interpolators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interpolator %q", ErrInvalidArgument, name)
	}
	return i, nil
}

func ExtrapolatorByName(name string) (Extrapolator1D, error) {
	e, ok := extrapolators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown extrapolator %q", ErrInvalidArgument, name)
	}
	return e, nil
}

func checkNodes(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d x-values but %d y-values", ErrInvalidArgument, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidArgument)
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: x-values must be strictly increasing, got %v after %v", ErrInvalidArgument, xs[i], xs[i-1])
		}
	}
	return nil
}

// segment returns the index i of the piece [xs[i], xs[i+1]] used at x,
// clamped to the first and last pieces outside the node range.
func segment(xs []float64, x float64) int {
	n := len(xs)
	if n < 2 || x < xs[1] {
		return 0
	}
	if x >= xs[n-2] {
		return n - 2
	}
	lo, hi := 1, n-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func unit(n, i int) []float64 {
	v := make([]float64, n)
	v[i] = 1
	return v
}
