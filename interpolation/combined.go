package interpolation

import (
	"fmt"
	"sort"
)

// CombinedInterpolatorExtrapolator pairs an interpolator with the
// extrapolators used to the left and right of the node range.
type CombinedInterpolatorExtrapolator struct {
	Interpolator Interpolator1D
	Left         Extrapolator1D
	Right        Extrapolator1D
}

func NewCombinedInterpolatorExtrapolator(interpolator Interpolator1D, left, right Extrapolator1D) CombinedInterpolatorExtrapolator {
	return CombinedInterpolatorExtrapolator{
		Interpolator: interpolator,
		Left:         left,
		Right:        right,
	}
}

func (c CombinedInterpolatorExtrapolator) String() string {
	return fmt.Sprintf("%s[%s,%s]", c.Interpolator.Name(), c.Left.Name(), c.Right.Name())
}

// Bind fits the interpolator to the nodes, which may be given in any order.
// Sensitivities returned by the curve follow the order of the inputs.
func (c CombinedInterpolatorExtrapolator) Bind(xs, ys []float64) (*Curve, error) {
	if c.Interpolator == nil || c.Left == nil || c.Right == nil {
		return nil, fmt.Errorf("%w: incomplete interpolator %+v", ErrInvalidArgument, c)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x-values but %d y-values", ErrInvalidArgument, len(xs), len(ys))
	}
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return xs[order[i]] < xs[order[j]]
	})
	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	for i, o := range order {
		sx[i] = xs[o]
		sy[i] = ys[o]
	}
	bound, err := c.Interpolator.Bind(sx, sy)
	if err != nil {
		return nil, err
	}
	return &Curve{
		bound: bound,
		left:  c.Left,
		right: c.Right,
		order: order,
	}, nil
}

// Curve is a fitted one-dimensional curve.
type Curve struct {
	bound BoundInterpolator1D
	left  Extrapolator1D
	right Extrapolator1D
	order []int
}

func (c *Curve) Value(x float64) (float64, error) {
	xs := c.bound.XValues()
	switch {
	case x < xs[0]:
		return c.left.Extrapolate(c.bound, x)
	case x > xs[len(xs)-1]:
		return c.right.Extrapolate(c.bound, x)
	}
	return c.bound.Interpolate(x), nil
}

// ParameterSensitivity returns dValue(x)/dy_i in the original node order.
func (c *Curve) ParameterSensitivity(x float64) ([]float64, error) {
	xs := c.bound.XValues()
	var sorted []float64
	var err error
	switch {
	case x < xs[0]:
		sorted, err = c.left.ParameterSensitivity(c.bound, x)
	case x > xs[len(xs)-1]:
		sorted, err = c.right.ParameterSensitivity(c.bound, x)
	default:
		sorted = c.bound.ParameterSensitivity(x)
	}
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(sorted))
	for i, o := range c.order {
		out[o] = sorted[i]
	}
	return out, nil
}
