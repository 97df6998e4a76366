package interpolation

import (
	"gonum.org/v1/gonum/interp"
)

type linearInterpolator struct{}

func (linearInterpolator) Name() string { return "linear" }

func (linearInterpolator) Bind(xs, ys []float64) (BoundInterpolator1D, error) {
	if err := checkNodes(xs, ys); err != nil {
		return nil, err
	}
	l := &linear{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	if len(xs) > 1 {
		if err := l.pl.Fit(l.xs, l.ys); err != nil {
			return nil, err
		}
	}
	return l, nil
}

type linear struct {
	xs, ys []float64
	pl     interp.PiecewiseLinear
}

func (l *linear) XValues() []float64 { return l.xs }
func (l *linear) YValues() []float64 { return l.ys }

func (l *linear) Interpolate(x float64) float64 {
	n := len(l.xs)
	if n == 1 {
		return l.ys[0]
	}
	if x >= l.xs[0] && x <= l.xs[n-1] {
		return l.pl.Predict(x)
	}
	// gonum holds the end values flat outside the range; extend the end pieces instead
	i := segment(l.xs, x)
	return l.ys[i] + l.slope(i)*(x-l.xs[i])
}

func (l *linear) FirstDerivative(x float64) float64 {
	if len(l.xs) == 1 {
		return 0
	}
	return l.slope(segment(l.xs, x))
}

func (l *linear) slope(i int) float64 {
	return (l.ys[i+1] - l.ys[i]) / (l.xs[i+1] - l.xs[i])
}

func (l *linear) ParameterSensitivity(x float64) []float64 {
	n := len(l.xs)
	if n == 1 {
		return []float64{1}
	}
	i := segment(l.xs, x)
	w := (x - l.xs[i]) / (l.xs[i+1] - l.xs[i])
	out := make([]float64, n)
	out[i] = 1 - w
	out[i+1] = w
	return out
}

func (l *linear) FirstDerivativeParameterSensitivity(x float64) []float64 {
	n := len(l.xs)
	out := make([]float64, n)
	if n == 1 {
		return out
	}
	i := segment(l.xs, x)
	h := l.xs[i+1] - l.xs[i]
	out[i] = -1 / h
	out[i+1] = 1 / h
	return out
}
