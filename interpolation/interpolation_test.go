package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

const tol = 1e-12

var cubic = NewCombinedInterpolatorExtrapolator(NaturalSpline, InterpolatorExtrapolator, InterpolatorExtrapolator)

func TestNaturalSplineKnownValue(t *testing.T) {
	b, err := NaturalSpline.Bind([]float64{0, 1, 2}, []float64{0, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 0.6875, b.Interpolate(0.5), tol)
	assert.InDelta(t, 0.6875, b.Interpolate(1.5), tol)
	assert.InDelta(t, 1.0, b.Interpolate(1), tol)
}

func TestNaturalSplineReproducesLines(t *testing.T) {
	xs := []float64{-1, 0.3, 0.7, 2, 4.5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*x - 2
	}
	b, err := NaturalSpline.Bind(xs, ys)
	require.NoError(t, err)

	for _, x := range []float64{-3, -1, 0, 0.5, 1.9, 4.5, 7} {
		assert.InDelta(t, 3*x-2, b.Interpolate(x), 1e-10, "x=%v", x)
		assert.InDelta(t, 3.0, b.FirstDerivative(x), 1e-10, "x=%v", x)
	}
}

func TestInterpolatorsExactAtNodes(t *testing.T) {
	xs := []float64{0.25, 0.5, 0.75, 1.0}
	ys := []float64{0.21, 0.17, 0.15, 0.14}
	for _, interp := range []Interpolator1D{NaturalSpline, Linear} {
		b, err := interp.Bind(xs, ys)
		require.NoError(t, err)
		for i, x := range xs {
			assert.InDelta(t, ys[i], b.Interpolate(x), tol, "%s at %v", interp.Name(), x)
			w := b.ParameterSensitivity(x)
			assert.InDelta(t, 1.0, w[i], tol)
			assert.InDelta(t, 1.0, floats.Sum(w), tol)
		}
	}
}

func TestParameterSensitivityMatchesBump(t *testing.T) {
	xs := []float64{0.8, 1.1, 1.4, 2.0, 2.3}
	ys := []float64{0.3, 0.22, 0.2, 0.21, 0.25}
	const eps = 1e-6
	for _, interp := range []Interpolator1D{NaturalSpline, Linear} {
		b, err := interp.Bind(xs, ys)
		require.NoError(t, err)
		for _, x := range []float64{0.5, 0.8, 1.25, 1.4, 2.1, 2.6} {
			w := b.ParameterSensitivity(x)
			dw := b.FirstDerivativeParameterSensitivity(x)
			for i := range ys {
				up := append([]float64(nil), ys...)
				dn := append([]float64(nil), ys...)
				up[i] += eps
				dn[i] -= eps
				bu, err := interp.Bind(xs, up)
				require.NoError(t, err)
				bd, err := interp.Bind(xs, dn)
				require.NoError(t, err)
				assert.InDelta(t, (bu.Interpolate(x)-bd.Interpolate(x))/(2*eps), w[i], 1e-7)
				assert.InDelta(t, (bu.FirstDerivative(x)-bd.FirstDerivative(x))/(2*eps), dw[i], 1e-6)
			}
		}
	}
}

func TestSplineWeightsContinuousAcrossKnots(t *testing.T) {
	xs := []float64{0, 1, 2.5, 3, 5}
	b, err := NaturalSpline.Bind(xs, []float64{1, 2, 0, 1, 3})
	require.NoError(t, err)

	for _, knot := range xs[1 : len(xs)-1] {
		left := b.ParameterSensitivity(knot - 1e-9)
		right := b.ParameterSensitivity(knot + 1e-9)
		for i := range left {
			assert.InDelta(t, left[i], right[i], 1e-7)
		}
	}
}

func TestSingleNode(t *testing.T) {
	for _, interp := range []Interpolator1D{NaturalSpline, Linear} {
		b, err := interp.Bind([]float64{1}, []float64{0.4})
		require.NoError(t, err)
		assert.Equal(t, 0.4, b.Interpolate(-10))
		assert.Equal(t, []float64{1}, b.ParameterSensitivity(3))
		assert.Equal(t, 0.0, b.FirstDerivative(3))
	}
}

func TestBindRejectsBadNodes(t *testing.T) {
	_, err := NaturalSpline.Bind([]float64{0, 1}, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Linear.Bind([]float64{0, 1, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NaturalSpline.Bind(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestExtrapolators(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{3, 5, 7}

	flat := NewCombinedInterpolatorExtrapolator(Linear, FlatExtrapolator, FlatExtrapolator)
	c, err := flat.Bind(xs, ys)
	require.NoError(t, err)
	v, err := c.Value(0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	v, err = c.Value(10)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	w, err := c.ParameterSensitivity(10)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, w)

	lin := NewCombinedInterpolatorExtrapolator(NaturalSpline, LinearExtrapolator, LinearExtrapolator)
	c, err = lin.Bind(xs, ys)
	require.NoError(t, err)
	v, err = c.Value(5)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, v, 1e-12)
	v, err = c.Value(-1)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, v, 1e-12)
	w, err = c.ParameterSensitivity(5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Sum(w), 1e-12)

	none := NewCombinedInterpolatorExtrapolator(Linear, NoExtrapolator, NoExtrapolator)
	c, err = none.Bind(xs, ys)
	require.NoError(t, err)
	_, err = c.Value(3.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.ParameterSensitivity(0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	v, err = c.Value(2.5)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, v, 1e-12)
}

func TestCurveKeepsInputOrder(t *testing.T) {
	c, err := cubic.Bind([]float64{3, 1, 2}, []float64{7, 3, 5})
	require.NoError(t, err)

	w, err := c.ParameterSensitivity(3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w[0], tol)
	assert.InDelta(t, 0.0, w[1], tol)
	assert.InDelta(t, 0.0, w[2], tol)

	v, err := c.Value(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-12)
}

func TestByName(t *testing.T) {
	i, err := InterpolatorByName("NaturalSpline")
	require.NoError(t, err)
	assert.Equal(t, NaturalSpline, i)

	e, err := ExtrapolatorByName("flat")
	require.NoError(t, err)
	assert.Equal(t, FlatExtrapolator, e)

	_, err = InterpolatorByName("akima")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ExtrapolatorByName("exponential")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
