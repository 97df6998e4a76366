package interpolation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type naturalSplineInterpolator struct{}

func (naturalSplineInterpolator) Name() string { return "naturalspline" }

// Bind fits a natural cubic spline (zero second derivative at both ends).
// The spline is linear in the y-values, so the map from y to the second
// derivatives at the knots is solved once and reused for the sensitivities.
func (naturalSplineInterpolator) Bind(xs, ys []float64) (BoundInterpolator1D, error) {
	if err := checkNodes(xs, ys); err != nil {
		return nil, err
	}
	n := len(xs)
	s := &naturalSpline{
		xs:      append([]float64(nil), xs...),
		ys:      append([]float64(nil), ys...),
		moments: make([]float64, n),
		basis:   mat.NewDense(n, n, nil),
	}
	if n < 3 {
		return s, nil
	}

	m := n - 2
	a := mat.NewDense(m, m, nil)
	r := mat.NewDense(m, n, nil)
	for j := 1; j <= m; j++ {
		hl := xs[j] - xs[j-1]
		hr := xs[j+1] - xs[j]
		row := j - 1
		a.Set(row, row, 2*(hl+hr))
		if row > 0 {
			a.Set(row, row-1, hl)
		}
		if row < m-1 {
			a.Set(row, row+1, hr)
		}
		r.Set(row, j-1, 6/hl)
		r.Set(row, j, -6/hl-6/hr)
		r.Set(row, j+1, 6/hr)
	}

	var interior mat.Dense
	if err := interior.Solve(a, r); err != nil {
		return nil, fmt.Errorf("%w: natural spline system: %v", ErrInvalidArgument, err)
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			s.basis.Set(i+1, j, interior.At(i, j))
		}
	}
	var moments mat.VecDense
	moments.MulVec(s.basis, mat.NewVecDense(n, s.ys))
	for i := range s.moments {
		s.moments[i] = moments.AtVec(i)
	}
	return s, nil
}

type naturalSpline struct {
	xs, ys  []float64
	moments []float64
	// basis(i, j) = d moments[i] / d ys[j]
	basis *mat.Dense
}

func (s *naturalSpline) XValues() []float64 { return s.xs }
func (s *naturalSpline) YValues() []float64 { return s.ys }

// weights returns the coefficients of y_i, y_{i+1}, M_i, M_{i+1} in the
// cubic of piece i evaluated at x.
func (s *naturalSpline) weights(x float64) (i int, wy0, wy1, wm0, wm1 float64) {
	i = segment(s.xs, x)
	h := s.xs[i+1] - s.xs[i]
	a := (s.xs[i+1] - x) / h
	b := (x - s.xs[i]) / h
	return i, a, b, (a*a*a - a) * h * h / 6, (b*b*b - b) * h * h / 6
}

func (s *naturalSpline) derivativeWeights(x float64) (i int, wy0, wy1, wm0, wm1 float64) {
	i = segment(s.xs, x)
	h := s.xs[i+1] - s.xs[i]
	a := (s.xs[i+1] - x) / h
	b := (x - s.xs[i]) / h
	return i, -1 / h, 1 / h, -(3*a*a - 1) * h / 6, (3*b*b - 1) * h / 6
}

func (s *naturalSpline) Interpolate(x float64) float64 {
	if len(s.xs) == 1 {
		return s.ys[0]
	}
	i, wy0, wy1, wm0, wm1 := s.weights(x)
	return wy0*s.ys[i] + wy1*s.ys[i+1] + wm0*s.moments[i] + wm1*s.moments[i+1]
}

func (s *naturalSpline) FirstDerivative(x float64) float64 {
	if len(s.xs) == 1 {
		return 0
	}
	i, wy0, wy1, wm0, wm1 := s.derivativeWeights(x)
	return wy0*s.ys[i] + wy1*s.ys[i+1] + wm0*s.moments[i] + wm1*s.moments[i+1]
}

func (s *naturalSpline) ParameterSensitivity(x float64) []float64 {
	if len(s.xs) == 1 {
		return []float64{1}
	}
	return s.sensitivity(s.weights(x))
}

func (s *naturalSpline) FirstDerivativeParameterSensitivity(x float64) []float64 {
	if len(s.xs) == 1 {
		return []float64{0}
	}
	return s.sensitivity(s.derivativeWeights(x))
}

func (s *naturalSpline) sensitivity(i int, wy0, wy1, wm0, wm1 float64) []float64 {
	n := len(s.xs)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		out[j] = wm0*s.basis.At(i, j) + wm1*s.basis.At(i+1, j)
	}
	out[i] += wy0
	out[i+1] += wy1
	return out
}
