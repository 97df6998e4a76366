package models

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/dupire/surface"
)

const (
	// DefaultStep is the finite-difference step in time and strike.
	DefaultStep = 1e-3
	small       = 1e-10
)

// stencil point order
const (
	ptCentre = iota
	ptTimeUp
	ptTimeDown
	ptStrikeUp
	ptStrikeDown
)

// DupireLocalVolatilityCalculator turns an implied volatility or call price
// surface into a local volatility surface with Dupire's formula. Derivatives
// of the input surface come from a five point finite-difference stencil and
// the parameter sensitivity is the exact derivative of that discretisation.
type DupireLocalVolatilityCalculator struct {
	step float64
}

type Option func(*DupireLocalVolatilityCalculator)

// WithStep sets the finite-difference step used for values and sensitivities.
func WithStep(h float64) Option {
	return func(c *DupireLocalVolatilityCalculator) {
		c.step = h
	}
}

func NewDupireLocalVolatilityCalculator(opts ...Option) *DupireLocalVolatilityCalculator {
	c := &DupireLocalVolatilityCalculator{step: DefaultStep}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *DupireLocalVolatilityCalculator) Step() float64 {
	return c.step
}

// LocalVolatilityFromImpliedVolatility returns the local volatility surface
// implied by a (time, strike) implied volatility surface.
func (c *DupireLocalVolatilityCalculator) LocalVolatilityFromImpliedVolatility(impliedVolatility surface.Surface, spot float64, interestRate, dividendRate RateFunc) (*surface.DeformedSurface, error) {
	if err := c.validate(impliedVolatility, spot, interestRate, dividendRate); err != nil {
		return nil, err
	}

	stencil := func(t, k float64) ([]surface.Point, error) {
		return c.stencilAt(t, math.Max(k, small)).points(), nil
	}

	localVariance := func(t, k float64, values []float64) (dupireTerms, error) {
		st := c.stencilAt(t, math.Max(k, small))
		vol, volT, volK, volKK := st.derivatives(values)
		if !(vol > 0) {
			return dupireTerms{}, fmt.Errorf("%w: implied volatility %v at (%v, %v) must be positive", surface.ErrInvalidArgument, vol, t, k)
		}
		r := interestRate(st.t)
		q := dividendRate(st.t)
		terms := impliedVolLocalVariance(spot, st.t, st.k, r, q, vol, volT, volK, volKK)
		terms.stencil = st
		return terms, nil
	}

	return c.deform("LocalVolatility("+impliedVolatility.Metadata().Name+")", impliedVolatility, stencil, localVariance)
}

// LocalVolatilityFromPrice returns the local volatility surface implied by a
// (time, strike) surface of present value European call prices.
func (c *DupireLocalVolatilityCalculator) LocalVolatilityFromPrice(callPrice surface.Surface, spot float64, interestRate, dividendRate RateFunc) (*surface.DeformedSurface, error) {
	if err := c.validate(callPrice, spot, interestRate, dividendRate); err != nil {
		return nil, err
	}

	stencil := func(t, k float64) ([]surface.Point, error) {
		if !(k > 0) {
			return nil, fmt.Errorf("%w: strike %v must be positive", surface.ErrInvalidArgument, k)
		}
		return c.stencilAt(t, k).positiveStrikes().points(), nil
	}

	localVariance := func(t, k float64, values []float64) (dupireTerms, error) {
		st := c.stencilAt(t, k).positiveStrikes()
		p, pT, pK, pKK := st.derivatives(values)
		r := interestRate(st.t)
		q := dividendRate(st.t)
		terms := priceLocalVariance(st.k, r, q, p, pT, pK, pKK)
		terms.stencil = st
		return terms, nil
	}

	return c.deform("LocalVolatility("+callPrice.Metadata().Name+")", callPrice, stencil, localVariance)
}

func (c *DupireLocalVolatilityCalculator) validate(base surface.Surface, spot float64, interestRate, dividendRate RateFunc) error {
	if base == nil {
		return fmt.Errorf("%w: no input surface", surface.ErrInvalidArgument)
	}
	if !(spot > 0) || math.IsInf(spot, 0) {
		return fmt.Errorf("%w: spot %v must be positive and finite", surface.ErrInvalidArgument, spot)
	}
	if interestRate == nil || dividendRate == nil {
		return fmt.Errorf("%w: interest and dividend rate functions are required", surface.ErrInvalidArgument)
	}
	if !(c.step > 0) || math.IsInf(c.step, 0) {
		return fmt.Errorf("%w: finite-difference step %v must be positive", surface.ErrInvalidArgument, c.step)
	}
	return nil
}

// deform wraps a local variance computation into a surface. The local
// volatility is the square root of the variance, floored at zero.
func (c *DupireLocalVolatilityCalculator) deform(name string, base surface.Surface, stencil surface.StencilFunc, localVariance func(t, k float64, values []float64) (dupireTerms, error)) (*surface.DeformedSurface, error) {
	value := func(t, k float64, values [][]float64) (float64, error) {
		terms, err := localVariance(t, k, values[0])
		if err != nil {
			return 0, err
		}
		if terms.variance <= 0 {
			return 0, nil
		}
		return math.Sqrt(terms.variance), nil
	}

	sensitivity := func(t, k float64, values [][]float64, sensitivities [][][]float64) ([]float64, error) {
		terms, err := localVariance(t, k, values[0])
		if err != nil {
			return nil, err
		}
		if terms.variance <= 0 {
			return make([]float64, len(sensitivities[0][ptCentre])), nil
		}
		// d sqrt(v) = dv / (2 sqrt(v))
		scale := 0.5 / math.Sqrt(terms.variance)
		weights := terms.stencil.weights(scale*terms.dF, scale*terms.dFT, scale*terms.dFK, scale*terms.dFKK)
		return surface.CombineStencil(weights, sensitivities[0])
	}

	return surface.NewDeformedSurface(surface.VolatilityMetadata(name, surface.LocalVolatility), []surface.Surface{base}, stencil, value, sensitivity)
}

// dupireStencil samples (t, k), (t+h, k), (tDown, k), (t, k+hK) and (t, k-hK).
// tDown is t-h, or t itself when t-h would be negative, which turns the
// time derivative into a forward difference. hK is h unless the strike
// samples have to stay positive.
type dupireStencil struct {
	t, k  float64
	h     float64
	hK    float64
	tDown float64
}

func (c *DupireLocalVolatilityCalculator) stencilAt(t, k float64) dupireStencil {
	t = math.Max(t, small)
	st := dupireStencil{t: t, k: k, h: c.step, hK: c.step, tDown: t - c.step}
	if st.tDown < 0 {
		st.tDown = t
	}
	return st
}

// positiveStrikes narrows the strike step to k/2 when k-h would not be positive.
func (s dupireStencil) positiveStrikes() dupireStencil {
	if s.k-s.hK <= 0 {
		s.hK = 0.5 * s.k
	}
	return s
}

func (s dupireStencil) points() []surface.Point {
	return []surface.Point{
		ptCentre:     {X: s.t, Y: s.k},
		ptTimeUp:     {X: s.t + s.h, Y: s.k},
		ptTimeDown:   {X: s.tDown, Y: s.k},
		ptStrikeUp:   {X: s.t, Y: s.k + s.hK},
		ptStrikeDown: {X: s.t, Y: s.k - s.hK},
	}
}

func (s dupireStencil) dt() float64 {
	return s.t + s.h - s.tDown
}

// derivatives returns f, df/dt, df/dk and d2f/dk2 from the stencil samples.
func (s dupireStencil) derivatives(v []float64) (f, fT, fK, fKK float64) {
	f = v[ptCentre]
	fT = (v[ptTimeUp] - v[ptTimeDown]) / s.dt()
	fK = 0.5 * (v[ptStrikeUp] - v[ptStrikeDown]) / s.hK
	fKK = (v[ptStrikeUp] + v[ptStrikeDown] - 2*f) / (s.hK * s.hK)
	return f, fT, fK, fKK
}

// weights maps partial derivatives with respect to f, df/dt, df/dk and
// d2f/dk2 onto the samples at each stencil point.
func (s dupireStencil) weights(dF, dFT, dFK, dFKK float64) []float64 {
	h2 := s.hK * s.hK
	w := make([]float64, 5)
	w[ptCentre] = dF - 2*dFKK/h2
	w[ptTimeUp] = dFT / s.dt()
	w[ptTimeDown] = -dFT / s.dt()
	w[ptStrikeUp] = 0.5*dFK/s.hK + dFKK/h2
	w[ptStrikeDown] = -0.5*dFK/s.hK + dFKK/h2
	return w
}

// dupireTerms is a local variance with its partial derivatives with respect
// to the input value f and its derivatives f_T, f_K and f_KK.
type dupireTerms struct {
	variance float64
	dF       float64
	dFT      float64
	dFK      float64
	dFKK     float64
	stencil  dupireStencil
}

// impliedVolLocalVariance is Dupire's formula in implied volatility:
//
//	var = (vol^2 + 2 vol T (volT + (r-q) K volK)) / den
//	den = 1 + 2 d1 K sqrt(T) volK + K^2 T (d1 d2 volK^2 + vol volKK)
func impliedVolLocalVariance(spot, t, k, r, q, vol, volT, volK, volKK float64) dupireTerms {
	rootT := math.Sqrt(t)
	d1 := (math.Log(spot/k) + (r-q+0.5*vol*vol)*t) / (vol * rootT)
	d2 := d1 - vol*rootT
	kk := k * k

	den := 1 + 2*d1*k*rootT*volK + kk*t*(d1*d2*volK*volK+vol*volKK)
	den = awayFromZero(den)
	num := vol*vol + 2*vol*t*(volT+(r-q)*k*volK)
	variance := num / den

	// d(d1)/d(vol) = -d2/vol, d(d2)/d(vol) = -d1/vol
	d1Vol := -d2 / vol
	d2Vol := -d1 / vol

	numVol := 2*vol + 2*t*(volT+(r-q)*k*volK)
	numVolT := 2 * vol * t
	numVolK := 2 * vol * t * (r - q) * k

	denVol := 2*k*rootT*volK*d1Vol + kk*t*(volK*volK*(d1Vol*d2+d1*d2Vol)+volKK)
	denVolK := 2*d1*k*rootT + 2*kk*t*d1*d2*volK
	denVolKK := kk * t * vol

	return dupireTerms{
		variance: variance,
		dF:       (numVol - variance*denVol) / den,
		dFT:      numVolT / den,
		dFK:      (numVolK - variance*denVolK) / den,
		dFKK:     -variance * denVolKK / den,
	}
}

// priceLocalVariance is Dupire's formula in call prices:
//
//	var = 2 (P_T + (r-q) K P_K + q P) / (K^2 P_KK)
func priceLocalVariance(k, r, q, p, pT, pK, pKK float64) dupireTerms {
	kk := k * k
	den := awayFromZero(kk * pKK)
	variance := 2 * (pT + (r-q)*k*pK + q*p) / den
	return dupireTerms{
		variance: variance,
		dF:       2 * q / den,
		dFT:      2 / den,
		dFK:      2 * (r - q) * k / den,
		dFKK:     -variance * kk / den,
	}
}

func awayFromZero(x float64) float64 {
	if math.Abs(x) < small {
		return math.Copysign(small, x)
	}
	return x
}
