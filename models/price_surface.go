package models

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/dupire/pricing"
	"github.com/bcdannyboy/dupire/surface"
)

// PriceSurfaceFromImpliedVolatility returns the surface of present value
// Black-Scholes-Merton call prices implied by an implied volatility surface.
// Its parameters are those of the implied volatility surface.
func PriceSurfaceFromImpliedVolatility(impliedVolatility surface.Surface, spot float64, interestRate, dividendRate RateFunc) (*surface.DeformedSurface, error) {
	if impliedVolatility == nil {
		return nil, fmt.Errorf("%w: no input surface", surface.ErrInvalidArgument)
	}
	if !(spot > 0) || math.IsInf(spot, 0) {
		return nil, fmt.Errorf("%w: spot %v must be positive and finite", surface.ErrInvalidArgument, spot)
	}
	if interestRate == nil || dividendRate == nil {
		return nil, fmt.Errorf("%w: interest and dividend rate functions are required", surface.ErrInvalidArgument)
	}

	stencil := func(t, k float64) ([]surface.Point, error) {
		if !(k > 0) {
			return nil, fmt.Errorf("%w: strike %v must be positive", surface.ErrInvalidArgument, k)
		}
		return []surface.Point{{X: t, Y: k}}, nil
	}

	price := func(t, k float64, values [][]float64) (float64, error) {
		return pricing.CallPrice(spot, k, t, interestRate(t), dividendRate(t), values[0][0]), nil
	}

	sensitivity := func(t, k float64, values [][]float64, sensitivities [][][]float64) ([]float64, error) {
		vega := pricing.Vega(spot, k, t, interestRate(t), dividendRate(t), values[0][0])
		return surface.CombineStencil([]float64{vega}, sensitivities[0])
	}

	name := "CallPrice(" + impliedVolatility.Metadata().Name + ")"
	return surface.NewDeformedSurface(surface.VolatilityMetadata(name, surface.Price), []surface.Surface{impliedVolatility}, stencil, price, sensitivity)
}
