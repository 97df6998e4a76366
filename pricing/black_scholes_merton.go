package pricing

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxIterations = 100
	epsilon       = 1e-10
)

var ErrNoConvergence = errors.New("implied volatility did not converge")

// BSMResult holds a Black-Scholes-Merton price and its sensitivities to spot
// and volatility under a continuous dividend yield q.
type BSMResult struct {
	Price float64
	Delta float64
	Gamma float64
	Vega  float64
}

// D1D2 returns the Black-Scholes-Merton d1 and d2 terms.
func D1D2(S, K, T, r, q, sigma float64) (float64, float64) {
	rootT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * rootT)
	return d1, d1 - sigma*rootT
}

// Calculate prices a European option. At or after expiry the intrinsic value
// is returned with zero vega and gamma.
func Calculate(S, K, T, r, q, sigma float64, isCall bool) BSMResult {
	dfq := math.Exp(-q * T)
	dfr := math.Exp(-r * T)
	if T <= 0 || sigma <= 0 {
		fwd := S*dfq - K*dfr
		if isCall {
			if fwd > 0 {
				return BSMResult{Price: fwd, Delta: dfq}
			}
			return BSMResult{}
		}
		if fwd < 0 {
			return BSMResult{Price: -fwd, Delta: -dfq}
		}
		return BSMResult{}
	}

	d1, d2 := D1D2(S, K, T, r, q, sigma)
	n := distuv.UnitNormal
	rootT := math.Sqrt(T)

	var price, delta float64
	if isCall {
		price = S*dfq*n.CDF(d1) - K*dfr*n.CDF(d2)
		delta = dfq * n.CDF(d1)
	} else {
		price = K*dfr*n.CDF(-d2) - S*dfq*n.CDF(-d1)
		delta = -dfq * n.CDF(-d1)
	}

	return BSMResult{
		Price: price,
		Delta: delta,
		Gamma: dfq * n.Prob(d1) / (S * sigma * rootT),
		Vega:  S * dfq * n.Prob(d1) * rootT,
	}
}

func CallPrice(S, K, T, r, q, sigma float64) float64 {
	return Calculate(S, K, T, r, q, sigma, true).Price
}

func PutPrice(S, K, T, r, q, sigma float64) float64 {
	return Calculate(S, K, T, r, q, sigma, false).Price
}

func Vega(S, K, T, r, q, sigma float64) float64 {
	return Calculate(S, K, T, r, q, sigma, true).Vega
}

// ImpliedVolatility inverts Calculate with Newton's method. When Newton
// stalls (deep in or out of the money, where vega vanishes) the squared
// pricing error is minimised with Nelder-Mead instead.
func ImpliedVolatility(targetPrice, S, K, T, r, q float64, isCall bool) (float64, error) {
	sigma := 0.5 // Initial guess
	for i := 0; i < maxIterations; i++ {
		res := Calculate(S, K, T, r, q, sigma, isCall)

		diff := res.Price - targetPrice
		if math.Abs(diff) < epsilon {
			return sigma, nil
		}
		if res.Vega < epsilon {
			break
		}

		sigma = sigma - diff/res.Vega
		if sigma <= 0 {
			sigma = 0.0001 // Avoid negative volatility
		}
	}
	return minimiseImpliedVolatility(targetPrice, S, K, T, r, q, isCall)
}

func minimiseImpliedVolatility(targetPrice, S, K, T, r, q float64, isCall bool) (float64, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			diff := Calculate(S, K, T, r, q, math.Abs(x[0]), isCall).Price - targetPrice
			return diff * diff
		},
	}

	result, err := optimize.Minimize(problem, []float64{0.2}, nil, &optimize.NelderMead{})
	if err != nil {
		return math.NaN(), ErrNoConvergence
	}
	sigma := math.Abs(result.X[0])
	if !(sigma > 0) || math.Sqrt(result.F) > 1e-6*math.Max(1, math.Abs(targetPrice)) {
		return math.NaN(), ErrNoConvergence
	}
	return sigma, nil
}
