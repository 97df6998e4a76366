package models

import (
	"fmt"
	"math"
	"sync"

	"github.com/bcdannyboy/dupire/surface"
	"golang.org/x/exp/rand"
)

// SimulateLocalVolPath draws one log-Euler path of the spot under the local
// volatility surface lv, keyed by (time, spot).
func SimulateLocalVolPath(S0 float64, interestRate, dividendRate RateFunc, lv surface.Surface, T float64, steps int, rng *rand.Rand) ([]float64, error) {
	if err := validatePath(S0, interestRate, dividendRate, lv, T, steps); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: no random source", surface.ErrInvalidArgument)
	}
	dt := T / float64(steps)
	sqrtDt := math.Sqrt(dt)

	S := make([]float64, steps+1)
	S[0] = S0

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		vol, err := lv.ZValue(t, S[i])
		if err != nil {
			return nil, err
		}
		drift := interestRate(t) - dividendRate(t)
		S[i+1] = S[i] * math.Exp((drift-0.5*vol*vol)*dt+vol*sqrtDt*rng.NormFloat64())
	}

	return S, nil
}

// SimulateTerminalSpots returns the terminal spot of numPaths paths. Worker w
// uses a generator seeded with seed+w, so results depend only on seed, the
// path count and the worker count.
func SimulateTerminalSpots(S0 float64, interestRate, dividendRate RateFunc, lv surface.Surface, T float64, steps, numPaths int, seed uint64, numWorkers int) ([]float64, error) {
	if err := validatePath(S0, interestRate, dividendRate, lv, T, steps); err != nil {
		return nil, err
	}
	if numPaths < 1 {
		return nil, fmt.Errorf("%w: need at least one path, got %d", surface.ErrInvalidArgument, numPaths)
	}
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	if numWorkers > numPaths {
		numWorkers = numPaths
	}
	results := make([]float64, numPaths)
	errs := make([]error, numWorkers)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + uint64(w)))
			for j := w; j < numPaths; j += numWorkers {
				path, err := SimulateLocalVolPath(S0, interestRate, dividendRate, lv, T, steps, rng)
				if err != nil {
					errs[w] = err
					return
				}
				results[j] = path[steps]
			}
		}(w)
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func validatePath(S0 float64, interestRate, dividendRate RateFunc, lv surface.Surface, T float64, steps int) error {
	if !(S0 > 0) || math.IsInf(S0, 0) || !(T > 0) || math.IsInf(T, 0) || steps < 1 {
		return fmt.Errorf("%w: need positive spot, horizon and step count, got %v, %v, %d", surface.ErrInvalidArgument, S0, T, steps)
	}
	if lv == nil || interestRate == nil || dividendRate == nil {
		return fmt.Errorf("%w: local volatility surface and rate functions are required", surface.ErrInvalidArgument)
	}
	return nil
}
