package models

import (
	"math"
	"testing"

	"github.com/bcdannyboy/dupire/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func TestSimulateLocalVolPathDeterministic(t *testing.T) {
	lv := surface.NewConstantNodalSurface("lv", 0.2)
	a, err := SimulateLocalVolPath(100, ConstantRate(0.03), ConstantRate(0), lv, 1, 50, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := SimulateLocalVolPath(100, ConstantRate(0.03), ConstantRate(0), lv, 1, 50, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	require.Len(t, a, 51)
	assert.Equal(t, 100.0, a[0])
	assert.Equal(t, a, b)
	for _, s := range a {
		assert.Greater(t, s, 0.0)
	}
}

func TestSimulateLocalVolPathZeroVol(t *testing.T) {
	lv := surface.NewConstantNodalSurface("lv", 0)
	path, err := SimulateLocalVolPath(100, ConstantRate(0.05), ConstantRate(0.02), lv, 2, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp(0.03*2), path[10], 1e-9)
}

func TestSimulateLocalVolPathBadInputs(t *testing.T) {
	lv := surface.NewConstantNodalSurface("lv", 0.2)
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name  string
		s0    float64
		T     float64
		steps int
	}{
		{"zero spot", 0, 1, 10},
		{"zero horizon", 100, 0, 10},
		{"no steps", 100, 1, 0},
		{"NaN spot", math.NaN(), 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SimulateLocalVolPath(tt.s0, ConstantRate(0), ConstantRate(0), lv, tt.T, tt.steps, rng)
			assert.ErrorIs(t, err, surface.ErrInvalidArgument)
		})
	}
}

func TestSimulateLocalVolPathPropagatesSurfaceErrors(t *testing.T) {
	lv := failingSurface{Surface: surface.NewConstantNodalSurface("lv", 0.2), failAt: 100}
	_, err := SimulateLocalVolPath(100, ConstantRate(0), ConstantRate(0), lv, 1, 10, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, errFailingSurface)
}

func TestSimulateTerminalSpots(t *testing.T) {
	const s0, r, q, T = 100.0, 0.04, 0.01, 1.0
	lv := surface.NewConstantNodalSurface("lv", 0.2)

	spots, err := SimulateTerminalSpots(s0, ConstantRate(r), ConstantRate(q), lv, T, 20, 20000, 42, 4)
	require.NoError(t, err)
	require.Len(t, spots, 20000)

	// standard error of the mean is about 0.15 here
	assert.InDelta(t, s0*math.Exp((r-q)*T), stat.Mean(spots, nil), 1.0)

	again, err := SimulateTerminalSpots(s0, ConstantRate(r), ConstantRate(q), lv, T, 20, 20000, 42, 4)
	require.NoError(t, err)
	assert.Equal(t, spots, again)
}

func TestSimulateTerminalSpotsUnderLocalVol(t *testing.T) {
	localVol, err := NewDupireLocalVolatilityCalculator().LocalVolatilityFromImpliedVolatility(nodalSurface(t, vols), spot, ConstantRate(0.05), ConstantRate(0.01))
	require.NoError(t, err)

	spots, err := SimulateTerminalSpots(spot, ConstantRate(0.05), ConstantRate(0.01), localVol, 0.5, 10, 200, 3, 2)
	require.NoError(t, err)
	for _, s := range spots {
		assert.False(t, math.IsNaN(s) || math.IsInf(s, 0))
		assert.Greater(t, s, 0.0)
	}
}

func TestSimulateTerminalSpotsBadInputs(t *testing.T) {
	lv := surface.NewConstantNodalSurface("lv", 0.2)
	zero := ConstantRate(0)
	tests := []struct {
		name     string
		s0       float64
		T        float64
		steps    int
		numPaths int
	}{
		{"negative paths", 1, 1, 10, -1},
		{"no paths", 1, 1, 10, 0},
		{"zero spot", 0, 1, 10, 5},
		{"infinite spot", math.Inf(1), 1, 10, 5},
		{"negative horizon", 1, -1, 10, 5},
		{"no steps", 1, 1, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spots, err := SimulateTerminalSpots(tt.s0, zero, zero, lv, tt.T, tt.steps, tt.numPaths, 1, 2)
			assert.ErrorIs(t, err, surface.ErrInvalidArgument)
			assert.Nil(t, spots)
		})
	}

	_, err := SimulateTerminalSpots(1, zero, zero, nil, 1, 10, 5, 1, 2)
	assert.ErrorIs(t, err, surface.ErrInvalidArgument)
	_, err = SimulateTerminalSpots(1, nil, zero, lv, 1, 10, 5, 1, 2)
	assert.ErrorIs(t, err, surface.ErrInvalidArgument)
}

func TestSimulateTerminalSpotsDefaultWorkers(t *testing.T) {
	lv := surface.NewConstantNodalSurface("lv", 0.2)
	spots, err := SimulateTerminalSpots(100, ConstantRate(0.01), ConstantRate(0), lv, 1, 5, 3, 9, 0)
	require.NoError(t, err)
	assert.Len(t, spots, 3)

	// with one path only one worker runs, whatever the default is
	one, err := SimulateTerminalSpots(100, ConstantRate(0.01), ConstantRate(0), lv, 1, 5, 1, 9, 0)
	require.NoError(t, err)
	single, err := SimulateTerminalSpots(100, ConstantRate(0.01), ConstantRate(0), lv, 1, 5, 1, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, single, one)
}
