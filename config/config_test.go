package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bcdannyboy/dupire/models"
	"github.com/bcdannyboy/dupire/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonRun = `{
	"name": "EURUSD",
	"spot": 1.4,
	"rate": {"value": 0.05},
	"dividend": {"value": 0.01},
	"surface": {
		"times":   [0.25, 0.5, 0.75, 1.0, 0.25, 0.5, 0.75, 1.0, 0.25, 0.5, 0.75, 1.0],
		"strikes": [0.8, 0.8, 0.8, 0.8, 1.4, 1.4, 1.4, 1.4, 2.0, 2.0, 2.0, 2.0],
		"values":  [0.21, 0.17, 0.15, 0.14, 0.17, 0.15, 0.14, 0.13, 0.185, 0.16, 0.14, 0.13]
	},
	"output": {"times": [0.5, 0.6], "strikes": [1.1, 1.4], "sensitivities": true}
}`

const yamlRun = `
name: flat
mode: price
spot: 100
rate:
  times: [0.5, 2]
  rates: [0.02, 0.03]
surface:
  times: [0.5, 1, 0.5, 1]
  strikes: [90, 90, 110, 110]
  values: [12, 14, 3, 5]
  strikeInterpolator:
    interpolator: linear
    left: flat
    right: flat
output:
  times: [0.75]
  strikes: [100]
  path: out.json
step: 0.01
workers: 2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeFile(t, "run.json", jsonRun))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "EURUSD", cfg.Name)
	assert.Equal(t, ModeImpliedVolatility, cfg.Mode)
	assert.Equal(t, 1.4, cfg.Spot)
	assert.Equal(t, models.DefaultStep, cfg.Step)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
	assert.True(t, cfg.Output.Sensitivities)
	assert.Equal(t, "naturalspline", cfg.Surface.TimeInterpolator.Interpolator)

	lv, err := cfg.LocalVolatility()
	require.NoError(t, err)
	assert.Equal(t, "LocalVolatility(EURUSD)", lv.Metadata().Name)

	base, err := cfg.NodalSurface()
	require.NoError(t, err)
	r, q, err := cfg.Rates()
	require.NoError(t, err)
	expected, err := models.NewDupireLocalVolatilityCalculator().LocalVolatilityFromImpliedVolatility(base, 1.4, r, q)
	require.NoError(t, err)

	got, err := lv.ZValue(0.6, 1.4)
	require.NoError(t, err)
	want, err := expected.ZValue(0.6, 1.4)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "run.yaml", yamlRun))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModePrice, cfg.Mode)
	assert.Equal(t, 0.01, cfg.Step)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "out.json", cfg.Output.Path)
	assert.Equal(t, "linear", cfg.Surface.StrikeInterpolator.Interpolator)
	// unset sections keep their defaults
	assert.Equal(t, "naturalspline", cfg.Surface.TimeInterpolator.Interpolator)

	base, err := cfg.NodalSurface()
	require.NoError(t, err)
	assert.Equal(t, surface.Price, base.Metadata().ZValueType)

	r, _, err := cfg.Rates()
	require.NoError(t, err)
	assert.InDelta(t, 0.02, r(0.1), 1e-15)
	assert.InDelta(t, 0.025, r(1.25), 1e-15)

	_, err = cfg.LocalVolatility()
	require.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", "{"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeFile(t, "run.json", jsonRun))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "vol" }},
		{"zero spot", func(c *Config) { c.Spot = 0 }},
		{"mismatched surface", func(c *Config) { c.Surface.Values = c.Surface.Values[1:] }},
		{"empty surface", func(c *Config) { c.Surface = SurfaceConfig{TimeInterpolator: defaultInterpolator(), StrikeInterpolator: defaultInterpolator()} }},
		{"empty output", func(c *Config) { c.Output.Strikes = nil }},
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"unknown interpolator", func(c *Config) { c.Surface.TimeInterpolator.Interpolator = "akima" }},
		{"unknown extrapolator", func(c *Config) { c.Rate.Interpolator.Right = "quadratic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv(EnvOutput, "/tmp/lv.json")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvStep, "0.0005")
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/tmp/lv.json", cfg.Output.Path)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 0.0005, cfg.Step)

	t.Setenv(EnvWorkers, "many")
	assert.ErrorIs(t, cfg.ApplyEnv(), ErrInvalidConfig)

	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvStep, "small")
	assert.ErrorIs(t, cfg.ApplyEnv(), ErrInvalidConfig)
}

func TestInputPath(t *testing.T) {
	t.Setenv(EnvInput, "")
	assert.Equal(t, DefaultConfigPath, InputPath(""))
	t.Setenv(EnvInput, "env.yaml")
	assert.Equal(t, "env.yaml", InputPath(""))
	assert.Equal(t, "flag.json", InputPath("flag.json"))
}

func TestRateCurveMustExtrapolate(t *testing.T) {
	rc := RateConfig{
		Times:        []float64{1, 2},
		Rates:        []float64{0.01, 0.02},
		Interpolator: InterpolatorConfig{Interpolator: "linear", Left: "none", Right: "flat"},
	}
	_, err := rc.Func()
	assert.ErrorIs(t, err, surface.ErrInvalidArgument)
}
