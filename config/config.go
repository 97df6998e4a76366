// Package config describes a local volatility run: the input surface, the
// market data and the output grid. Runs are read from JSON or YAML files and
// can be overridden from the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bcdannyboy/dupire/interpolation"
	"github.com/bcdannyboy/dupire/models"
	"github.com/bcdannyboy/dupire/surface"
	"github.com/xhhuango/json"
	"gopkg.in/yaml.v3"
)

const (
	ModeImpliedVolatility = "impliedVolatility"
	ModePrice             = "price"

	DefaultConfigPath = "dupire.json"
	DefaultOutputPath = "localvol.json"
)

// Environment overrides.
const (
	EnvInput   = "DUPIRE_INPUT"
	EnvOutput  = "DUPIRE_OUTPUT"
	EnvWorkers = "DUPIRE_WORKERS"
	EnvStep    = "DUPIRE_STEP"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Name string `json:"name" yaml:"name"`
	// Mode is ModeImpliedVolatility or ModePrice and says what Surface.Values holds.
	Mode     string        `json:"mode" yaml:"mode"`
	Spot     float64       `json:"spot" yaml:"spot"`
	Rate     RateConfig    `json:"rate" yaml:"rate"`
	Dividend RateConfig    `json:"dividend" yaml:"dividend"`
	Surface  SurfaceConfig `json:"surface" yaml:"surface"`
	Output   OutputConfig  `json:"output" yaml:"output"`
	Step     float64       `json:"step" yaml:"step"`
	Workers  int           `json:"workers" yaml:"workers"`
}

// RateConfig is either a flat rate or a term structure when Times is set.
type RateConfig struct {
	Value        float64            `json:"value" yaml:"value"`
	Times        []float64          `json:"times,omitempty" yaml:"times,omitempty"`
	Rates        []float64          `json:"rates,omitempty" yaml:"rates,omitempty"`
	Interpolator InterpolatorConfig `json:"interpolator" yaml:"interpolator"`
}

type InterpolatorConfig struct {
	Interpolator string `json:"interpolator" yaml:"interpolator"`
	Left         string `json:"left" yaml:"left"`
	Right        string `json:"right" yaml:"right"`
}

// SurfaceConfig holds the nodes of the input surface. Times, Strikes and
// Values are index aligned.
type SurfaceConfig struct {
	Times              []float64          `json:"times" yaml:"times"`
	Strikes            []float64          `json:"strikes" yaml:"strikes"`
	Values             []float64          `json:"values" yaml:"values"`
	TimeInterpolator   InterpolatorConfig `json:"timeInterpolator" yaml:"timeInterpolator"`
	StrikeInterpolator InterpolatorConfig `json:"strikeInterpolator" yaml:"strikeInterpolator"`
}

type OutputConfig struct {
	Times         []float64 `json:"times" yaml:"times"`
	Strikes       []float64 `json:"strikes" yaml:"strikes"`
	Path          string    `json:"path" yaml:"path"`
	Sensitivities bool      `json:"sensitivities" yaml:"sensitivities"`
}

func defaultInterpolator() InterpolatorConfig {
	return InterpolatorConfig{
		Interpolator: interpolation.NaturalSpline.Name(),
		Left:         interpolation.InterpolatorExtrapolator.Name(),
		Right:        interpolation.InterpolatorExtrapolator.Name(),
	}
}

func flatRateInterpolator() InterpolatorConfig {
	return InterpolatorConfig{
		Interpolator: interpolation.Linear.Name(),
		Left:         interpolation.FlatExtrapolator.Name(),
		Right:        interpolation.FlatExtrapolator.Name(),
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "Surface",
		Mode:     ModeImpliedVolatility,
		Rate:     RateConfig{Interpolator: flatRateInterpolator()},
		Dividend: RateConfig{Interpolator: flatRateInterpolator()},
		Surface: SurfaceConfig{
			TimeInterpolator:   defaultInterpolator(),
			StrikeInterpolator: defaultInterpolator(),
		},
		Output: OutputConfig{Path: DefaultOutputPath},
		Step:   models.DefaultStep,
	}
}

// Load reads a run file over the defaults. Files ending in .yaml or .yml
// are YAML, anything else is JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return cfg, nil
}

// InputPath returns flagValue, else $DUPIRE_INPUT, else DefaultConfigPath.
func InputPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvInput); p != "" {
		return p
	}
	return DefaultConfigPath
}

// ApplyEnv overrides the output path, worker count and step from the
// environment when the variables are set.
func (c *Config) ApplyEnv() error {
	if p := os.Getenv(EnvOutput); p != "" {
		c.Output.Path = p
	}
	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvWorkers, w, err)
		}
		c.Workers = n
	}
	if s := os.Getenv(EnvStep); s != "" {
		h, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvStep, s, err)
		}
		c.Step = h
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Mode != ModeImpliedVolatility && c.Mode != ModePrice {
		return fmt.Errorf("%w: mode %q must be %q or %q", ErrInvalidConfig, c.Mode, ModeImpliedVolatility, ModePrice)
	}
	if !(c.Spot > 0) || math.IsInf(c.Spot, 0) {
		return fmt.Errorf("%w: spot %v must be positive", ErrInvalidConfig, c.Spot)
	}
	s := c.Surface
	if len(s.Times) == 0 || len(s.Times) != len(s.Strikes) || len(s.Times) != len(s.Values) {
		return fmt.Errorf("%w: surface needs matching times, strikes and values, got %d, %d and %d", ErrInvalidConfig, len(s.Times), len(s.Strikes), len(s.Values))
	}
	if len(c.Output.Times) == 0 || len(c.Output.Strikes) == 0 {
		return fmt.Errorf("%w: output grid is empty", ErrInvalidConfig)
	}
	if !(c.Step > 0) {
		return fmt.Errorf("%w: step %v must be positive", ErrInvalidConfig, c.Step)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, c.Workers)
	}
	for name, ic := range map[string]InterpolatorConfig{
		"time interpolator":     s.TimeInterpolator,
		"strike interpolator":   s.StrikeInterpolator,
		"rate interpolator":     c.Rate.Interpolator,
		"dividend interpolator": c.Dividend.Interpolator,
	} {
		if _, err := ic.Combined(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

func (ic InterpolatorConfig) Combined() (interpolation.CombinedInterpolatorExtrapolator, error) {
	var out interpolation.CombinedInterpolatorExtrapolator
	i, err := interpolation.InterpolatorByName(ic.Interpolator)
	if err != nil {
		return out, err
	}
	left, err := interpolation.ExtrapolatorByName(ic.Left)
	if err != nil {
		return out, err
	}
	right, err := interpolation.ExtrapolatorByName(ic.Right)
	if err != nil {
		return out, err
	}
	return interpolation.NewCombinedInterpolatorExtrapolator(i, left, right), nil
}

func (rc RateConfig) Func() (models.RateFunc, error) {
	if len(rc.Times) == 0 {
		return models.ConstantRate(rc.Value), nil
	}
	ic, err := rc.Interpolator.Combined()
	if err != nil {
		return nil, err
	}
	return models.CurveRate(rc.Times, rc.Rates, ic)
}

// NodalSurface builds the input surface. Its z-values are implied
// volatilities or call prices depending on the mode.
func (c *Config) NodalSurface() (*surface.InterpolatedNodalSurface, error) {
	timeInterp, err := c.Surface.TimeInterpolator.Combined()
	if err != nil {
		return nil, err
	}
	strikeInterp, err := c.Surface.StrikeInterpolator.Combined()
	if err != nil {
		return nil, err
	}
	zType := surface.ImpliedVolatility
	if c.Mode == ModePrice {
		zType = surface.Price
	}
	return surface.NewInterpolatedNodalSurface(
		surface.VolatilityMetadata(c.Name, zType),
		c.Surface.Times, c.Surface.Strikes, c.Surface.Values,
		interpolation.NewGridInterpolator2D(timeInterp, strikeInterp),
	)
}

// Rates returns the interest and dividend rate functions.
func (c *Config) Rates() (models.RateFunc, models.RateFunc, error) {
	r, err := c.Rate.Func()
	if err != nil {
		return nil, nil, fmt.Errorf("rate: %w", err)
	}
	q, err := c.Dividend.Func()
	if err != nil {
		return nil, nil, fmt.Errorf("dividend: %w", err)
	}
	return r, q, nil
}

// LocalVolatility builds the input surface and derives its local volatility
// surface with the configured step.
func (c *Config) LocalVolatility() (*surface.DeformedSurface, error) {
	base, err := c.NodalSurface()
	if err != nil {
		return nil, err
	}
	r, q, err := c.Rates()
	if err != nil {
		return nil, err
	}
	calc := models.NewDupireLocalVolatilityCalculator(models.WithStep(c.Step))
	if c.Mode == ModePrice {
		return calc.LocalVolatilityFromPrice(base, c.Spot, r, q)
	}
	return calc.LocalVolatilityFromImpliedVolatility(base, c.Spot, r, q)
}
