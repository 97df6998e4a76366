package surface

import (
	"fmt"

	"github.com/bcdannyboy/dupire/interpolation"
)

// InterpolatedNodalSurface interpolates a set of (x, y, z) nodes with a
// two-dimensional grid interpolator.
type InterpolatedNodalSurface struct {
	metadata     Metadata
	xs, ys, zs   []float64
	interpolator interpolation.GridInterpolator2D
	grid         *interpolation.Grid
}

var _ NodalSurface = (*InterpolatedNodalSurface)(nil)

func NewInterpolatedNodalSurface(metadata Metadata, xs, ys, zs []float64, interpolator interpolation.GridInterpolator2D) (*InterpolatedNodalSurface, error) {
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return nil, fmt.Errorf("%w: surface %q node arrays differ in length (%d, %d, %d)", ErrInvalidArgument, metadata.Name, len(xs), len(ys), len(zs))
	}
	s := &InterpolatedNodalSurface{
		metadata:     metadata,
		xs:           copyOf(xs),
		ys:           copyOf(ys),
		zs:           copyOf(zs),
		interpolator: interpolator,
	}
	grid, err := interpolator.Bind(s.xs, s.ys, s.zs)
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", metadata.Name, err)
	}
	s.grid = grid
	return s, nil
}

func (s *InterpolatedNodalSurface) Metadata() Metadata { return s.metadata }
func (s *InterpolatedNodalSurface) XValues() []float64 { return copyOf(s.xs) }
func (s *InterpolatedNodalSurface) YValues() []float64 { return copyOf(s.ys) }
func (s *InterpolatedNodalSurface) ZValues() []float64 { return copyOf(s.zs) }
func (s *InterpolatedNodalSurface) ParameterCount() int { return len(s.zs) }

func (s *InterpolatedNodalSurface) Interpolator() interpolation.GridInterpolator2D {
	return s.interpolator
}

func (s *InterpolatedNodalSurface) ZValue(x, y float64) (float64, error) {
	return s.grid.Value(x, y)
}

func (s *InterpolatedNodalSurface) ZValueParameterSensitivity(x, y float64) (UnitParameterSensitivity, error) {
	w, err := s.grid.ParameterSensitivity(x, y)
	if err != nil {
		return UnitParameterSensitivity{}, err
	}
	return NewUnitParameterSensitivity(s.metadata.Name, w), nil
}

// WithZValues returns a surface with the same nodes and interpolator and new z-values.
func (s *InterpolatedNodalSurface) WithZValues(zs []float64) (*InterpolatedNodalSurface, error) {
	if len(zs) != len(s.zs) {
		return nil, fmt.Errorf("%w: surface %q has %d nodes, got %d z-values", ErrInvalidArgument, s.metadata.Name, len(s.zs), len(zs))
	}
	return NewInterpolatedNodalSurface(s.metadata, s.xs, s.ys, zs, s.interpolator)
}

// WithParameter returns a surface with the z-value of node i replaced.
func (s *InterpolatedNodalSurface) WithParameter(i int, z float64) (*InterpolatedNodalSurface, error) {
	if i < 0 || i >= len(s.zs) {
		return nil, fmt.Errorf("%w: node %d out of range [0, %d)", ErrInvalidArgument, i, len(s.zs))
	}
	zs := copyOf(s.zs)
	zs[i] = z
	return s.WithZValues(zs)
}

func (s *InterpolatedNodalSurface) WithMetadata(metadata Metadata) *InterpolatedNodalSurface {
	c := *s
	c.metadata = metadata
	return &c
}

func copyOf(v []float64) []float64 {
	return append([]float64(nil), v...)
}
