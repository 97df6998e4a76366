package surface

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Point is a location where a base surface is sampled.
type Point struct {
	X, Y float64
}

// StencilFunc returns the points at which the base surfaces are sampled to
// evaluate the deformed surface at (x, y).
type StencilFunc func(x, y float64) ([]Point, error)

// ValueFunc computes the deformed value at (x, y) from values[b][p], the value
// of base b at stencil point p.
type ValueFunc func(x, y float64, values [][]float64) (float64, error)

// SensitivityFunc computes the parameter sensitivity at (x, y) from the base
// values and sensitivities[b][p], the parameter sensitivity of base b at
// stencil point p. The result holds one entry per parameter of every base,
// in base order.
type SensitivityFunc func(x, y float64, values [][]float64, sensitivities [][][]float64) ([]float64, error)

// DeformedSurface is computed on demand from one or more base surfaces. Base
// surfaces are shared, never copied, and nothing is cached between calls.
//
// With a single base the sensitivity keeps the label of the base's own
// sensitivity, so chained deformations stay expressed in the parameters of
// the underlying nodal surface. Several bases give one concatenated vector
// labelled with this surface's name.
type DeformedSurface struct {
	metadata    Metadata
	bases       []Surface
	stencil     StencilFunc
	value       ValueFunc
	sensitivity SensitivityFunc
}

var _ Surface = (*DeformedSurface)(nil)

func NewDeformedSurface(metadata Metadata, bases []Surface, stencil StencilFunc, value ValueFunc, sensitivity SensitivityFunc) (*DeformedSurface, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("%w: deformed surface %q needs a base surface", ErrInvalidArgument, metadata.Name)
	}
	for i, b := range bases {
		if b == nil {
			return nil, fmt.Errorf("%w: deformed surface %q base %d is nil", ErrInvalidArgument, metadata.Name, i)
		}
	}
	if stencil == nil || value == nil || sensitivity == nil {
		return nil, fmt.Errorf("%w: deformed surface %q needs stencil, value and sensitivity functions", ErrInvalidArgument, metadata.Name)
	}
	return &DeformedSurface{
		metadata:    metadata,
		bases:       append([]Surface(nil), bases...),
		stencil:     stencil,
		value:       value,
		sensitivity: sensitivity,
	}, nil
}

func (s *DeformedSurface) Metadata() Metadata { return s.metadata }

func (s *DeformedSurface) Bases() []Surface {
	return append([]Surface(nil), s.bases...)
}

func (s *DeformedSurface) ZValue(x, y float64) (float64, error) {
	points, err := s.stencil(x, y)
	if err != nil {
		return 0, err
	}
	values, err := s.sample(points)
	if err != nil {
		return 0, err
	}
	return s.value(x, y, values)
}

func (s *DeformedSurface) ZValueParameterSensitivity(x, y float64) (UnitParameterSensitivity, error) {
	points, err := s.stencil(x, y)
	if err != nil {
		return UnitParameterSensitivity{}, err
	}
	values, err := s.sample(points)
	if err != nil {
		return UnitParameterSensitivity{}, err
	}
	name := s.metadata.Name
	sensitivities := make([][][]float64, len(s.bases))
	for b, base := range s.bases {
		sensitivities[b] = make([][]float64, len(points))
		for p, pt := range points {
			sens, err := base.ZValueParameterSensitivity(pt.X, pt.Y)
			if err != nil {
				return UnitParameterSensitivity{}, err
			}
			sensitivities[b][p] = sens.Sensitivity
			if len(s.bases) == 1 {
				name = sens.SurfaceName
			}
		}
	}
	out, err := s.sensitivity(x, y, values, sensitivities)
	if err != nil {
		return UnitParameterSensitivity{}, err
	}
	return NewUnitParameterSensitivity(name, out), nil
}

func (s *DeformedSurface) sample(points []Point) ([][]float64, error) {
	values := make([][]float64, len(s.bases))
	for b, base := range s.bases {
		values[b] = make([]float64, len(points))
		for p, pt := range points {
			v, err := base.ZValue(pt.X, pt.Y)
			if err != nil {
				return nil, err
			}
			values[b][p] = v
		}
	}
	return values, nil
}

// CombineStencil returns sum_p weights[p] * sensitivities[p].
func CombineStencil(weights []float64, sensitivities [][]float64) ([]float64, error) {
	if len(weights) != len(sensitivities) {
		return nil, fmt.Errorf("%w: %d stencil weights for %d sensitivities", ErrInvalidArgument, len(weights), len(sensitivities))
	}
	if len(sensitivities) == 0 {
		return nil, nil
	}
	out := make([]float64, len(sensitivities[0]))
	for p, sens := range sensitivities {
		if len(sens) != len(out) {
			return nil, fmt.Errorf("%w: stencil point %d has %d parameters, expected %d", ErrInvalidArgument, p, len(sens), len(out))
		}
		if weights[p] != 0 {
			floats.AddScaled(out, weights[p], sens)
		}
	}
	return out, nil
}
