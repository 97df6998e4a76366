package surface

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// UnitParameterSensitivity is the sensitivity of one value to each parameter
// of the named surface, in the surface's parameter order.
type UnitParameterSensitivity struct {
	SurfaceName string    `json:"surfaceName"`
	Sensitivity []float64 `json:"sensitivity"`
}

func NewUnitParameterSensitivity(name string, sensitivity []float64) UnitParameterSensitivity {
	return UnitParameterSensitivity{
		SurfaceName: name,
		Sensitivity: sensitivity,
	}
}

func (s UnitParameterSensitivity) ParameterCount() int {
	return len(s.Sensitivity)
}

func (s UnitParameterSensitivity) MultipliedBy(factor float64) UnitParameterSensitivity {
	out := make([]float64, len(s.Sensitivity))
	floats.ScaleTo(out, factor, s.Sensitivity)
	return NewUnitParameterSensitivity(s.SurfaceName, out)
}

// Plus adds two sensitivities to the same surface.
func (s UnitParameterSensitivity) Plus(other UnitParameterSensitivity) (UnitParameterSensitivity, error) {
	if s.SurfaceName != other.SurfaceName {
		return UnitParameterSensitivity{}, fmt.Errorf("%w: cannot add sensitivities to %q and %q", ErrInvalidArgument, s.SurfaceName, other.SurfaceName)
	}
	if len(s.Sensitivity) != len(other.Sensitivity) {
		return UnitParameterSensitivity{}, fmt.Errorf("%w: sensitivity lengths %d and %d differ", ErrInvalidArgument, len(s.Sensitivity), len(other.Sensitivity))
	}
	out := make([]float64, len(s.Sensitivity))
	floats.AddTo(out, s.Sensitivity, other.Sensitivity)
	return NewUnitParameterSensitivity(s.SurfaceName, out), nil
}

func (s UnitParameterSensitivity) Total() float64 {
	return floats.Sum(s.Sensitivity)
}
