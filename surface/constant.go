package surface

import "fmt"

// ConstantNodalSurface has the same value everywhere. Its single parameter is
// that value.
type ConstantNodalSurface struct {
	metadata Metadata
	z        float64
}

var _ NodalSurface = ConstantNodalSurface{}

func NewConstantNodalSurface(name string, z float64) ConstantNodalSurface {
	return ConstantNodalSurface{metadata: DefaultMetadata(name), z: z}
}

func NewConstantNodalSurfaceWithMetadata(metadata Metadata, z float64) ConstantNodalSurface {
	return ConstantNodalSurface{metadata: metadata, z: z}
}

func (s ConstantNodalSurface) Metadata() Metadata  { return s.metadata }
func (s ConstantNodalSurface) XValues() []float64  { return []float64{0} }
func (s ConstantNodalSurface) YValues() []float64  { return []float64{0} }
func (s ConstantNodalSurface) ZValues() []float64  { return []float64{s.z} }
func (s ConstantNodalSurface) ParameterCount() int { return 1 }

func (s ConstantNodalSurface) ZValue(x, y float64) (float64, error) {
	return s.z, nil
}

func (s ConstantNodalSurface) ZValueParameterSensitivity(x, y float64) (UnitParameterSensitivity, error) {
	return NewUnitParameterSensitivity(s.metadata.Name, []float64{1}), nil
}

func (s ConstantNodalSurface) WithZValues(zs []float64) (ConstantNodalSurface, error) {
	if len(zs) != 1 {
		return ConstantNodalSurface{}, fmt.Errorf("%w: constant surface %q takes 1 z-value, got %d", ErrInvalidArgument, s.metadata.Name, len(zs))
	}
	return ConstantNodalSurface{metadata: s.metadata, z: zs[0]}, nil
}
