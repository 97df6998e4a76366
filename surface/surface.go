// Package surface defines two-dimensional surfaces z = f(x, y) together with
// the sensitivity of z to the parameters the surface is built from.
//
// All surfaces are immutable. Methods never modify the receiver and may be
// called concurrently; "modifying" a surface returns a new one.
package surface

import (
	"fmt"

	"github.com/bcdannyboy/dupire/interpolation"
)

// ErrInvalidArgument is the same sentinel the interpolation package uses, so
// interpolation failures surface unchanged.
var ErrInvalidArgument = interpolation.ErrInvalidArgument

// Surface is a scalar function of two coordinates with parameter sensitivity.
type Surface interface {
	Metadata() Metadata
	ZValue(x, y float64) (float64, error)
	// ZValueParameterSensitivity returns dz/dp_i for each parameter p_i.
	ZValueParameterSensitivity(x, y float64) (UnitParameterSensitivity, error)
}

// NodalSurface is a surface whose parameters are the z-values at a set of nodes.
type NodalSurface interface {
	Surface
	XValues() []float64
	YValues() []float64
	ZValues() []float64
	ParameterCount() int
}

// Well known value types.
const (
	YearFraction      = "YearFraction"
	Strike            = "Strike"
	ImpliedVolatility = "ImpliedVolatility"
	LocalVolatility   = "LocalVolatility"
	Price             = "Price"
	Unknown           = "Unknown"
)

// Metadata describes a surface. It labels sensitivities but takes no part in
// any computation.
type Metadata struct {
	Name       string
	XValueType string
	YValueType string
	ZValueType string
}

func DefaultMetadata(name string) Metadata {
	return Metadata{
		Name:       name,
		XValueType: Unknown,
		YValueType: Unknown,
		ZValueType: Unknown,
	}
}

// VolatilityMetadata is the metadata of a (time, strike) surface of zType values.
func VolatilityMetadata(name, zType string) Metadata {
	return Metadata{
		Name:       name,
		XValueType: YearFraction,
		YValueType: Strike,
		ZValueType: zType,
	}
}

// Property looks a metadata field up by name.
func (m Metadata) Property(name string) (string, error) {
	switch name {
	case "name":
		return m.Name, nil
	case "xValueType":
		return m.XValueType, nil
	case "yValueType":
		return m.YValueType, nil
	case "zValueType":
		return m.ZValueType, nil
	}
	return "", fmt.Errorf("%w: unknown metadata property %q", ErrInvalidArgument, name)
}
