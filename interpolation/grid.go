package interpolation

import (
	"fmt"
	"sort"
)

// GridInterpolator2D combines two 1-D interpolators into a tensor-product
// interpolator. Nodes sharing an x-value form a row that is interpolated
// along y; the row values are then interpolated along x.
type GridInterpolator2D struct {
	X CombinedInterpolatorExtrapolator
	Y CombinedInterpolatorExtrapolator
}

func NewGridInterpolator2D(x, y CombinedInterpolatorExtrapolator) GridInterpolator2D {
	return GridInterpolator2D{X: x, Y: y}
}

func (g GridInterpolator2D) String() string {
	return fmt.Sprintf("grid(%v, %v)", g.X, g.Y)
}

type gridRow struct {
	nodes []int
	curve *Curve
}

// Grid is a GridInterpolator2D fitted to a set of nodes. The x-direction
// weights do not depend on the row values, so the cross-section curve is
// bound once and only its node weights are used afterwards.
type Grid struct {
	xCurve *Curve
	rows   []gridRow
	nodes  int
}

func (g GridInterpolator2D) Bind(xs, ys, zs []float64) (*Grid, error) {
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return nil, fmt.Errorf("%w: node arrays differ in length (%d, %d, %d)", ErrInvalidArgument, len(xs), len(ys), len(zs))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidArgument)
	}

	byX := make(map[float64][]int)
	for i, x := range xs {
		byX[x] = append(byX[x], i)
	}
	keys := make([]float64, 0, len(byX))
	for x := range byX {
		keys = append(keys, x)
	}
	sort.Float64s(keys)

	rows := make([]gridRow, len(keys))
	for r, x := range keys {
		idx := byX[x]
		rowY := make([]float64, len(idx))
		rowZ := make([]float64, len(idx))
		for j, i := range idx {
			rowY[j] = ys[i]
			rowZ[j] = zs[i]
		}
		curve, err := g.Y.Bind(rowY, rowZ)
		if err != nil {
			return nil, fmt.Errorf("row x=%v: %w", x, err)
		}
		rows[r] = gridRow{nodes: idx, curve: curve}
	}
	xCurve, err := g.X.Bind(keys, make([]float64, len(keys)))
	if err != nil {
		return nil, err
	}
	return &Grid{xCurve: xCurve, rows: rows, nodes: len(xs)}, nil
}

func (g *Grid) Value(x, y float64) (float64, error) {
	xw, err := g.xCurve.ParameterSensitivity(x)
	if err != nil {
		return 0, err
	}
	var z float64
	for r, row := range g.rows {
		if xw[r] == 0 {
			continue
		}
		v, err := row.curve.Value(y)
		if err != nil {
			return 0, err
		}
		z += xw[r] * v
	}
	return z, nil
}

// ParameterSensitivity returns dValue(x, y)/dz_i in the order the nodes were bound.
func (g *Grid) ParameterSensitivity(x, y float64) ([]float64, error) {
	xw, err := g.xCurve.ParameterSensitivity(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, g.nodes)
	for r, row := range g.rows {
		if xw[r] == 0 {
			continue
		}
		yw, err := row.curve.ParameterSensitivity(y)
		if err != nil {
			return nil, err
		}
		for j, node := range row.nodes {
			out[node] += xw[r] * yw[j]
		}
	}
	return out, nil
}
