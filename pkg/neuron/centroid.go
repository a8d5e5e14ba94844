package neuron

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is a 2-D coordinate in pixel space, row first.
type Point struct {
	Row float64
	Col float64
}

// Defined reports whether both coordinates are numbers. The center of an
// all-zero footprint is undefined.
func (p Point) Defined() bool {
	return !math.IsNaN(p.Row) && !math.IsNaN(p.Col)
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.Row-q.Row, p.Col-q.Col)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.Row, p.Col)
}

// CenterOfMass returns the intensity-weighted mean position of m. Each
// row index is weighted by the row's total mass and each column index by
// the column's total mass. When the total mass is zero both coordinates
// are NaN.
func CenterOfMass(m mat.Matrix) Point {
	r, c := m.Dims()

	rowIdx := make([]float64, r)
	rowMass := make([]float64, r)
	colIdx := make([]float64, c)
	colMass := make([]float64, c)

	for i := 0; i < r; i++ {
		rowIdx[i] = float64(i)
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			rowMass[i] += v
			colMass[j] += v
		}
	}
	for j := 0; j < c; j++ {
		colIdx[j] = float64(j)
	}

	return Point{
		Row: stat.Mean(rowIdx, rowMass),
		Col: stat.Mean(colIdx, colMass),
	}
}
