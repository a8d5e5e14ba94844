// Package visualization draws neuron footprints and the distance map. It
// provides the display handles that neurons forward visibility changes to.
package visualization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// distanceGrid adapts a symmetric distance matrix to plotter.GridXYZ.
// Columns and rows are labelled with 1-based neuron IDs.
type distanceGrid struct {
	m mat.Symmetric
}

func (g distanceGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

func (g distanceGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g distanceGrid) X(c int) float64    { return float64(c + 1) }
func (g distanceGrid) Y(r int) float64    { return float64(r + 1) }

// SaveDistanceHeatMap renders dist as a heat map. The image format follows
// the file extension (png, svg, pdf, jpg).
func SaveDistanceHeatMap(dist mat.Symmetric, filename string, size vg.Length) error {
	if dist == nil || dist.SymmetricDim() == 0 {
		return fmt.Errorf("distance map is empty")
	}

	p := plot.New()
	p.Title.Text = "Centroid distance"
	p.X.Label.Text = "Neuron ID"
	p.Y.Label.Text = "Neuron ID"

	h := plotter.NewHeatMap(distanceGrid{m: dist}, palette.Heat(12, 1))
	p.Add(h)

	if err := p.Save(size, size, filename); err != nil {
		return fmt.Errorf("failed to save heat map: %w", err)
	}
	return nil
}
