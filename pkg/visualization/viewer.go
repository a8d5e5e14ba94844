package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"msneuron/pkg/neuron"
)

// ROIItem is the display handle for one neuron footprint. It implements
// neuron.DisplayHandle so that visibility toggles issued on a neuron or a
// neuron.Group reach the rendered overlay.
type ROIItem struct {
	id        int
	footprint *mat.Dense
	peak      float64
	visible   bool
}

// NewROIItem creates a visible item for n's footprint.
func NewROIItem(n *neuron.Neuron) *ROIItem {
	return &ROIItem{
		id:        n.ID(),
		footprint: n.ROI(),
		peak:      mat.Max(n.ROI()),
		visible:   n.Visible,
	}
}

// SetVisible implements neuron.DisplayHandle.
func (it *ROIItem) SetVisible(visible bool) { it.visible = visible }

// Visible reports whether the item is drawn in overlays.
func (it *ROIItem) Visible() bool { return it.visible }

// ID returns the neuron ID the item belongs to.
func (it *ROIItem) ID() int { return it.id }

// intensity returns the footprint value at (r, c) scaled to [0, 1] by the
// footprint peak.
func (it *ROIItem) intensity(r, c int) float64 {
	if it.peak <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, it.footprint.At(r, c)/it.peak))
}

// Viewer renders neuron footprints over a shared field of view.
type Viewer struct {
	items []*ROIItem

	// dimensions of the field of view
	height int
	width  int

	// quality is the JPEG quality used when saving
	quality int
}

// NewViewer creates a viewer for a height x width field of view
func NewViewer(height, width, quality int) *Viewer {
	return &Viewer{
		height:  height,
		width:   width,
		quality: quality,
	}
}

// Attach creates an ROIItem for every neuron, attaches it as the neuron's
// display handle and adds it to the viewer. Neurons whose footprint does
// not match the field of view are rejected.
func (v *Viewer) Attach(neurons ...*neuron.Neuron) error {
	for _, n := range neurons {
		r, c := n.ROI().Dims()
		if r != v.height || c != v.width {
			return fmt.Errorf("neuron %d footprint is %dx%d, field of view is %dx%d", n.ID(), r, c, v.height, v.width)
		}
		item := NewROIItem(n)
		n.Attach(item)
		v.items = append(v.items, item)
	}
	return nil
}

// Items returns the attached items in attach order.
func (v *Viewer) Items() []*ROIItem { return v.items }

// Overlay draws the maximum projection of all visible footprints
func (v *Viewer) Overlay() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			value := 0.0
			for _, it := range v.items {
				if it.visible {
					value = math.Max(value, it.intensity(y, x))
				}
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(value * 65535)})
		}
	}
	return img
}

// ExtractFootprint draws a single neuron footprint regardless of its
// visibility
func (v *Viewer) ExtractFootprint(id int) (*image.Gray16, error) {
	for _, it := range v.items {
		if it.id != id {
			continue
		}
		img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
		for y := 0; y < v.height; y++ {
			for x := 0; x < v.width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(it.intensity(y, x) * 65535)})
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("no footprint attached for neuron %d", id)
}

// SaveImage saves an image as a JPEG file
func (v *Viewer) SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: v.quality})
}

// SaveFootprintSequence writes one JPEG per attached footprint plus the
// overlay of visible footprints
func (v *Viewer) SaveFootprintSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, it := range v.items {
		img, err := v.ExtractFootprint(it.id)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("roi_%03d.jpg", it.id))
		if err := v.SaveImage(img, filename); err != nil {
			return err
		}
	}

	return v.SaveImage(v.Overlay(), filepath.Join(outputDir, "overlay.jpg"))
}
