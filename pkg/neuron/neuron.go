// Package neuron models a single segmented cell from a calcium-imaging
// session and the identity-keyed registry used to group cells during
// curation.
//
// A Neuron carries its filtered and raw fluorescence traces, the inferred
// spike train, a 2-D spatial footprint (ROI) and a Good/Bad quality label.
// The footprint centroid is computed once at construction and cached, so
// the ROI is never exposed for mutation.
package neuron

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidID is returned when a neuron ID is below 1.
	ErrInvalidID = errors.New("neuron ID must be >= 1")

	// ErrEmptyROI is returned when the footprint is missing or has no pixels.
	ErrEmptyROI = errors.New("ROI must be a non-empty 2-D mask")
)

// Label is the binary quality judgement attached to a neuron.
type Label bool

const (
	Bad  Label = false
	Good Label = true
)

// LabelFromValue applies the numeric threshold used by curation files:
// any value above zero is Good.
func LabelFromValue(v float64) Label {
	return Label(v > 0)
}

// String returns "Good" or "Bad".
func (l Label) String() string {
	if l {
		return "Good"
	}
	return "Bad"
}

// Value returns 1 for Good and 0 for Bad.
func (l Label) Value() float64 {
	if l {
		return 1
	}
	return 0
}

// DisplayHandle is the hook a visualization layer attaches to a neuron
// (for instance a contour item drawn over the field of view).
type DisplayHandle interface {
	SetVisible(visible bool)
}

// Option configures a Neuron at construction.
type Option func(*Neuron)

// WithLegacyToggle makes ToggleLabel reproduce the behaviour of the older
// curation tool, where the toggle compared the label text against zero and
// therefore always marked the neuron Bad. Only useful to replay old
// curation sessions.
func WithLegacyToggle() Option {
	return func(n *Neuron) {
		n.legacyToggle = true
	}
}

// WithHandle attaches a display handle at construction.
func WithHandle(h DisplayHandle) Option {
	return func(n *Neuron) {
		n.handle = h
	}
}

// Neuron is one segmented cell.
type Neuron struct {
	filtTrace []float64
	rawTrace  []float64
	spike     []float64
	roi       *mat.Dense
	id        int

	// Visible is a display-only flag; nothing in this package reads it.
	Visible bool

	center Point
	label  Label

	handle       DisplayHandle
	legacyToggle bool
}

// New builds a neuron from its traces, spike train, footprint, numeric
// label and 1-based ID. The footprint is copied and its center of mass
// computed immediately. A footprint whose weights sum to zero is accepted
// but yields an undefined (NaN) center; see Point.Defined.
func New(filtTrace, rawTrace, spike []float64, roi mat.Matrix, label float64, id int, opts ...Option) (*Neuron, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidID, id)
	}
	if roi == nil {
		return nil, ErrEmptyROI
	}
	if r, c := roi.Dims(); r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmptyROI, r, c)
	}

	n := &Neuron{
		filtTrace: filtTrace,
		rawTrace:  rawTrace,
		spike:     spike,
		roi:       mat.DenseCopyOf(roi),
		id:        id,
		Visible:   true,
		label:     LabelFromValue(label),
	}
	n.center = CenterOfMass(n.roi)

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// ID returns the 1-based identifier.
func (n *Neuron) ID() int { return n.id }

// Center returns the cached centroid of the footprint.
func (n *Neuron) Center() Point { return n.center }

// ROI returns the footprint. Callers must treat it as read-only; the
// centroid is not recomputed.
func (n *Neuron) ROI() *mat.Dense { return n.roi }

// FiltTrace returns the filtered fluorescence trace.
func (n *Neuron) FiltTrace() []float64 { return n.filtTrace }

// RawTrace returns the raw fluorescence trace.
func (n *Neuron) RawTrace() []float64 { return n.rawTrace }

// Spike returns the inferred spike train.
func (n *Neuron) Spike() []float64 { return n.spike }

// Label returns the current label.
func (n *Neuron) Label() Label { return n.label }

// IsGood reports whether the neuron is currently labelled Good.
func (n *Neuron) IsGood() bool { return bool(n.label) }

// SetGood labels the neuron Good.
func (n *Neuron) SetGood() { n.SetLabelValue(1) }

// SetBad labels the neuron Bad.
func (n *Neuron) SetBad() { n.SetLabelValue(0) }

// SetLabelValue sets the label from a numeric value using the > 0 threshold.
func (n *Neuron) SetLabelValue(v float64) {
	n.label = LabelFromValue(v)
}

// ToggleLabel flips the label between Good and Bad.
func (n *Neuron) ToggleLabel() {
	if n.legacyToggle {
		n.SetBad()
		return
	}
	n.label = !n.label
}

// MaxFiltFrame returns the frame index of the filtered trace maximum. Ties
// resolve to the earliest frame; an empty trace returns -1.
func (n *Neuron) MaxFiltFrame() int { return argmax(n.filtTrace) }

// MaxRawFrame returns the frame index of the raw trace maximum. Ties
// resolve to the earliest frame; an empty trace returns -1.
func (n *Neuron) MaxRawFrame() int { return argmax(n.rawTrace) }

// SpikeCount returns the number of frames with a non-zero spike value.
func (n *Neuron) SpikeCount() int {
	count := 0
	for _, s := range n.spike {
		if s != 0 {
			count++
		}
	}
	return count
}

// Attach sets the display handle, replacing any previous one.
func (n *Neuron) Attach(h DisplayHandle) { n.handle = h }

// Handle returns the attached display handle, or nil.
func (n *Neuron) Handle() DisplayHandle { return n.handle }

// SetVisible records the visibility flag and forwards it to the display
// handle when one is attached.
func (n *Neuron) SetVisible(visible bool) {
	n.Visible = visible
	if n.handle != nil {
		n.handle.SetVisible(visible)
	}
}

// String implements fmt.Stringer.
func (n *Neuron) String() string {
	return fmt.Sprintf("Neuron(%d, %s, center=%s)", n.id, n.label, n.center)
}

func argmax(s []float64) int {
	if len(s) == 0 {
		return -1
	}
	return floats.MaxIdx(s)
}
