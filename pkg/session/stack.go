package session

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stack is a dense 3-D array of spatial footprints shaped
// Height x Width x Depth, one slab per neuron along the last axis.
type Stack struct {
	// Data is stored row-major with the neuron axis varying fastest:
	// element (r, c, k) lives at (r*Width+c)*Depth + k.
	Data []float64

	Height int
	Width  int
	Depth  int
}

// NewStack allocates a zeroed stack.
func NewStack(height, width, depth int) *Stack {
	return &Stack{
		Data:   make([]float64, height*width*depth),
		Height: height,
		Width:  width,
		Depth:  depth,
	}
}

// StackFromSlabs builds a stack from per-neuron masks that all share the
// same dimensions.
func StackFromSlabs(slabs ...mat.Matrix) (*Stack, error) {
	if len(slabs) == 0 {
		return nil, fmt.Errorf("%w: no footprints", ErrShape)
	}
	h, w := slabs[0].Dims()
	s := NewStack(h, w, len(slabs))
	for k, slab := range slabs {
		r, c := slab.Dims()
		if r != h || c != w {
			return nil, fmt.Errorf("%w: footprint %d is %dx%d, want %dx%d", ErrShape, k, r, c, h, w)
		}
		for i := 0; i < h; i++ {
			for j := 0; j < w; j++ {
				s.Set(i, j, k, slab.At(i, j))
			}
		}
	}
	return s, nil
}

func (s *Stack) index(r, c, k int) int {
	return (r*s.Width+c)*s.Depth + k
}

// At returns element (r, c, k).
func (s *Stack) At(r, c, k int) float64 {
	return s.Data[s.index(r, c, k)]
}

// Set assigns element (r, c, k).
func (s *Stack) Set(r, c, k int, v float64) {
	s.Data[s.index(r, c, k)] = v
}

// Slab copies footprint k into a Height x Width matrix.
func (s *Stack) Slab(k int) *mat.Dense {
	m := mat.NewDense(s.Height, s.Width, nil)
	for r := 0; r < s.Height; r++ {
		for c := 0; c < s.Width; c++ {
			m.Set(r, c, s.At(r, c, k))
		}
	}
	return m
}

func (s *Stack) validate() error {
	if s.Height <= 0 || s.Width <= 0 || s.Depth < 0 {
		return fmt.Errorf("%w: footprint stack is %dx%dx%d", ErrShape, s.Height, s.Width, s.Depth)
	}
	if want := s.Height * s.Width * s.Depth; len(s.Data) != want {
		return fmt.Errorf("%w: footprint stack holds %d values, want %d", ErrShape, len(s.Data), want)
	}
	return nil
}
