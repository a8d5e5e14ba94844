package session

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// distanceMap fills the symmetric matrix of centroid distances. Only the
// upper triangle is evaluated; the diagonal is zero even for neurons whose
// center is undefined.
func (s *Session) distanceMap() *mat.SymDense {
	n := len(s.neurons)
	if n == 0 {
		return nil
	}

	centers := make([][]float64, n)
	for i, nr := range s.neurons {
		c := nr.Center()
		centers[i] = []float64{c.Row, c.Col}
	}

	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist.SetSym(i, j, floats.Distance(centers[i], centers[j], 2))
		}
	}
	return dist
}

// DistanceMap returns the NumNeurons x NumNeurons matrix of Euclidean
// distances between neuron centers, indexed by ID-1. It is nil when the
// session has no neurons. The matrix is shared; do not modify it.
func (s *Session) DistanceMap() *mat.SymDense { return s.distMap }

// Distance returns the distance between the centers of neurons a and b.
func (s *Session) Distance(a, b int) (float64, error) {
	for _, id := range []int{a, b} {
		if id < 1 || id > len(s.neurons) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownNeuron, id)
		}
	}
	return s.distMap.At(a-1, b-1), nil
}

// Pair is an unordered pair of neurons with the distance between their
// centers. A < B always holds.
type Pair struct {
	A, B     int
	Distance float64
}

// Pairs returns every pair of neurons whose centers are at most maxDist
// apart, closest first. Pairs involving an undefined center are skipped.
// Close pairs are the usual candidates for duplicate segmentations.
func (s *Session) Pairs(maxDist float64) []Pair {
	var pairs []Pair
	n := len(s.neurons)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := s.distMap.At(i, j)
			if math.IsNaN(d) || d > maxDist {
				continue
			}
			pairs = append(pairs, Pair{A: i + 1, B: j + 1, Distance: d})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Distance < pairs[j].Distance
	})
	return pairs
}
