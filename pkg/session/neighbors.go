package session

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"msneuron/pkg/neuron"
)

// centroid is a neuron center stored in the spatial index.
type centroid struct {
	neuron.Point
	id int
}

// Compare implements the kdtree.Comparable interface
func (p centroid) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(centroid)
	if d == 0 {
		return p.Row - q.Row
	}
	return p.Col - q.Col
}

// Dims implements the kdtree.Comparable interface
func (p centroid) Dims() int { return 2 }

// Distance returns the squared Euclidean distance
func (p centroid) Distance(c kdtree.Comparable) float64 {
	q := c.(centroid)
	dr := p.Row - q.Row
	dc := p.Col - q.Col
	return dr*dr + dc*dc
}

// centroids satisfies kdtree.Interface
type centroids []centroid

func (p centroids) Index(i int) kdtree.Comparable        { return p[i] }
func (p centroids) Len() int                              { return len(p) }
func (p centroids) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p centroids) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(centroidPlane{centroids: p, Dim: d}, kdtree.MedianOfRandoms(centroidPlane{centroids: p, Dim: d}, 100))
}

// centroidPlane implements kdtree.SortSlicer for centroids
type centroidPlane struct {
	centroids
	kdtree.Dim
}

func (p centroidPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.centroids[i].Row < p.centroids[j].Row
	}
	return p.centroids[i].Col < p.centroids[j].Col
}

func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	return centroidPlane{centroids: p.centroids[start:end], Dim: p.Dim}
}

func (p centroidPlane) Swap(i, j int) {
	p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i]
}

// buildIndex indexes every neuron with a defined center.
func (s *Session) buildIndex() *kdtree.Tree {
	points := make(centroids, 0, len(s.neurons))
	for _, n := range s.neurons {
		if n.Center().Defined() {
			points = append(points, centroid{Point: n.Center(), id: n.ID()})
		}
	}
	if len(points) == 0 {
		return nil
	}
	return kdtree.New(points, true)
}

// Neighbor is one result of a nearest-neighbour query.
type Neighbor struct {
	ID       int
	Distance float64
}

// Nearest returns up to k neurons whose centers are closest to the center
// of neuron id, closest first. The neuron itself is not included.
func (s *Session) Nearest(id, k int) ([]Neighbor, error) {
	n, err := s.Neuron(id)
	if err != nil {
		return nil, err
	}
	if !n.Center().Defined() {
		return nil, fmt.Errorf("%w: neuron %d", ErrUndefinedCenter, id)
	}
	if k <= 0 || s.index == nil {
		return nil, nil
	}

	keeper := kdtree.NewNKeeper(k + 1)
	s.index.NearestSet(keeper, centroid{Point: n.Center(), id: id})

	result := make([]Neighbor, 0, k)
	for _, item := range keeper.Heap {
		// Skip the sentinel value
		if item.Comparable == nil {
			continue
		}
		c := item.Comparable.(centroid)
		if c.id == id {
			continue
		}
		result = append(result, Neighbor{ID: c.id, Distance: math.Sqrt(item.Dist)})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance == result[j].Distance {
			return result[i].ID < result[j].ID
		}
		return result[i].Distance < result[j].Distance
	})
	if len(result) > k {
		result = result[:k]
	}
	return result, nil
}
