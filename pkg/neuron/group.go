package neuron

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"msneuron/internal/logger"
)

var (
	// ErrNilNeuron is returned when adding a nil neuron.
	ErrNilNeuron = errors.New("nil neuron")

	// ErrDuplicateID is returned when a neuron with the same ID is already
	// registered. The existing entry is kept.
	ErrDuplicateID = errors.New("neuron ID already exists")
)

// Group is a registry of neurons keyed by ID. It holds references only;
// the neurons belong to whoever built them (usually a session) and a Group
// must not be used after that owner discards them.
//
// A Group is not safe for concurrent use.
type Group struct {
	neurons map[int]*Neuron
	logger  *log.Logger
}

// NewGroup returns a group populated with the given neurons in order.
// Nil entries are skipped and duplicate IDs are logged and ignored.
func NewGroup(neurons ...*Neuron) *Group {
	g := &Group{
		neurons: make(map[int]*Neuron, len(neurons)),
		logger:  logger.New("group"),
	}
	for _, n := range neurons {
		_ = g.Add(n)
	}
	return g
}

// SetLogger replaces the logger used for duplicate-ID warnings.
func (g *Group) SetLogger(l *log.Logger) {
	g.logger = l
}

// Add registers n. It returns ErrNilNeuron for a nil neuron and
// ErrDuplicateID, after logging a warning, when the ID is already taken.
func (g *Group) Add(n *Neuron) error {
	if n == nil {
		return ErrNilNeuron
	}
	if _, ok := g.neurons[n.id]; ok {
		g.logger.Warn("Neuron ID already exists", "id", n.id)
		return fmt.Errorf("%w: %d", ErrDuplicateID, n.id)
	}
	g.neurons[n.id] = n
	return nil
}

// Pop removes the entry with n's ID and returns it. The second result is
// false when no such entry exists.
func (g *Group) Pop(n *Neuron) (*Neuron, bool) {
	if n == nil {
		return nil, false
	}
	found, ok := g.neurons[n.id]
	if !ok {
		return nil, false
	}
	delete(g.neurons, n.id)
	return found, true
}

// IsIn reports whether a neuron with n's ID is registered.
func (g *Group) IsIn(n *Neuron) bool {
	if n == nil {
		return false
	}
	_, ok := g.neurons[n.id]
	return ok
}

// Get looks up a neuron by ID.
func (g *Group) Get(id int) (*Neuron, bool) {
	n, ok := g.neurons[id]
	return n, ok
}

// Len returns the number of registered neurons.
func (g *Group) Len() int { return len(g.neurons) }

// IDs returns the registered IDs in ascending order.
func (g *Group) IDs() []int {
	ids := make([]int, 0, len(g.neurons))
	for id := range g.neurons {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Neurons returns the registered neurons ordered by ID.
func (g *Group) Neurons() []*Neuron {
	ids := g.IDs()
	out := make([]*Neuron, len(ids))
	for i, id := range ids {
		out[i] = g.neurons[id]
	}
	return out
}

// ContourItems collects the display handles of all members, ordered by
// ID. Members without a handle are skipped.
func (g *Group) ContourItems() []DisplayHandle {
	items := make([]DisplayHandle, 0, len(g.neurons))
	for _, n := range g.Neurons() {
		if n.handle != nil {
			items = append(items, n.handle)
		}
	}
	return items
}

// SetVisible forwards the visibility flag to every member.
func (g *Group) SetVisible(visible bool) {
	for _, n := range g.neurons {
		n.SetVisible(visible)
	}
}

// Good returns a new group holding the members currently labelled Good.
func (g *Group) Good() *Group {
	return g.filter(func(n *Neuron) bool { return n.IsGood() })
}

// Bad returns a new group holding the members currently labelled Bad.
func (g *Group) Bad() *Group {
	return g.filter(func(n *Neuron) bool { return !n.IsGood() })
}

func (g *Group) filter(keep func(*Neuron) bool) *Group {
	out := &Group{
		neurons: make(map[int]*Neuron),
		logger:  g.logger,
	}
	for id, n := range g.neurons {
		if keep(n) {
			out.neurons[id] = n
		}
	}
	return out
}
