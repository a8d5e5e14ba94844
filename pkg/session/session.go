// Package session turns an upstream recording-session record into an
// ordered list of neurons and derives the pairwise centroid distance map.
//
// A Session is built in a single pass and is immutable afterwards: the
// neuron list cannot grow or shrink. Curation that needs a mutable
// membership works on a neuron.Group obtained from Group.
package session

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"

	"msneuron/internal/logger"
	"msneuron/pkg/neuron"
)

var (
	// ErrShape is returned when record fields disagree with NumNeurons or
	// with each other.
	ErrShape = errors.New("malformed session record")

	// ErrUnknownNeuron is returned for IDs outside 1..NumNeurons.
	ErrUnknownNeuron = errors.New("unknown neuron ID")

	// ErrUndefinedCenter is returned for spatial queries on a neuron whose
	// footprint has zero mass.
	ErrUndefinedCenter = errors.New("neuron center is undefined")
)

// Record is the upstream representation of a recording session, as
// produced by a session file reader.
type Record struct {
	// FiltTraces and RawTraces are frames x neurons.
	FiltTraces *mat.Dense
	RawTraces  *mat.Dense

	// S holds the spike trains, neurons x frames.
	S *mat.Dense

	// SFPs holds the spatial footprints, height x width x neurons.
	SFPs *Stack

	NumNeurons int

	// CellLabel holds per-neuron numeric labels. Nil means the record has
	// no labels and every neuron starts Good.
	CellLabel []float64
}

// Option configures a Session.
type Option func(*Session)

// WithLegacyToggle builds every neuron with neuron.WithLegacyToggle.
func WithLegacyToggle() Option {
	return func(s *Session) {
		s.neuronOpts = append(s.neuronOpts, neuron.WithLegacyToggle())
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session is the in-memory model of one recording.
type Session struct {
	ID uuid.UUID

	FiltTraces *mat.Dense
	RawTraces  *mat.Dense
	Spikes     *mat.Dense
	ROIs       *Stack
	NumNeurons int
	Labels     []float64

	empty   bool
	neurons []*neuron.Neuron
	distMap *mat.SymDense
	index   *kdtree.Tree

	neuronOpts []neuron.Option
	logger     *log.Logger
}

// Empty returns a session that holds no data. It is distinguishable from a
// loaded session with zero neurons through IsEmpty.
func Empty() *Session {
	return &Session{
		ID:     uuid.New(),
		empty:  true,
		logger: logger.New("session"),
	}
}

// New builds a session from rec. A nil record yields Empty(). Otherwise
// one neuron per column of the traces is created with IDs starting at 1,
// and the distance map is computed.
func New(rec *Record, opts ...Option) (*Session, error) {
	if rec == nil {
		s := Empty()
		for _, opt := range opts {
			opt(s)
		}
		return s, nil
	}

	s := &Session{
		ID:         uuid.New(),
		FiltTraces: rec.FiltTraces,
		RawTraces:  rec.RawTraces,
		Spikes:     rec.S,
		ROIs:       rec.SFPs,
		NumNeurons: rec.NumNeurons,
		logger:     logger.New("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.ID.String()[:8])

	if err := validate(rec); err != nil {
		return nil, err
	}

	if rec.CellLabel != nil {
		s.Labels = append([]float64(nil), rec.CellLabel[:s.NumNeurons]...)
	} else {
		s.Labels = make([]float64, s.NumNeurons)
		for i := range s.Labels {
			s.Labels[i] = 1
		}
	}

	s.neurons = make([]*neuron.Neuron, 0, s.NumNeurons)
	for i := 0; i < s.NumNeurons; i++ {
		filt := mat.Col(nil, i, s.FiltTraces)
		raw := mat.Col(nil, i, s.RawTraces)
		spike := mat.Row(nil, i, s.Spikes)
		roi := s.ROIs.Slab(i)

		n, err := neuron.New(filt, raw, spike, roi, s.Labels[i], i+1, s.neuronOpts...)
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", i+1, err)
		}
		if !n.Center().Defined() {
			s.logger.Warn("Footprint has zero mass, center is undefined", "id", n.ID())
		}
		s.neurons = append(s.neurons, n)
	}

	s.distMap = s.distanceMap()
	s.index = s.buildIndex()

	s.logger.Debug("Session loaded", "neurons", s.NumNeurons)
	return s, nil
}

func validate(rec *Record) error {
	n := rec.NumNeurons
	if n < 0 {
		return fmt.Errorf("%w: numNeurons is %d", ErrShape, n)
	}
	if rec.FiltTraces == nil || rec.RawTraces == nil || rec.S == nil || rec.SFPs == nil {
		return fmt.Errorf("%w: FiltTraces, RawTraces, S and SFPs are required", ErrShape)
	}
	if err := rec.SFPs.validate(); err != nil {
		return err
	}
	if _, c := rec.FiltTraces.Dims(); c < n {
		return fmt.Errorf("%w: FiltTraces has %d columns for %d neurons", ErrShape, c, n)
	}
	if _, c := rec.RawTraces.Dims(); c < n {
		return fmt.Errorf("%w: RawTraces has %d columns for %d neurons", ErrShape, c, n)
	}
	if r, _ := rec.S.Dims(); r < n {
		return fmt.Errorf("%w: S has %d rows for %d neurons", ErrShape, r, n)
	}
	if rec.SFPs.Depth < n {
		return fmt.Errorf("%w: SFPs has %d footprints for %d neurons", ErrShape, rec.SFPs.Depth, n)
	}
	if rec.CellLabel != nil && len(rec.CellLabel) < n {
		return fmt.Errorf("%w: cell_label has %d entries for %d neurons", ErrShape, len(rec.CellLabel), n)
	}
	return nil
}

// IsEmpty reports whether the session was built without a record.
func (s *Session) IsEmpty() bool { return s.empty }

// HasNeuron reports whether the session holds at least one neuron.
func (s *Session) HasNeuron() bool { return s.NumNeurons > 0 }

// Neurons returns the neurons in ID order. Index i holds ID i+1.
func (s *Session) Neurons() []*neuron.Neuron { return s.neurons }

// Neuron returns the neuron with the given 1-based ID.
func (s *Session) Neuron(id int) (*neuron.Neuron, error) {
	if id < 1 || id > len(s.neurons) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNeuron, id)
	}
	return s.neurons[id-1], nil
}

// Group returns a registry referencing every neuron of the session.
func (s *Session) Group() *neuron.Group {
	return neuron.NewGroup(s.neurons...)
}

// CellLabels returns one entry per neuron, 1 where the neuron is currently
// Good and 0 otherwise, positioned at ID-1.
func (s *Session) CellLabels() []float64 {
	labels := make([]float64, s.NumNeurons)
	for _, n := range s.neurons {
		if n.IsGood() {
			labels[n.ID()-1] = 1
		}
	}
	return labels
}

// Summary counts neurons by their current label.
type Summary struct {
	Neurons int
	Good    int
	Bad     int
}

// Summary returns label counts.
func (s *Session) Summary() Summary {
	sum := Summary{Neurons: len(s.neurons)}
	for _, n := range s.neurons {
		if n.IsGood() {
			sum.Good++
		} else {
			sum.Bad++
		}
	}
	return sum
}
