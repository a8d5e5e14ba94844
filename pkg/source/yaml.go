// Package source reads recording sessions from YAML fixtures into
// session.Record values. The layout mirrors the fields of a CNMF-E style
// session export:
//
//	filtTraces: [[...], ...]   # frames x neurons
//	rawTraces:  [[...], ...]   # frames x neurons
//	s:          [[...], ...]   # neurons x frames
//	sfps:       [[[...]]]      # height x width x neurons
//	numNeurons: 3              # or [3], [[3]]
//	cellLabel:  [1, 0, 1]      # optional, flat or column vector
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"msneuron/pkg/session"
)

// ErrFixture is returned when a fixture is missing fields or has ragged
// arrays.
var ErrFixture = errors.New("invalid session fixture")

type fixture struct {
	FiltTraces [][]float64   `yaml:"filtTraces"`
	RawTraces  [][]float64   `yaml:"rawTraces"`
	S          [][]float64   `yaml:"s"`
	SFPs       [][][]float64 `yaml:"sfps"`
	NumNeurons scalar        `yaml:"numNeurons"`
	CellLabel  *flatList     `yaml:"cellLabel"`
}

// scalar accepts a number possibly wrapped in one-element sequences.
type scalar struct {
	value int
	set   bool
}

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	for node.Kind == yaml.SequenceNode {
		if len(node.Content) != 1 {
			return fmt.Errorf("%w: line %d: expected a single value, got %d", ErrFixture, node.Line, len(node.Content))
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a number", ErrFixture, node.Line)
	}
	f, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrFixture, node.Line, err)
	}
	s.value = int(f)
	s.set = true
	return nil
}

// flatList accepts nested sequences of numbers and flattens them in order.
type flatList []float64

func (l *flatList) UnmarshalYAML(node *yaml.Node) error {
	var out []float64
	var walk func(*yaml.Node) error
	walk = func(n *yaml.Node) error {
		switch n.Kind {
		case yaml.SequenceNode:
			for _, c := range n.Content {
				if err := walk(c); err != nil {
					return err
				}
			}
		case yaml.ScalarNode:
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrFixture, n.Line, err)
			}
			out = append(out, f)
		default:
			return fmt.Errorf("%w: line %d: expected numbers", ErrFixture, n.Line)
		}
		return nil
	}
	if err := walk(node); err != nil {
		return err
	}
	if out == nil {
		out = []float64{}
	}
	*l = out
	return nil
}

// Load reads a fixture file.
func Load(path string) (*session.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening session file: %w", err)
	}
	defer f.Close()

	rec, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Decode parses a fixture from r.
func Decode(r io.Reader) (*session.Record, error) {
	var fx fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("error parsing session: %w", err)
	}

	if !fx.NumNeurons.set {
		return nil, fmt.Errorf("%w: numNeurons is required", ErrFixture)
	}

	rec := &session.Record{NumNeurons: fx.NumNeurons.value}

	var err error
	if rec.FiltTraces, err = dense("filtTraces", fx.FiltTraces); err != nil {
		return nil, err
	}
	if rec.RawTraces, err = dense("rawTraces", fx.RawTraces); err != nil {
		return nil, err
	}
	if rec.S, err = dense("s", fx.S); err != nil {
		return nil, err
	}
	if rec.SFPs, err = stack(fx.SFPs); err != nil {
		return nil, err
	}
	if fx.CellLabel != nil {
		rec.CellLabel = []float64(*fx.CellLabel)
	}

	return rec, nil
}

func dense(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s is missing or empty", ErrFixture, name)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: %s row %d has %d values, want %d", ErrFixture, name, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func stack(cube [][][]float64) (*session.Stack, error) {
	if len(cube) == 0 || len(cube[0]) == 0 {
		return nil, fmt.Errorf("%w: sfps is missing or empty", ErrFixture)
	}
	h, w, d := len(cube), len(cube[0]), len(cube[0][0])
	s := session.NewStack(h, w, d)
	for r, plane := range cube {
		if len(plane) != w {
			return nil, fmt.Errorf("%w: sfps row %d has width %d, want %d", ErrFixture, r, len(plane), w)
		}
		for c, px := range plane {
			if len(px) != d {
				return nil, fmt.Errorf("%w: sfps pixel (%d, %d) has depth %d, want %d", ErrFixture, r, c, len(px), d)
			}
			for k, v := range px {
				s.Set(r, c, k, v)
			}
		}
	}
	return s, nil
}
