package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"msneuron/internal/logger"
	"msneuron/pkg/session"
)

// Three neurons in a 4x5 field of view with unit footprints at (0,0),
// (3,0) and (0,4).
const triangleFixture = `
filtTraces:
  - [0.1, 0.0, 0.3]
  - [0.9, 0.2, 0.1]
  - [0.2, 0.8, 0.7]
rawTraces:
  - [1.0, 0.0, 0.0]
  - [0.0, 1.0, 0.0]
  - [0.0, 0.0, 1.0]
s:
  - [0, 1, 0]
  - [0, 0, 1]
  - [1, 0, 0]
sfps:
  - [[1, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 1]]
  - [[0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0]]
  - [[0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0]]
  - [[0, 1, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0]]
numNeurons: [[3]]
cellLabel:
  - [1]
  - [0]
  - [1]
`

func TestDecodeTriangle(t *testing.T) {
	rec, err := Decode(strings.NewReader(triangleFixture))
	require.NoError(t, err)

	assert.Equal(t, 3, rec.NumNeurons)
	assert.Equal(t, []float64{1, 0, 1}, rec.CellLabel)
	assert.Equal(t, 4, rec.SFPs.Height)
	assert.Equal(t, 5, rec.SFPs.Width)
	assert.Equal(t, 3, rec.SFPs.Depth)
	assert.Equal(t, []float64{0.0, 0.2, 0.8}, mat.Col(nil, 1, rec.FiltTraces))

	s, err := session.New(rec, session.WithLogger(logger.Discard()))
	require.NoError(t, err)

	d := s.DistanceMap()
	assert.InDelta(t, 3.0, d.At(0, 1), 1e-12)
	assert.InDelta(t, 4.0, d.At(0, 2), 1e-12)
	assert.InDelta(t, 5.0, d.At(1, 2), 1e-12)
	assert.Equal(t, []float64{1, 0, 1}, s.CellLabels())

	n, err := s.Neuron(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n.MaxFiltFrame())
}

func TestDecodeWithoutLabels(t *testing.T) {
	fixture := strings.Replace(triangleFixture, "cellLabel:\n  - [1]\n  - [0]\n  - [1]\n", "", 1)
	fixture = strings.Replace(fixture, "numNeurons: [[3]]", "numNeurons: 3", 1)

	rec, err := Decode(strings.NewReader(fixture))
	require.NoError(t, err)
	assert.Nil(t, rec.CellLabel)
	assert.Equal(t, 3, rec.NumNeurons)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"missing count": strings.Replace(triangleFixture, "numNeurons: [[3]]", "", 1),
		"ragged traces": strings.Replace(triangleFixture, "[0.9, 0.2, 0.1]", "[0.9, 0.2]", 1),
		"ragged sfps":   strings.Replace(triangleFixture, "[[1, 0, 0], [0, 0, 0],", "[[1, 0], [0, 0, 0],", 1),
		"bad count":     strings.Replace(triangleFixture, "numNeurons: [[3]]", "numNeurons: [3, 4]", 1),
	}
	for name, fixture := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(fixture))
			assert.True(t, errors.Is(err, ErrFixture), "got %v", err)
		})
	}

	_, err := Decode(strings.NewReader("filtTraces: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(triangleFixture), 0644))

	rec, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.NumNeurons)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
