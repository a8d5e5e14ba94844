package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msneuron/internal/logger"
)

const fixture = `
filtTraces: [[0.1, 0.0, 0.3], [0.9, 0.2, 0.1], [0.2, 0.8, 0.7]]
rawTraces:  [[1.0, 0.0, 0.0], [0.0, 1.0, 0.0], [0.0, 0.0, 1.0]]
s:          [[0, 1, 0], [0, 0, 1], [1, 0, 0]]
sfps:
  - [[1, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 1]]
  - [[0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0]]
  - [[0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0]]
  - [[0, 1, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0], [0, 0, 0]]
numNeurons: 3
cellLabel: [1, 0, 1]
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	prev := logger.Logger
	t.Cleanup(func() { logger.Logger = prev })

	dir := t.TempDir()
	sessionPath := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(sessionPath, []byte(fixture), 0644))

	configPath := filepath.Join(dir, "msneuron.yaml")
	cfg := "logging:\n  level: error\nrender:\n  outputDir: " + filepath.Join(dir, "render") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath}, append(args, sessionPath)...))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestSummaryCommand(t *testing.T) {
	out := run(t, "summary")
	assert.Contains(t, out, "Neurons: 3 (good 2, bad 1)")
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "Bad")
}

func TestDistancesCommand(t *testing.T) {
	out := run(t, "distances", "--max-distance", "4")
	assert.Contains(t, out, "5.000")
	assert.Contains(t, out, "Pairs within 4.00 px: 2")
}

func TestNeighborsCommand(t *testing.T) {
	out := run(t, "neighbors", "--k", "1")
	assert.Contains(t, out, "1  2(3.00)")
	assert.Contains(t, out, "3  1(4.00)")
}

func TestRenderCommand(t *testing.T) {
	out := run(t, "render", "--good-only")
	assert.Contains(t, out, "Rendered 3 footprints")
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "msneuron.yaml")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"init-config", path})
	require.NoError(t, root.Execute())

	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Wrote default configuration")
}
