package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		" error ": log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"bogus":   log.InfoLevel,
		"":        log.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestConfigureWritesToFile(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	path := filepath.Join(t.TempDir(), "msneuron.log")
	require.NoError(t, Configure("warn", path))
	assert.Equal(t, log.WarnLevel, Logger.GetLevel())

	New("group").Warn("Neuron ID already exists", "id", 3)
	New("group").Info("dropped at warn level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Neuron ID already exists")
	assert.Contains(t, string(data), "group")
	assert.NotContains(t, string(data), "dropped at warn level")
}

func TestConfigureBadFile(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	err := Configure("info", filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}
