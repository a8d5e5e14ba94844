// Package logger provides the shared structured logger for msneuron.
// Components derive prefixed loggers from it so that level and output are
// configured once, from the CLI or the YAML configuration.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the global logger instance.
var Logger *log.Logger

func init() {
	Logger = newLogger(os.Stderr, log.InfoLevel)
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("214"))
	styles.Keys["id"] = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	l.SetStyles(styles)

	return l
}

// Configure replaces the global logger using the given level name and an
// optional log file. An empty level falls back to MSNEURON_LOG_LEVEL and
// then to info.
func Configure(level string, logFile string) error {
	if level == "" {
		level = os.Getenv("MSNEURON_LOG_LEVEL")
	}

	var output io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = file
	}

	Logger = newLogger(output, ParseLevel(level))
	return nil
}

// ParseLevel converts a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// New returns a component logger derived from the global logger.
func New(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
