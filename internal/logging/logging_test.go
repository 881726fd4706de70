package logging

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"trace", zerolog.TraceLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"  disabled  ", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), "level %q", tt.input)
	}
}

func TestSelectWriterFormats(t *testing.T) {
	// Not a terminal under test, so "auto" falls back to plain stderr.
	orig := isTerminalFn
	isTerminalFn = func(fd int) bool { return false }
	defer func() { isTerminalFn = orig }()

	assert.IsType(t, zerolog.ConsoleWriter{}, selectWriter("console"))
	assert.Equal(t, os.Stderr, selectWriter("json"))
	assert.Equal(t, os.Stderr, selectWriter("auto"))
	assert.Equal(t, os.Stderr, selectWriter(""))
	assert.Equal(t, os.Stderr, selectWriter("bogus"))
}

func TestInitSetsGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Init(Config{Format: "json", Level: "warn", Component: "replwatch"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
