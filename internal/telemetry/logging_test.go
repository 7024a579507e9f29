package telemetry

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WarnLevel, &buf)

	l.Debugf("debug message")
	l.Infof("info message")
	assert.Empty(t, buf.String())

	l.Warnf("warn message")
	assert.Contains(t, buf.String(), "warn message")
	assert.Contains(t, buf.String(), "WARN")

	buf.Reset()
	l.Errorf("error message")
	assert.Contains(t, buf.String(), "ERROR")
}

func TestLogger_WritesOneJSONLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DebugLevel, &buf)

	l.Infof("first")
	l.Infof("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestNoopLogger_DiscardsEverything(t *testing.T) {
	l := NewNoopLogger()
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
}
