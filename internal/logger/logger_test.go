package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l := New(log.New(&buf, "", 0)).WithLevel(ParseLevel("warn"))

	l.LogInfo("hidden %d", 1)
	l.LogDebug("hidden")
	l.LogWarn("shown %s", "warn")
	l.LogErrorf("shown %s", "error")

	assert.Equal(t, "[Warn]: shown warn\n[Error]: shown error\n", buf.String())
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger

	assert.NotPanics(t, func() { l.LogInfo("x") })
}
