package server

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(buf)

	logger.Info("request handled",
		Field{"status", 200},
		Field{"request_line", "GET / HTTP/1.1"},
	)

	got := buf.String()
	assert.Contains(t, got, "level=info")
	assert.Contains(t, got, `msg="request handled"`)
	assert.Contains(t, got, "status=200")
	assert.Contains(t, got, `request_line="GET / HTTP/1.1"`)
}

func TestDefaultLoggerLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, logrus.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	logger.Error("also shown")
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), "level=error")
}

func TestLongValuesTruncated(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(buf)

	logger.Info("long", Field{"request_line", strings.Repeat("a", 500)})

	assert.Contains(t, buf.String(), "...[truncated]")
	assert.NotContains(t, buf.String(), strings.Repeat("a", 101))
}

func TestTruncationKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; byte 100 falls inside one
	value := "a" + strings.Repeat("é", 100)

	got, ok := sanitizeValue(value).(string)
	assert.True(t, ok)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "...[truncated]"))
	assert.Equal(t, "a"+strings.Repeat("é", 49)+"...[truncated]", got)

	assert.Equal(t, "short", sanitizeValue("short"))
	assert.Equal(t, 42, sanitizeValue(42))
}
