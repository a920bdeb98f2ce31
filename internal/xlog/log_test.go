package xlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLogger_WritesLevelPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(&buf)
	logger.Log(LevelError, "boom")

	assert.Contains(t, buf.String(), "ERROR: boom")
}

func TestFilter_DropsBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFilter(NewStdLogger(&buf), FilterLevel(LevelWarn))

	logger.Log(LevelDebug, "hidden")
	logger.Log(LevelInfo, "also hidden")
	logger.Log(LevelWarn, "visible")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "visible")
}

func TestHelper_FormatsArgs(t *testing.T) {
	var buf bytes.Buffer
	h := NewHelper(NewFilter(NewStdLogger(&buf), FilterLevel(LevelDebug)))

	h.Infof("count=%d", 3)
	h.Errorf("name=%s", "x")

	out := buf.String()
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "name=x")
}

func TestHelper_NilSafe(t *testing.T) {
	var h *Helper
	assert.NotPanics(t, func() { h.Infof("no logger") })
}
