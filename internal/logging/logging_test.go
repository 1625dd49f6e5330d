package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_jsonFormatIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "json", &buf)
	require.NoError(t, err)

	Component(l, "index").Info("hello")

	assert.Contains(t, buf.String(), `"component":"index"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestNew_levelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("warn", "text", &buf)
	require.NoError(t, err)

	l.Info("quiet")
	assert.Empty(t, buf.String())
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
}

func TestNew_rejectsBadLevelAndFormat(t *testing.T) {
	_, err := New("loud", "text", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestComponent_nilLoggerDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Component(nil, "x").Info("dropped")
	})
}
