package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()

	Configure(l, &buf, "debug", "production")
	l.WithField("component", "dispatcher").Debug("cycle done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cycle done", entry["msg"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()

	Configure(l, &buf, "loud", "development")

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	l.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")
}
