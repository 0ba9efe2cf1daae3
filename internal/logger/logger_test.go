package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-console/internal/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	log.WithField("loan_id", "7").Debug("loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, "7", entry["loan_id"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(config.LoggingConfig{Level: "info", Format: "TEXT"}, &buf)

	log.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := newWithOutput(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
