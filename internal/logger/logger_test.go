package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"coinctl/internal/config"
)

func TestNewLogger_JSONEncodingUsesTimestampKey(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggerConfig{Level: "debug", Encoding: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("Account address", zap.String("address", "0xabc"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Account address", entry["msg"])
	assert.Equal(t, "0xabc", entry["address"])
	assert.Equal(t, "coinctl", entry["logger"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggerConfig{Level: "loud", Encoding: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.Contains(t, buf.String(), "Failed to parse log level")
}
