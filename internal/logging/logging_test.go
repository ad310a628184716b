package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("TRT", 3*60*60)

	log := NewWithWriter(&buf, loc)
	log.Info("db_migration_step", zap.String("component", "database"), zap.Int64("duration_ms", 12))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "db_migration_step", entry["msg"])
	assert.Equal(t, "database", entry["component"])
	assert.Equal(t, float64(12), entry["duration_ms"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	_, offset := parsed.Zone()
	assert.Equal(t, 3*60*60, offset)
}

func TestNewWithWriter_DebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, nil)
	log.Debug("noisy")
	assert.Empty(t, buf.String())
}
