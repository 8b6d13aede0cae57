package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "debug", Output: &buf})

	l.ServiceLogger("concept").LogPersist("persist_clone", 3, "7", time.Millisecond, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "termvault", entry["service"])
	assert.Equal(t, "concept", entry["entity"])
	assert.Equal(t, "7", entry["version"])
	assert.Equal(t, "debug", entry["level"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "warn", Output: &buf})

	l.DbLogger("find_latest").LogDbOperation(time.Millisecond, 1, nil)
	assert.Zero(t, buf.Len())

	l.LogPersist("persist_clone", 3, "", time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), "Persist rolled back")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "info", ParseLevel("bogus").String())
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "error", ParseLevel("error").String())
}

func TestDbLoggerTagsOperation(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "debug", Output: &buf})

	l.DbLogger("find_latest_concept").LogDbOperation(time.Millisecond, 1, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "database", entry["component"])
	assert.Equal(t, "find_latest_concept", entry["operation"])
	assert.Equal(t, float64(1), entry["record_count"])
}
