package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "JSON")

	logger.Debug("session read", "path", "2022-01-08.yaml")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "session read", entry["msg"])
	assert.Equal(t, "2022-01-08.yaml", entry["path"])
}

func TestNewLogger_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN msg=shown")
}

func TestNewMetricsForTesting_Collects(t *testing.T) {
	m := NewMetricsForTesting()
	m.SessionErrors.WithLabelValues("validation").Inc()
	m.DocumentsLoaded.WithLabelValues("file", "sessions").Add(3)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionErrors.WithLabelValues("validation")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.DocumentsLoaded.WithLabelValues("file", "sessions")), 0)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m.SessionsRead))
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climbr.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "go_goroutines")
}
