package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBackendCall("b", time.Second, nil)
		m.ObserveReport(errors.New("x"))
		m.SetPairs(3)
	})
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.SetPairs(2)
	m.ObserveBackendCall("openrouter/openai/gpt-4o-mini", 3*time.Second, nil)
	m.ObserveBackendCall("openrouter/openai/gpt-4o-mini", time.Second, errors.New("boom"))
	m.ObserveReport(nil)

	path := filepath.Join(t.TempDir(), "videoextend.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `videoextend_backend_calls_total{backend="openrouter/openai/gpt-4o-mini",outcome="failure"} 1`)
	assert.Contains(t, text, `videoextend_backend_calls_total{backend="openrouter/openai/gpt-4o-mini",outcome="success"} 1`)
	assert.Contains(t, text, `videoextend_reports_total{outcome="success"} 1`)
	assert.Contains(t, text, "videoextend_frame_pairs 2")
	assert.Contains(t, text, "videoextend_last_run_timestamp_seconds")
}
