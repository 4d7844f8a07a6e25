package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdougie/videoextend/internal/models"
)

var backends = []string{"b1", "b2", "b3", "b4"}

func TestRenderFollowsBackendOrder(t *testing.T) {
	record := models.AnswerRecord{}
	record["b3"] = "third"
	record["b1"] = "first"

	got := string(Render(backends, record))

	assert.Equal(t, "## b1\n\nfirst\n\n## b3\n\nthird\n\n", got)
}

func TestRenderEmptyRecord(t *testing.T) {
	assert.Empty(t, Render(backends, models.AnswerRecord{}))
}

func TestRenderIgnoresUnknownBackends(t *testing.T) {
	got := string(Render([]string{"b1"}, models.AnswerRecord{"b1": "x", "zz": "y"}))
	assert.Equal(t, "## b1\n\nx\n\n", got)
}

func TestWriteOverwritesExistingReport(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, models.ReportFileName)
	require.NoError(t, os.WriteFile(reportPath, []byte("old content that is longer than the new one"), 0644))

	w := NewReportWriter()
	path, err := w.Write(dir, backends, models.AnswerRecord{"b2": "new"})
	require.NoError(t, err)
	assert.Equal(t, reportPath, path)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "## b2\n\nnew\n\n", string(data))
}

func TestWriteMissingFolder(t *testing.T) {
	_, err := NewReportWriter().Write(filepath.Join(t.TempDir(), "gone"), backends, models.AnswerRecord{"b1": "x"})
	assert.Error(t, err)
}

func TestWriteConcurrentFolders(t *testing.T) {
	root := t.TempDir()
	w := NewReportWriter()

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "a", "b", "c"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		wg.Add(1)
		go func(dir, name string) {
			defer wg.Done()
			_, err := w.Write(dir, backends, models.AnswerRecord{"b1": name})
			assert.NoError(t, err)
		}(dir, name)
	}
	wg.Wait()

	for _, name := range []string{"a", "b", "c"} {
		data, err := os.ReadFile(filepath.Join(root, name, models.ReportFileName))
		require.NoError(t, err)
		assert.Equal(t, "## b1\n\n"+name+"\n\n", string(data))
	}
}
