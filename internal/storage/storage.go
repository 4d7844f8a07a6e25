package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bdougie/videoextend/internal/models"
)

// Storage defines the interface for persisting per-folder reports
type Storage interface {
	// Write replaces the report in folder with the answers in backend order
	Write(folder string, backends []string, record models.AnswerRecord) (string, error)
}

// ReportWriter writes video_prompt.md files. Writes to the same folder
// are serialized.
type ReportWriter struct {
	fileName string

	mu      sync.Mutex
	folders map[string]*sync.Mutex
}

// NewReportWriter creates a report writer using the default file name
func NewReportWriter() *ReportWriter {
	return &ReportWriter{
		fileName: models.ReportFileName,
		folders:  make(map[string]*sync.Mutex),
	}
}

// folderLock returns the mutex guarding one folder
func (w *ReportWriter) folderLock(folder string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.folders[folder]
	if !ok {
		lock = &sync.Mutex{}
		w.folders[folder] = lock
	}
	return lock
}

// Write renders and saves the report, overwriting any previous one.
// It returns the report path.
func (w *ReportWriter) Write(folder string, backends []string, record models.AnswerRecord) (string, error) {
	lock := w.folderLock(folder)
	lock.Lock()
	defer lock.Unlock()

	reportPath := filepath.Join(folder, w.fileName)
	if err := os.WriteFile(reportPath, Render(backends, record), 0644); err != nil {
		return "", fmt.Errorf("failed to write report '%s': %w", reportPath, err)
	}
	return reportPath, nil
}

// Render formats the answers as "## <backend>" sections following the order
// of backends. Backends missing from record are left out.
func Render(backends []string, record models.AnswerRecord) []byte {
	var buf bytes.Buffer
	for _, backend := range backends {
		text, ok := record[backend]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "## %s\n\n", backend)
		fmt.Fprintf(&buf, "%s\n\n", text)
	}
	return buf.Bytes()
}
