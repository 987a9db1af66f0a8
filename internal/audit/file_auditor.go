package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/usefloww/floww/internal/core"
)

// tailSize bounds how many recent entries the file auditor keeps in
// memory for serving GetRecent/Find without re-reading the log file.
const tailSize = 1000

var _ core.Auditor = (*FileAuditor)(nil)

// FileAuditor is an auditor that writes audit logs to a file in JSON
// format, one entry per line. Queries are served from an in-memory tail
// of the most recent entries.
type FileAuditor struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	tail    []core.AuditEntry
}

func NewFileAuditor(filePath string) (*FileAuditor, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log file: %w", err)
	}
	return &FileAuditor{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (f *FileAuditor) Log(entry core.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.encoder.Encode(entry); err != nil {
		return fmt.Errorf("writing audit log entry: %w", err)
	}

	f.tail = append(f.tail, entry)
	if len(f.tail) > tailSize {
		f.tail = f.tail[len(f.tail)-tailSize:]
	}
	return nil
}

func (f *FileAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit > len(f.tail) {
		limit = len(f.tail)
	}
	start := len(f.tail) - limit
	entries := make([]core.AuditEntry, limit)
	copy(entries, f.tail[start:])

	return entries, nil
}

func (f *FileAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []core.AuditEntry
	for _, entry := range f.tail {
		if filter(entry) {
			matches = append(matches, entry)
		}
	}

	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}

	return matches, nil
}

func (f *FileAuditor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
